package entity

import "time"

// Roles for User.Role
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the aggregate root for the account-security domain. Password is a
// bcrypt hash; PasswordHistory keeps the last few hashes, most-recent-last,
// to block immediate reuse. FailedLoginAttempts and LockoutUntil drive the
// lockout state machine.
type User struct {
	ID                  string
	Name                string
	Email               string
	Password            string
	PasswordHistory     []string
	PasswordChangedAt   time.Time
	FailedLoginAttempts int
	LockoutUntil        *time.Time
	Role                string
	ImageURL            string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Locked reports whether the account lockout is still in effect at now.
func (u *User) Locked(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}

// Redacted returns a wire-safe view without hash material.
func (u *User) Redacted() RedactedUser {
	return RedactedUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		ImageURL:  u.ImageURL,
		CreatedAt: u.CreatedAt,
	}
}

// RedactedUser is the user view returned to clients; it never carries the
// password hash or history.
type RedactedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ImageURL  string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
