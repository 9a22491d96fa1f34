package application

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cinevault/cinevault/internal/domain/entity"
	repo "github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/pkg/apperr"
	"github.com/cinevault/cinevault/pkg/helpers"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SecurityPolicy tunes the account-security engine.
type SecurityPolicy struct {
	BcryptCost       int
	MaxLoginAttempts int
	LockoutWindow    time.Duration
	PasswordExpiry   time.Duration
	HistoryLimit     int
}

// AuthService is the account-security engine: registration, credential
// verification with lockout, password lifecycle and session-token issuance.
type AuthService struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
	Policy SecurityPolicy

	now func() time.Time // overridable in tests
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger, policy SecurityPolicy) *AuthService {
	if policy.MaxLoginAttempts <= 0 {
		policy.MaxLoginAttempts = 5
	}
	if policy.LockoutWindow <= 0 {
		policy.LockoutWindow = 15 * time.Minute
	}
	if policy.PasswordExpiry <= 0 {
		policy.PasswordExpiry = 90 * 24 * time.Hour
	}
	if policy.HistoryLimit <= 0 {
		policy.HistoryLimit = 3
	}
	return &AuthService{Users: users, JWT: jwt, Logger: logger, Policy: policy, now: time.Now}
}

// LoginResult carries the issued token plus the redacted user view.
type LoginResult struct {
	Token           string
	ExpiresAt       time.Time
	PasswordExpired bool
	User            entity.RedactedUser
}

func validateName(name string) error {
	if name == "" {
		return apperr.ValidationField("name", "Name is required")
	}
	if len(strings.TrimSpace(name)) < 2 {
		return apperr.ValidationField("name", "Name must be at least 2 characters long")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperr.ValidationField("email", "Email is required")
	}
	if !emailPattern.MatchString(email) {
		return apperr.ValidationField("email", "Invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return apperr.ValidationField("password", "Password is required")
	}
	if len(password) < 6 {
		return apperr.ValidationField("password", "Password must be at least 6 characters long")
	}
	return nil
}

// Register creates a user account with the initial password as the sole
// history entry. The returned view never contains hash material.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*entity.RedactedUser, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	email = strings.ToLower(email)
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User with this email already exists")
	}

	hash, err := helpers.HashPassword(password, s.Policy.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:              strings.TrimSpace(name),
		Email:             email,
		Password:          hash,
		PasswordHistory:   []string{hash},
		PasswordChangedAt: s.now(),
		Role:              entity.RoleUser,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("user registered")
	view := u.Redacted()
	return &view, nil
}

// lockoutMessage formats a remaining lockout duration as "D day(s) M
// minute(s)", dropping the day part when zero. Minutes round up so the
// message never claims less time than actually remains.
func lockoutMessage(remaining time.Duration) string {
	days := int(remaining / (24 * time.Hour))
	rest := remaining - time.Duration(days)*24*time.Hour
	minutes := int((rest + time.Minute - 1) / time.Minute)
	if days > 0 {
		return fmt.Sprintf("%d %s %d %s", days, plural("day", days), minutes, plural("minute", minutes))
	}
	return fmt.Sprintf("%d %s", minutes, plural("minute", minutes))
}

func plural(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Login verifies credentials, drives the lockout state machine and issues
// a session token. The lockout check runs before any password comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	// Unknown email deliberately stays distinguishable from a wrong
	// password; the legacy clients depend on the message text.
	u, err := s.Users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, apperr.Validation("Invalid email address")
	}

	now := s.now()
	if u.Locked(now) {
		return nil, apperr.Validation("Your account is locked for " + lockoutMessage(u.LockoutUntil.Sub(now)))
	}

	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, s.recordFailure(ctx, u, now)
	}

	if u.FailedLoginAttempts > 0 || u.LockoutUntil != nil {
		if err := s.Users.ClearLockout(ctx, u.ID); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to clear lockout")
		}
	}

	passwordExpired := !u.PasswordChangedAt.IsZero() && now.Sub(u.PasswordChangedAt) > s.Policy.PasswordExpiry

	token, exp, err := s.JWT.GenerateToken(u.ID, u.Name, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:           token,
		ExpiresAt:       exp,
		PasswordExpired: passwordExpired,
		User:            u.Redacted(),
	}, nil
}

func (s *AuthService) recordFailure(ctx context.Context, u *entity.User, now time.Time) error {
	attempts := u.FailedLoginAttempts + 1
	if attempts >= s.Policy.MaxLoginAttempts {
		until := now.Add(s.Policy.LockoutWindow)
		// counter resets when the lockout is armed
		if err := s.Users.RecordLoginFailure(ctx, u.ID, 0, &until); err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to record lockout")
		}
		return apperr.Validation("Invalid password. Your account has been locked for " + lockoutMessage(s.Policy.LockoutWindow))
	}

	if err := s.Users.RecordLoginFailure(ctx, u.ID, attempts, nil); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to record login failure")
	}
	remaining := s.Policy.MaxLoginAttempts - attempts
	lockoutMinutes := int(s.Policy.LockoutWindow / time.Minute)
	return apperr.Validation(fmt.Sprintf(
		"Invalid password. You have %d %s left. After that your account will be locked for %d %s.",
		remaining, plural("attempt", remaining), lockoutMinutes, plural("minute", lockoutMinutes)))
}

// AdminLogin is a deliberately simpler path for closely-held admin
// accounts: no lockout interaction, and every failure collapses into one
// generic message.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	u, err := s.Users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil || u.Role != entity.RoleAdmin || !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, apperr.Validation("Invalid email or password")
	}

	token, exp, err := s.JWT.GenerateToken(u.ID, u.Name, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u.Redacted()}, nil
}

// ChangePassword rotates the password, refusing reuse of any of the last
// HistoryLimit hashes. Each history check is a full bcrypt comparison.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := validatePassword(oldPassword); err != nil {
		return err
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return apperr.Validation("Old password is incorrect")
	}

	history := u.PasswordHistory
	if len(history) > s.Policy.HistoryLimit {
		history = history[len(history)-s.Policy.HistoryLimit:]
	}
	for _, oldHash := range history {
		if helpers.CompareHashAndPassword(oldHash, newPassword) {
			return apperr.Validation("New password must not match recent passwords")
		}
	}

	hash, err := helpers.HashPassword(newPassword, s.Policy.BcryptCost)
	if err != nil {
		return err
	}
	newHistory := append(u.PasswordHistory, hash)
	if len(newHistory) > s.Policy.HistoryLimit {
		newHistory = newHistory[len(newHistory)-s.Policy.HistoryLimit:]
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash, newHistory, s.now()); err != nil {
		return err
	}
	s.Logger.WithField("user_id", userID).Info("password changed")
	return nil
}

// Profile returns the redacted user view.
func (s *AuthService) Profile(ctx context.Context, userID string) (*entity.RedactedUser, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := u.Redacted()
	return &view, nil
}
