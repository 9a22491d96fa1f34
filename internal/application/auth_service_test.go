package application

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/cinevault/cinevault/internal/domain/entity"
	"github.com/cinevault/cinevault/pkg/apperr"
	"github.com/cinevault/cinevault/pkg/helpers"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := helpers.HashPassword(plain, bcrypt.MinCost)
	assert.NoError(t, err)
	return h
}

func newAuthService(users *userRepoMock) *AuthService {
	svc := NewAuthService(users, helpers.NewJWTManager("test-secret", time.Hour), testLogger(), SecurityPolicy{
		BcryptCost:       bcrypt.MinCost,
		MaxLoginAttempts: 5,
		LockoutWindow:    15 * time.Minute,
		PasswordExpiry:   90 * 24 * time.Hour,
		HistoryLimit:     3,
	})
	return svc
}

func TestLockoutMessage(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      string
	}{
		{"minutes only", 15 * time.Minute, "15 minutes"},
		{"single minute", time.Minute, "1 minute"},
		{"rounds up partial minute", 14*time.Minute + time.Second, "15 minutes"},
		{"day and minutes", 24*time.Hour + 30*time.Minute, "1 day 30 minutes"},
		{"plural days", 48*time.Hour + time.Minute, "2 days 1 minute"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lockoutMessage(tt.remaining))
		})
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	users := &userRepoMock{}
	users.On("GetByEmail", mock.Anything, "nobody@example.com").
		Return(nil, apperr.NotFound("User", "")).Once()

	svc := newAuthService(users)
	_, err := svc.Login(context.Background(), "nobody@example.com", "password123")

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "Invalid email address", ve.Message)
	users.AssertExpectations(t)
}

func TestAuthService_Login_WrongPasswordCountsAttempts(t *testing.T) {
	hash := testHash(t, "right-password")
	users := &userRepoMock{}
	users.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&entity.User{ID: "u1", Email: "user@example.com", Password: hash, FailedLoginAttempts: 1}, nil).Once()
	users.On("RecordLoginFailure", mock.Anything, "u1", 2, (*time.Time)(nil)).Return(nil).Once()

	svc := newAuthService(users)
	_, err := svc.Login(context.Background(), "user@example.com", "wrong-password")

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Message, "You have 3 attempts left")
	users.AssertExpectations(t)
}

func TestAuthService_Login_FifthFailureLocksAndResetsCounter(t *testing.T) {
	hash := testHash(t, "right-password")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	users := &userRepoMock{}
	users.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&entity.User{ID: "u1", Email: "user@example.com", Password: hash, FailedLoginAttempts: 4}, nil).Once()
	wantUntil := now.Add(15 * time.Minute)
	users.On("RecordLoginFailure", mock.Anything, "u1", 0, mock.MatchedBy(func(until *time.Time) bool {
		return until != nil && until.Equal(wantUntil)
	})).Return(nil).Once()

	svc := newAuthService(users)
	svc.now = func() time.Time { return now }
	_, err := svc.Login(context.Background(), "user@example.com", "wrong-password")

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "Invalid password. Your account has been locked for 15 minutes", ve.Message)
	users.AssertExpectations(t)
}

func TestAuthService_Login_LockedBeforePasswordCheck(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(10 * time.Minute)

	users := &userRepoMock{}
	// Password is the CORRECT one; the lockout must still win.
	hash := testHash(t, "right-password")
	users.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&entity.User{ID: "u1", Email: "user@example.com", Password: hash, LockoutUntil: &until}, nil).Once()

	svc := newAuthService(users)
	svc.now = func() time.Time { return now }
	_, err := svc.Login(context.Background(), "user@example.com", "right-password")

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "Your account is locked for 10 minutes", ve.Message)
	users.AssertNotCalled(t, "RecordLoginFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}

func TestAuthService_Login_ExpiredLockoutAdmitsAndClears(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	hash := testHash(t, "right-password")

	users := &userRepoMock{}
	users.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&entity.User{
			ID: "u1", Name: "User", Email: "user@example.com", Password: hash,
			LockoutUntil: &past, FailedLoginAttempts: 0,
			PasswordChangedAt: now.Add(-time.Hour),
		}, nil).Once()
	users.On("ClearLockout", mock.Anything, "u1").Return(nil).Once()

	svc := newAuthService(users)
	svc.now = func() time.Time { return now }
	res, err := svc.Login(context.Background(), "user@example.com", "right-password")

	assert.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.False(t, res.PasswordExpired)
	users.AssertExpectations(t)
}

func TestAuthService_Login_PasswordExpiredFlag(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hash := testHash(t, "right-password")

	users := &userRepoMock{}
	users.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&entity.User{
			ID: "u1", Email: "user@example.com", Password: hash,
			PasswordChangedAt: now.Add(-91 * 24 * time.Hour),
		}, nil).Once()

	svc := newAuthService(users)
	svc.now = func() time.Time { return now }
	res, err := svc.Login(context.Background(), "user@example.com", "right-password")

	// Expiry is advisory: login still succeeds.
	assert.NoError(t, err)
	assert.True(t, res.PasswordExpired)
	users.AssertExpectations(t)
}

func TestAuthService_Login_TokenCarriesIdentity(t *testing.T) {
	hash := testHash(t, "right-password")
	users := &userRepoMock{}
	users.On("GetByEmail", mock.Anything, "user@example.com").
		Return(&entity.User{
			ID: "u1", Name: "Jo Vault", Email: "user@example.com", Password: hash,
			Role: entity.RoleUser, PasswordChangedAt: time.Now(),
		}, nil).Once()

	svc := newAuthService(users)
	res, err := svc.Login(context.Background(), "user@example.com", "right-password")
	assert.NoError(t, err)

	claims, err := svc.JWT.ParseToken(res.Token)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "Jo Vault", claims.Name)
	assert.Equal(t, entity.RoleUser, claims.Role)
	users.AssertExpectations(t)
}

func TestAuthService_AdminLogin_CollapsesFailures(t *testing.T) {
	hash := testHash(t, "right-password")
	tests := []struct {
		name  string
		setup func(users *userRepoMock)
		pass  string
	}{
		{
			name: "unknown email",
			setup: func(users *userRepoMock) {
				users.On("GetByEmail", mock.Anything, "a@example.com").
					Return(nil, apperr.NotFound("User", "")).Once()
			},
			pass: "right-password",
		},
		{
			name: "not an admin",
			setup: func(users *userRepoMock) {
				users.On("GetByEmail", mock.Anything, "a@example.com").
					Return(&entity.User{ID: "u1", Password: hash, Role: entity.RoleUser}, nil).Once()
			},
			pass: "right-password",
		},
		{
			name: "wrong password",
			setup: func(users *userRepoMock) {
				users.On("GetByEmail", mock.Anything, "a@example.com").
					Return(&entity.User{ID: "u1", Password: hash, Role: entity.RoleAdmin}, nil).Once()
			},
			pass: "wrong-password",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &userRepoMock{}
			tt.setup(users)
			svc := newAuthService(users)

			_, err := svc.AdminLogin(context.Background(), "a@example.com", tt.pass)

			var ve *apperr.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Equal(t, "Invalid email or password", ve.Message)
			// Admin failures never touch the lockout counters.
			users.AssertNotCalled(t, "RecordLoginFailure", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Register_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		userName  string
		email     string
		password  string
		wantField string
	}{
		{"short password", "Someone", "new@example.com", "12345", "password"},
		{"empty password", "Someone", "new@example.com", "", "password"},
		{"short name", "A", "new@example.com", "password123", "name"},
		{"empty name", "", "new@example.com", "password123", "name"},
		{"malformed email", "Someone", "not-an-email", "password123", "email"},
		{"empty email", "Someone", "", "password123", "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &userRepoMock{}
			svc := newAuthService(users)

			_, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)

			var ve *apperr.ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
			users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	users := &userRepoMock{}
	users.On("GetByEmail", mock.Anything, "dup@example.com").
		Return(&entity.User{ID: "u1", Email: "dup@example.com"}, nil).Once()

	svc := newAuthService(users)
	_, err := svc.Register(context.Background(), "Someone", "Dup@Example.com", "password123")

	var ce *apperr.ConflictError
	assert.ErrorAs(t, err, &ce)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}

func TestAuthService_Register_HashesAndSeedsHistory(t *testing.T) {
	users := &userRepoMock{}
	users.On("GetByEmail", mock.Anything, "new@example.com").
		Return(nil, apperr.NotFound("User", "")).Once()
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
		return u.Email == "new@example.com" &&
			u.Role == entity.RoleUser &&
			u.Password != "password123" &&
			len(u.PasswordHistory) == 1 &&
			u.PasswordHistory[0] == u.Password &&
			helpers.CompareHashAndPassword(u.Password, "password123")
	})).Return(nil).Once()

	svc := newAuthService(users)
	view, err := svc.Register(context.Background(), "New User", "New@Example.com", "password123")

	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", view.Email)
	users.AssertExpectations(t)
}

func TestAuthService_ChangePassword_RejectsRecentReuse(t *testing.T) {
	oldHash := testHash(t, "previous-one")
	currentHash := testHash(t, "current-one")

	users := &userRepoMock{}
	users.On("GetByID", mock.Anything, "u1").
		Return(&entity.User{ID: "u1", Password: currentHash, PasswordHistory: []string{oldHash, currentHash}}, nil).Once()

	svc := newAuthService(users)
	err := svc.ChangePassword(context.Background(), "u1", "current-one", "previous-one")

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "New password must not match recent passwords", ve.Message)
	users.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	users.AssertExpectations(t)
}

func TestAuthService_ChangePassword_TrimsHistory(t *testing.T) {
	h1 := testHash(t, "one")
	h2 := testHash(t, "two")
	h3 := testHash(t, "three")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	users := &userRepoMock{}
	users.On("GetByID", mock.Anything, "u1").
		Return(&entity.User{ID: "u1", Password: h3, PasswordHistory: []string{h1, h2, h3}}, nil).Once()
	users.On("UpdatePassword", mock.Anything, "u1", mock.Anything, mock.MatchedBy(func(history []string) bool {
		// Oldest hash falls off; the new one is appended last.
		return len(history) == 3 && history[0] == h2 && history[1] == h3 &&
			helpers.CompareHashAndPassword(history[2], "brand-new-pass")
	}), now).Return(nil).Once()

	svc := newAuthService(users)
	svc.now = func() time.Time { return now }
	err := svc.ChangePassword(context.Background(), "u1", "three", "brand-new-pass")

	assert.NoError(t, err)
	users.AssertExpectations(t)
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	hash := testHash(t, "actual-password")
	users := &userRepoMock{}
	users.On("GetByID", mock.Anything, "u1").
		Return(&entity.User{ID: "u1", Password: hash}, nil).Once()

	svc := newAuthService(users)
	err := svc.ChangePassword(context.Background(), "u1", "guessed-wrong", "new-password")

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "Old password is incorrect", ve.Message)
	users.AssertExpectations(t)
}
