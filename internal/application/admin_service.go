package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cinevault/cinevault/internal/domain/entity"
	repo "github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/pkg/apperr"
	"github.com/cinevault/cinevault/pkg/helpers"
	"github.com/cinevault/cinevault/pkg/mailer"
)

// AdminService manages the closely-held admin accounts and the user roster.
type AdminService struct {
	Users      repo.UserRepository
	Mail       ReceiptPublisher // nil disables welcome emails
	Logger     *logrus.Logger
	BcryptCost int
}

func NewAdminService(users repo.UserRepository, mail ReceiptPublisher, logger *logrus.Logger, bcryptCost int) *AdminService {
	return &AdminService{Users: users, Mail: mail, Logger: logger, BcryptCost: bcryptCost}
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]entity.RedactedUser, error) {
	return s.listByRole(ctx, entity.RoleAdmin)
}

func (s *AdminService) ListUsers(ctx context.Context) ([]entity.RedactedUser, error) {
	return s.listByRole(ctx, entity.RoleUser)
}

func (s *AdminService) listByRole(ctx context.Context, role string) ([]entity.RedactedUser, error) {
	users, err := s.Users.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	out := make([]entity.RedactedUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Redacted())
	}
	return out, nil
}

// AddAdmin provisions a new admin account and sends a welcome email.
func (s *AdminService) AddAdmin(ctx context.Context, name, email, password string) (*entity.RedactedUser, error) {
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

	hash, err := helpers.HashPassword(password, s.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:              strings.TrimSpace(name),
		Email:             email,
		Password:          hash,
		PasswordHistory:   []string{hash},
		PasswordChangedAt: time.Now(),
		Role:              entity.RoleAdmin,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.Logger.WithField("user_id", u.ID).Info("admin account created")

	if s.Mail != nil {
		job := mailer.EmailJob{To: u.Email, Type: mailer.TypeWelcome, Data: map[string]any{"Name": u.Name}}
		if err := s.Mail.PublishJSON(ctx, job); err != nil {
			s.Logger.WithError(err).Warn("failed to enqueue welcome email")
		}
	}
	view := u.Redacted()
	return &view, nil
}

// UpdateAdmin renames an admin account or changes its email.
func (s *AdminService) UpdateAdmin(ctx context.Context, adminID, name, email string) (*entity.RedactedUser, error) {
	u, err := s.Users.GetByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if u.Role != entity.RoleAdmin {
		return nil, apperr.NotFound("Admin", adminID)
	}
	if name != "" {
		if err := validateName(name); err != nil {
			return nil, err
		}
		u.Name = strings.TrimSpace(name)
	}
	if email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		u.Email = strings.ToLower(email)
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}
	view := u.Redacted()
	return &view, nil
}

// DeleteAdmin removes an admin account. The last admin cannot be removed.
func (s *AdminService) DeleteAdmin(ctx context.Context, adminID string) error {
	u, err := s.Users.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if u.Role != entity.RoleAdmin {
		return apperr.NotFound("Admin", adminID)
	}
	admins, err := s.Users.ListByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return err
	}
	if len(admins) <= 1 {
		return apperr.Validation("Cannot delete the last admin account")
	}
	return s.Users.Delete(ctx, adminID)
}
