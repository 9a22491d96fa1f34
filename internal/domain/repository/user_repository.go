package repository

import (
	"context"
	"time"

	"github.com/cinevault/cinevault/internal/domain/entity"
)

// UserRepository defines persistence for user accounts, their security
// state and their favorites. Lookups for absent rows return
// *apperr.NotFoundError.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail matches the stored (lower-cased) email.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	ListByRole(ctx context.Context, role string) ([]*entity.User, error)

	// RecordLoginFailure stores the new failure counter and optional lockout
	// expiry as a single atomic update.
	RecordLoginFailure(ctx context.Context, id string, attempts int, lockoutUntil *time.Time) error
	// ClearLockout resets the failure counter and lockout expiry.
	ClearLockout(ctx context.Context, id string) error
	// UpdatePassword replaces the hash, history and changed-at timestamp in
	// one atomic update.
	UpdatePassword(ctx context.Context, id, hash string, history []string, changedAt time.Time) error

	ToggleFavorite(ctx context.Context, userID, movieID string) (favorited bool, err error)
	IsFavorite(ctx context.Context, userID, movieID string) (bool, error)
	FavoriteMovieIDs(ctx context.Context, userID string) ([]string, error)
}
