package repository

import (
	"context"
	"errors"

	"github.com/cinevault/cinevault/internal/domain/entity"
)

// ErrDuplicateSession is returned by Create when a transaction already
// exists for the provider session id. The store's uniqueness constraint is
// the real idempotency barrier; application-level pre-checks are only an
// early exit.
var ErrDuplicateSession = errors.New("transaction already recorded for session")

type TransactionRepository interface {
	// Create inserts exactly one transaction. A second insert for the same
	// ProviderSessionID fails with ErrDuplicateSession.
	Create(ctx context.Context, t *entity.Transaction) error
	// GetBySessionID returns (nil, nil) when no transaction exists.
	GetBySessionID(ctx context.Context, sessionID string) (*entity.Transaction, error)
	// LatestForUserMovie returns the newest attempt for (user, movie), or
	// (nil, nil) when none exists.
	LatestForUserMovie(ctx context.Context, userID, movieID string) (*entity.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Transaction, error)
	// MarkPaid flips an existing row to paid and records the payment intent.
	MarkPaid(ctx context.Context, sessionID, paymentIntent string) error
	HasPaid(ctx context.Context, userID, movieID string) (bool, error)
}
