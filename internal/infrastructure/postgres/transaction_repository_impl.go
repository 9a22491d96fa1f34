package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinevault/cinevault/internal/domain/entity"
	"github.com/cinevault/cinevault/internal/domain/repository"
)

const txColumns = `id, user_id, movie_id, provider_session_id,
	COALESCE(provider_payment_intent, ''), amount, currency, status, created_at`

// TransactionRepository is the purchase ledger. The UNIQUE constraint on
// provider_session_id is the final idempotency barrier for verification.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	t := &entity.Transaction{}
	if err := row.Scan(&t.ID, &t.UserID, &t.MovieID, &t.ProviderSessionID,
		&t.ProviderPaymentIntent, &t.Amount, &t.Currency, &t.Status, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransactionRepository) Create(ctx context.Context, t *entity.Transaction) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (user_id, movie_id, provider_session_id, provider_payment_intent, amount, currency, status)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
		RETURNING id, created_at
	`, t.UserID, t.MovieID, t.ProviderSessionID, t.ProviderPaymentIntent, t.Amount, t.Currency, t.Status)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateSession
		}
		return err
	}
	return nil
}

func (r *TransactionRepository) GetBySessionID(ctx context.Context, sessionID string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE provider_session_id = $1`, sessionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *TransactionRepository) LatestForUserMovie(ctx context.Context, userID, movieID string) (*entity.Transaction, error) {
	t, err := scanTransaction(r.pool.QueryRow(ctx, `
		SELECT `+txColumns+` FROM transactions
		WHERE user_id = $1 AND movie_id = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, movieID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+txColumns+` FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TransactionRepository) MarkPaid(ctx context.Context, sessionID, paymentIntent string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE transactions
		SET status = $1, provider_payment_intent = COALESCE(NULLIF($2, ''), provider_payment_intent)
		WHERE provider_session_id = $3
	`, entity.TxPaid, paymentIntent, sessionID)
	return err
}

func (r *TransactionRepository) HasPaid(ctx context.Context, userID, movieID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE user_id = $1 AND movie_id = $2 AND status = $3
		)
	`, userID, movieID, entity.TxPaid).Scan(&exists)
	return exists, err
}

var _ repository.TransactionRepository = (*TransactionRepository)(nil)
