package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinevault/cinevault/internal/domain/entity"
	"github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/pkg/apperr"
)

const userColumns = `id, name, email, password_hash, password_history, password_changed_at,
	failed_login_attempts, lockout_until, role, COALESCE(image_url, ''), created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.PasswordHistory,
		&u.PasswordChangedAt, &u.FailedLoginAttempts, &u.LockoutUntil, &u.Role,
		&u.ImageURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User", "")
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	u.Email = strings.ToLower(u.Email)
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, password_history, password_changed_at, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.Password, u.PasswordHistory, u.PasswordChangedAt, u.Role)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("User with this email already exists")
		}
		return err
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		var nf *apperr.NotFoundError
		if errors.As(err, &nf) {
			return nil, apperr.NotFound("User", id)
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, role = $3, image_url = NULLIF($4, ''), updated_at = $5
		WHERE id = $6
	`, u.Name, strings.ToLower(u.Email), u.Role, u.ImageURL, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("User with this email already exists")
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("User", u.ID)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("User", id)
	}
	return nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY created_at DESC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) RecordLoginFailure(ctx context.Context, id string, attempts int, lockoutUntil *time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET failed_login_attempts = $1, lockout_until = $2, updated_at = now()
		WHERE id = $3
	`, attempts, lockoutUntil, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("User", id)
	}
	return nil
}

func (r *UserRepository) ClearLockout(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET failed_login_attempts = 0, lockout_until = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	return err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string, history []string, changedAt time.Time) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, password_history = $2, password_changed_at = $3, updated_at = now()
		WHERE id = $4
	`, hash, history, changedAt, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("User", id)
	}
	return nil
}

func (r *UserRepository) ToggleFavorite(ctx context.Context, userID, movieID string) (bool, error) {
	res, err := r.pool.Exec(ctx,
		`DELETE FROM user_favorites WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return false, err
	}
	if res.RowsAffected() > 0 {
		return false, nil
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO user_favorites (user_id, movie_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, movieID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *UserRepository) IsFavorite(ctx context.Context, userID, movieID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_favorites WHERE user_id = $1 AND movie_id = $2)`,
		userID, movieID).Scan(&exists)
	return exists, err
}

func (r *UserRepository) FavoriteMovieIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT movie_id FROM user_favorites WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
