package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinevault/cinevault/internal/domain/entity"
	"github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/pkg/apperr"
)

type GenreRepository struct {
	pool *pgxpool.Pool
}

func NewGenreRepository(pool *pgxpool.Pool) *GenreRepository {
	return &GenreRepository{pool: pool}
}

func (r *GenreRepository) Create(ctx context.Context, g *entity.Genre) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO genres (name, image_url)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id, created_at, updated_at
	`, g.Name, g.ImageURL)
	if err := row.Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Genre with this name already exists")
		}
		return err
	}
	return nil
}

func (r *GenreRepository) GetByID(ctx context.Context, id string) (*entity.Genre, error) {
	g := &entity.Genre{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(image_url, ''), created_at, updated_at
		FROM genres WHERE id = $1
	`, id).Scan(&g.ID, &g.Name, &g.ImageURL, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Genre", id)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *GenreRepository) List(ctx context.Context) ([]*entity.Genre, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(image_url, ''), created_at, updated_at
		FROM genres ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Genre
	for rows.Next() {
		g := &entity.Genre{}
		if err := rows.Scan(&g.ID, &g.Name, &g.ImageURL, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *GenreRepository) Update(ctx context.Context, g *entity.Genre) error {
	g.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE genres
		SET name = $1, image_url = COALESCE(NULLIF($2, ''), image_url), updated_at = $3
		WHERE id = $4
	`, g.Name, g.ImageURL, g.UpdatedAt, g.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("Genre with this name already exists")
		}
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Genre", g.ID)
	}
	return nil
}

func (r *GenreRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM genres WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Genre", id)
	}
	return nil
}

var _ repository.GenreRepository = (*GenreRepository)(nil)
