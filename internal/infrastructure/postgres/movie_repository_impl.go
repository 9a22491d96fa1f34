package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cinevault/cinevault/internal/domain/entity"
	"github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/pkg/apperr"
)

const movieColumns = `m.id, m.title, m.description, m.release_date, m.genre_id, g.name,
	COALESCE(m.trailer_link, ''), COALESCE(m.movie_link, ''), COALESCE(m.cover_image_url, ''),
	m.cast, m.runtime, m.movie_type, m.featured, m.views, m.average_rating, m.created_at, m.updated_at`

const movieFrom = ` FROM movies m JOIN genres g ON g.id = m.genre_id `

type MovieRepository struct {
	pool *pgxpool.Pool
}

func NewMovieRepository(pool *pgxpool.Pool) *MovieRepository {
	return &MovieRepository{pool: pool}
}

func scanMovie(row pgx.Row) (*entity.Movie, error) {
	m := &entity.Movie{}
	var cast []byte
	if err := row.Scan(&m.ID, &m.Title, &m.Description, &m.ReleaseDate, &m.GenreID, &m.GenreName,
		&m.TrailerLink, &m.MovieLink, &m.CoverImageURL, &cast, &m.Runtime, &m.MovieType,
		&m.Featured, &m.Views, &m.AverageRating, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if len(cast) > 0 {
		if err := json.Unmarshal(cast, &m.Cast); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (r *MovieRepository) queryMovies(ctx context.Context, sql string, args ...any) ([]*entity.Movie, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MovieRepository) Create(ctx context.Context, m *entity.Movie) error {
	cast, err := json.Marshal(m.Cast)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO movies (title, description, release_date, genre_id, trailer_link, movie_link,
			cover_image_url, "cast", runtime, movie_type)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9, $10)
		RETURNING id, featured, views, average_rating, created_at, updated_at
	`, m.Title, m.Description, m.ReleaseDate, m.GenreID, m.TrailerLink, m.MovieLink,
		m.CoverImageURL, cast, m.Runtime, m.MovieType)
	return row.Scan(&m.ID, &m.Featured, &m.Views, &m.AverageRating, &m.CreatedAt, &m.UpdatedAt)
}

func (r *MovieRepository) Update(ctx context.Context, m *entity.Movie) error {
	cast, err := json.Marshal(m.Cast)
	if err != nil {
		return err
	}
	m.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE movies
		SET title = $1, description = $2, release_date = $3, genre_id = $4,
			trailer_link = NULLIF($5, ''), movie_link = NULLIF($6, ''),
			cover_image_url = COALESCE(NULLIF($7, ''), cover_image_url),
			"cast" = $8, runtime = $9, movie_type = $10, updated_at = $11
		WHERE id = $12
	`, m.Title, m.Description, m.ReleaseDate, m.GenreID, m.TrailerLink, m.MovieLink,
		m.CoverImageURL, cast, m.Runtime, m.MovieType, m.UpdatedAt, m.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Movie", m.ID)
	}
	return nil
}

func (r *MovieRepository) Delete(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Movie", id)
	}
	return nil
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*entity.Movie, error) {
	m, err := scanMovie(r.pool.QueryRow(ctx, `SELECT `+movieColumns+movieFrom+`WHERE m.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Movie", id)
	}
	return m, err
}

func (r *MovieRepository) List(ctx context.Context) ([]*entity.Movie, error) {
	return r.queryMovies(ctx, `SELECT `+movieColumns+movieFrom+`ORDER BY m.created_at DESC`)
}

func (r *MovieRepository) ListByIDs(ctx context.Context, ids []string) ([]*entity.Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.queryMovies(ctx, `SELECT `+movieColumns+movieFrom+`WHERE m.id = ANY($1)`, ids)
}

func (r *MovieRepository) ListByGenre(ctx context.Context, genreID string) ([]*entity.Movie, error) {
	return r.queryMovies(ctx,
		`SELECT `+movieColumns+movieFrom+`WHERE m.genre_id = $1 ORDER BY m.created_at DESC`, genreID)
}

func (r *MovieRepository) ListByType(ctx context.Context, movieType string) ([]*entity.Movie, error) {
	return r.queryMovies(ctx,
		`SELECT `+movieColumns+movieFrom+`WHERE m.movie_type = $1 ORDER BY m.created_at DESC`, movieType)
}

func (r *MovieRepository) Featured(ctx context.Context) ([]*entity.Movie, error) {
	return r.queryMovies(ctx,
		`SELECT `+movieColumns+movieFrom+`WHERE m.featured ORDER BY m.created_at DESC`)
}

func (r *MovieRepository) Recent(ctx context.Context, limit int) ([]*entity.Movie, error) {
	return r.queryMovies(ctx,
		`SELECT `+movieColumns+movieFrom+`ORDER BY m.created_at DESC LIMIT $1`, limit)
}

func (r *MovieRepository) TopRated(ctx context.Context, limit int) ([]*entity.Movie, error) {
	return r.queryMovies(ctx,
		`SELECT `+movieColumns+movieFrom+`ORDER BY m.average_rating DESC, m.created_at DESC LIMIT $1`, limit)
}

func (r *MovieRepository) MostViewed(ctx context.Context, limit int) ([]*entity.Movie, error) {
	return r.queryMovies(ctx,
		`SELECT `+movieColumns+movieFrom+`ORDER BY m.views DESC, m.created_at DESC LIMIT $1`, limit)
}

func (r *MovieRepository) SoonReleasing(ctx context.Context, after time.Time, limit int) ([]*entity.Movie, error) {
	return r.queryMovies(ctx,
		`SELECT `+movieColumns+movieFrom+`WHERE m.release_date > $1 ORDER BY m.release_date ASC LIMIT $2`,
		after, limit)
}

var searchSortColumns = map[string]string{
	"rating":      "m.average_rating",
	"views":       "m.views",
	"name":        "m.title",
	"releasedate": "m.release_date",
	"featured":    "m.featured",
}

func (r *MovieRepository) Search(ctx context.Context, q repository.SearchQuery) ([]*entity.Movie, error) {
	sql := `SELECT ` + movieColumns + movieFrom + `WHERE 1=1`
	args := []any{}
	if q.Term != "" {
		args = append(args, "%"+q.Term+"%")
		sql += ` AND (m.title ILIKE $1 OR m.description ILIKE $1)`
	}
	if q.GenreID != "" {
		args = append(args, q.GenreID)
		sql += ` AND m.genre_id = $` + strconv.Itoa(len(args))
	}
	col, ok := searchSortColumns[strings.ToLower(q.SortBy)]
	if !ok {
		col = "m.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(q.OrderBy, "asc") {
		dir = "ASC"
	}
	sql += ` ORDER BY ` + col + ` ` + dir
	return r.queryMovies(ctx, sql, args...)
}

func (r *MovieRepository) SetFeatured(ctx context.Context, id string, featured bool) error {
	res, err := r.pool.Exec(ctx,
		`UPDATE movies SET featured = $1, updated_at = now() WHERE id = $2`, featured, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Movie", id)
	}
	return nil
}

func (r *MovieRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx,
		`UPDATE movies SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperr.NotFound("Movie", id)
	}
	return nil
}

func (r *MovieRepository) UpsertRating(ctx context.Context, rt *entity.Rating) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO ratings (movie_id, user_id, rating, review)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (movie_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, review = EXCLUDED.review
		RETURNING id, created_at
	`, rt.MovieID, rt.UserID, rt.Rating, rt.Review)
	return row.Scan(&rt.ID, &rt.CreatedAt)
}

func (r *MovieRepository) RecomputeAverageRating(ctx context.Context, movieID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE movies
		SET average_rating = COALESCE((SELECT AVG(rating) FROM ratings WHERE movie_id = $1), 0)
		WHERE id = $1
	`, movieID)
	return err
}

var _ repository.MovieRepository = (*MovieRepository)(nil)
