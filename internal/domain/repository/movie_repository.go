package repository

import (
	"context"
	"time"

	"github.com/cinevault/cinevault/internal/domain/entity"
)

// SearchQuery captures the catalog search parameters after validation.
type SearchQuery struct {
	Term    string
	GenreID string
	SortBy  string // rating, views, name, releasedate, featured
	OrderBy string // asc, desc
}

type MovieRepository interface {
	Create(ctx context.Context, m *entity.Movie) error
	Update(ctx context.Context, m *entity.Movie) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Movie, error)

	List(ctx context.Context) ([]*entity.Movie, error)
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Movie, error)
	ListByGenre(ctx context.Context, genreID string) ([]*entity.Movie, error)
	ListByType(ctx context.Context, movieType string) ([]*entity.Movie, error)
	Featured(ctx context.Context) ([]*entity.Movie, error)
	Recent(ctx context.Context, limit int) ([]*entity.Movie, error)
	TopRated(ctx context.Context, limit int) ([]*entity.Movie, error)
	MostViewed(ctx context.Context, limit int) ([]*entity.Movie, error)
	SoonReleasing(ctx context.Context, after time.Time, limit int) ([]*entity.Movie, error)
	Search(ctx context.Context, q SearchQuery) ([]*entity.Movie, error)

	SetFeatured(ctx context.Context, id string, featured bool) error
	IncrementViews(ctx context.Context, id string) error

	UpsertRating(ctx context.Context, r *entity.Rating) error
	// RecomputeAverageRating refreshes the denormalized average on the movie row.
	RecomputeAverageRating(ctx context.Context, movieID string) error
}
