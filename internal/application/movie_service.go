package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cinevault/cinevault/internal/domain/entity"
	repo "github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/internal/infrastructure/search"
	"github.com/cinevault/cinevault/pkg/apperr"
	"github.com/cinevault/cinevault/pkg/helpers"
)

const (
	featuredCacheKey = "cache:movies:featured"
	featuredCacheTTL = 5 * time.Minute

	recentDefaultLimit   = 10
	topViewedLimit       = 10
	topRatedLimit        = 10
	soonReleasingLimit   = 5
	maxUploadObjectBytes = 10 << 20
)

var validSortKeys = map[string]bool{
	"rating": true, "views": true, "name": true, "releasedate": true, "featured": true,
}

// MovieService owns the catalog and the purchase-state annotation every
// listing carries. The search index, cache and object storage are all
// optional; the service degrades to SQL-only behavior without them.
type MovieService struct {
	Movies       repo.MovieRepository
	Users        repo.UserRepository
	Transactions repo.TransactionRepository
	Index        *search.MovieIndex // nil when search runs on SQL only
	Redis        *redis.Client      // nil disables the featured cache
	Storage      *storage.Client    // nil disables image uploads
	Bucket       string
	Logger       *logrus.Logger
}

func NewMovieService(
	movies repo.MovieRepository,
	users repo.UserRepository,
	transactions repo.TransactionRepository,
	index *search.MovieIndex,
	rdb *redis.Client,
	gcs *storage.Client,
	bucket string,
	logger *logrus.Logger,
) *MovieService {
	return &MovieService{
		Movies:       movies,
		Users:        users,
		Transactions: transactions,
		Index:        index,
		Redis:        rdb,
		Storage:      gcs,
		Bucket:       bucket,
		Logger:       logger,
	}
}

// annotate attaches purchase and favorite state for userID to every movie.
// An empty userID and any ledger failure both degrade to the unauthenticated
// view; a listing never fails because the annotation did.
func (s *MovieService) annotate(ctx context.Context, userID string, movies []*entity.Movie) []*entity.AnnotatedMovie {
	out := make([]*entity.AnnotatedMovie, 0, len(movies))

	favorites := map[string]bool{}
	if userID != "" {
		ids, err := s.Users.FavoriteMovieIDs(ctx, userID)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("favorite lookup failed, degrading")
		}
		for _, id := range ids {
			favorites[id] = true
		}
	}

	for _, m := range movies {
		am := &entity.AnnotatedMovie{Movie: *m, IsFavourite: favorites[m.ID]}
		if userID != "" {
			s.attachPurchase(ctx, userID, am)
		}
		out = append(out, am)
	}
	return out
}

// attachPurchase sets purchase state from the user's latest ledger row for
// the movie, degrading to the unauthenticated view on lookup failure.
func (s *MovieService) attachPurchase(ctx context.Context, userID string, am *entity.AnnotatedMovie) {
	tx, err := s.Transactions.LatestForUserMovie(ctx, userID, am.ID)
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID, "movie_id": am.ID,
		}).Warn("purchase lookup failed, degrading")
		return
	}
	if tx != nil {
		am.Transaction = tx
		am.Purchased = tx.Paid()
		am.IsPurchased = tx.Paid()
	}
}

func (s *MovieService) List(ctx context.Context, userID string) ([]*entity.AnnotatedMovie, error) {
	movies, err := s.Movies.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, movies), nil
}

// Detail returns one annotated movie. Point lookups replace the listing
// path's bulk favorite fetch. userID may be empty.
func (s *MovieService) Detail(ctx context.Context, userID, movieID string) (*entity.AnnotatedMovie, error) {
	m, err := s.Movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	am := &entity.AnnotatedMovie{Movie: *m}
	if userID != "" {
		fav, err := s.Users.IsFavorite(ctx, userID, movieID)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Warn("favorite lookup failed, degrading")
		}
		am.IsFavourite = fav
		s.attachPurchase(ctx, userID, am)
	}
	return am, nil
}

// Search runs the catalog search through the index when available, falling
// back to SQL whenever the index errors or is not configured.
func (s *MovieService) Search(ctx context.Context, userID string, q repo.SearchQuery) ([]*entity.AnnotatedMovie, error) {
	if q.SortBy != "" && !validSortKeys[strings.ToLower(q.SortBy)] {
		return nil, apperr.ValidationField("sortBy", "Sort key must be one of rating, views, name, releasedate, featured")
	}
	if q.OrderBy != "" && !strings.EqualFold(q.OrderBy, "asc") && !strings.EqualFold(q.OrderBy, "desc") {
		return nil, apperr.ValidationField("orderBy", "Order must be asc or desc")
	}

	var movies []*entity.Movie
	var err error
	if s.Index != nil {
		ids, esErr := s.Index.Search(ctx, q)
		if esErr == nil {
			movies, err = s.Movies.ListByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			return s.annotate(ctx, userID, orderByIDs(movies, ids)), nil
		}
		s.Logger.WithError(esErr).Warn("search index unavailable, falling back to sql")
	}
	movies, err = s.Movies.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, movies), nil
}

// orderByIDs reorders rows into the rank order the index returned.
func orderByIDs(movies []*entity.Movie, ids []string) []*entity.Movie {
	byID := make(map[string]*entity.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}
	out := make([]*entity.Movie, 0, len(movies))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Featured serves the featured listing through a short-lived cache. The
// annotation always runs fresh; only the raw rows are cached.
func (s *MovieService) Featured(ctx context.Context, userID string) ([]*entity.AnnotatedMovie, error) {
	var movies []*entity.Movie
	if s.Redis != nil {
		hit, err := helpers.RedisGetJSON(ctx, s.Redis, featuredCacheKey, &movies)
		if err != nil {
			s.Logger.WithError(err).Warn("featured cache read failed")
		}
		if hit {
			return s.annotate(ctx, userID, movies), nil
		}
	}
	movies, err := s.Movies.Featured(ctx)
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, featuredCacheKey, movies, featuredCacheTTL); err != nil {
			s.Logger.WithError(err).Warn("featured cache write failed")
		}
	}
	return s.annotate(ctx, userID, movies), nil
}

func (s *MovieService) Recent(ctx context.Context, userID string, limit int) ([]*entity.AnnotatedMovie, error) {
	if limit <= 0 {
		limit = recentDefaultLimit
	}
	movies, err := s.Movies.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, movies), nil
}

func (s *MovieService) TopViewed(ctx context.Context, userID string) ([]*entity.AnnotatedMovie, error) {
	movies, err := s.Movies.MostViewed(ctx, topViewedLimit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, movies), nil
}

// SoonReleasing returns the next releases after now.
func (s *MovieService) SoonReleasing(ctx context.Context, userID string) ([]*entity.AnnotatedMovie, error) {
	movies, err := s.Movies.SoonReleasing(ctx, time.Now(), soonReleasingLimit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, movies), nil
}

// ByType lists one side of the catalog, movies or series.
func (s *MovieService) ByType(ctx context.Context, userID, movieType string) ([]*entity.AnnotatedMovie, error) {
	movieType = strings.ToLower(movieType)
	if movieType != entity.TypeMovie && movieType != entity.TypeSeries {
		return nil, apperr.ValidationField("movieType", "Type must be movie or series")
	}
	movies, err := s.Movies.ListByType(ctx, movieType)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, movies), nil
}

func (s *MovieService) TopRated(ctx context.Context, userID string) ([]*entity.AnnotatedMovie, error) {
	movies, err := s.Movies.TopRated(ctx, topRatedLimit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, movies), nil
}

func (s *MovieService) ByGenre(ctx context.Context, userID, genreID string) ([]*entity.AnnotatedMovie, error) {
	movies, err := s.Movies.ListByGenre(ctx, genreID)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, movies), nil
}

// Rate records one user's rating (1..5) and refreshes the denormalized
// average on the movie row.
func (s *MovieService) Rate(ctx context.Context, userID, movieID string, rating int, review string) error {
	if rating < 1 || rating > 5 {
		return apperr.ValidationField("rating", "Rating must be between 1 and 5")
	}
	if _, err := s.Movies.GetByID(ctx, movieID); err != nil {
		return err
	}
	if err := s.Movies.UpsertRating(ctx, &entity.Rating{MovieID: movieID, UserID: userID, Rating: rating, Review: review}); err != nil {
		return err
	}
	if err := s.Movies.RecomputeAverageRating(ctx, movieID); err != nil {
		return err
	}
	s.reindex(ctx, movieID)
	return nil
}

func (s *MovieService) IncrementView(ctx context.Context, movieID string) error {
	return s.Movies.IncrementViews(ctx, movieID)
}

// ToggleFavorite flips the favorite flag and reports the new state.
func (s *MovieService) ToggleFavorite(ctx context.Context, userID, movieID string) (bool, error) {
	if _, err := s.Movies.GetByID(ctx, movieID); err != nil {
		return false, err
	}
	return s.Users.ToggleFavorite(ctx, userID, movieID)
}

func (s *MovieService) Favorites(ctx context.Context, userID string) ([]*entity.AnnotatedMovie, error) {
	ids, err := s.Users.FavoriteMovieIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	movies, err := s.Movies.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, userID, movies), nil
}

// MovieInput is the admin create/update payload after binding.
type MovieInput struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description" validate:"required"`
	ReleaseDate time.Time           `json:"release_date" validate:"required"`
	GenreID     string              `json:"genre_id" validate:"required,uuid"`
	TrailerLink string              `json:"trailer_link" validate:"omitempty,url"`
	MovieLink   string              `json:"movie_link" validate:"omitempty,url"`
	Cast        []entity.CastMember `json:"cast"`
	Runtime     int                 `json:"runtime" validate:"gte=0"`
	MovieType   string              `json:"movie_type" validate:"required,oneof=movie series"`
}

var movieInputValidator = validator.New()

func (in MovieInput) validate() error {
	if err := movieInputValidator.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return apperr.ValidationField(strings.ToLower(fe.Field()), "failed on '"+fe.Tag()+"' validation")
		}
		return apperr.Validation("Invalid movie payload")
	}
	return nil
}

// CoverUpload carries an optional multipart cover image.
type CoverUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// uploadCover stores the image and returns its public URL. Empty when no
// storage is configured or no file was sent.
func (s *MovieService) uploadCover(ctx context.Context, prefix string, cover *CoverUpload) (string, error) {
	if cover == nil || cover.Reader == nil {
		return "", nil
	}
	if s.Storage == nil {
		return "", apperr.Validation("Image uploads are not configured")
	}
	if cover.Size > maxUploadObjectBytes {
		return "", apperr.ValidationField("cover_image", "Image must be 10MB or smaller")
	}
	object := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), path.Ext(cover.Filename))
	url, err := helpers.UploadImage(ctx, s.Storage, s.Bucket, object, cover.ContentType, cover.Reader)
	if err != nil {
		return "", fmt.Errorf("upload cover image: %w", err)
	}
	return url, nil
}

func (s *MovieService) CreateMovie(ctx context.Context, in MovieInput, cover *CoverUpload) (*entity.Movie, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	coverURL, err := s.uploadCover(ctx, "movies", cover)
	if err != nil {
		return nil, err
	}
	m := &entity.Movie{
		Title:         in.Title,
		Description:   in.Description,
		ReleaseDate:   in.ReleaseDate,
		GenreID:       in.GenreID,
		TrailerLink:   in.TrailerLink,
		MovieLink:     in.MovieLink,
		CoverImageURL: coverURL,
		Cast:          in.Cast,
		Runtime:       in.Runtime,
		MovieType:     in.MovieType,
	}
	if err := s.Movies.Create(ctx, m); err != nil {
		return nil, err
	}
	s.reindex(ctx, m.ID)
	s.invalidateFeatured(ctx)
	return m, nil
}

func (s *MovieService) UpdateMovie(ctx context.Context, movieID string, in MovieInput, cover *CoverUpload) (*entity.Movie, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	m, err := s.Movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	coverURL, err := s.uploadCover(ctx, "movies", cover)
	if err != nil {
		return nil, err
	}
	m.Title = in.Title
	m.Description = in.Description
	m.ReleaseDate = in.ReleaseDate
	m.GenreID = in.GenreID
	m.TrailerLink = in.TrailerLink
	m.MovieLink = in.MovieLink
	m.Cast = in.Cast
	m.Runtime = in.Runtime
	m.MovieType = in.MovieType
	if coverURL != "" {
		m.CoverImageURL = coverURL
	}
	if err := s.Movies.Update(ctx, m); err != nil {
		return nil, err
	}
	s.reindex(ctx, m.ID)
	s.invalidateFeatured(ctx)
	return m, nil
}

func (s *MovieService) DeleteMovie(ctx context.Context, movieID string) error {
	if err := s.Movies.Delete(ctx, movieID); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, movieID); err != nil {
			s.Logger.WithError(err).WithField("movie_id", movieID).Warn("failed to remove movie from search index")
		}
	}
	s.invalidateFeatured(ctx)
	return nil
}

// SetFeatured flips the featured flag and drops the cached listing.
func (s *MovieService) SetFeatured(ctx context.Context, movieID string, featured bool) error {
	if err := s.Movies.SetFeatured(ctx, movieID, featured); err != nil {
		return err
	}
	s.reindex(ctx, movieID)
	s.invalidateFeatured(ctx)
	return nil
}

// reindex refreshes the search document from the current row, best effort.
func (s *MovieService) reindex(ctx context.Context, movieID string) {
	if s.Index == nil {
		return
	}
	m, err := s.Movies.GetByID(ctx, movieID)
	if err != nil {
		s.Logger.WithError(err).WithField("movie_id", movieID).Warn("reindex skipped, movie lookup failed")
		return
	}
	if err := s.Index.Index(ctx, m); err != nil {
		s.Logger.WithError(err).WithField("movie_id", movieID).Warn("failed to index movie")
	}
}

func (s *MovieService) invalidateFeatured(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, featuredCacheKey); err != nil {
		s.Logger.WithError(err).Warn("failed to invalidate featured cache")
	}
}
