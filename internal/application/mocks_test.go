package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cinevault/cinevault/internal/domain/entity"
	"github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/internal/infrastructure/stripe"
)

type userRepoMock struct {
	mock.Mock
}

func (m *userRepoMock) Create(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *userRepoMock) GetByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, u *entity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *userRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *userRepoMock) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.User), args.Error(1)
}

func (m *userRepoMock) RecordLoginFailure(ctx context.Context, id string, attempts int, lockoutUntil *time.Time) error {
	args := m.Called(ctx, id, attempts, lockoutUntil)
	return args.Error(0)
}

func (m *userRepoMock) ClearLockout(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *userRepoMock) UpdatePassword(ctx context.Context, id, hash string, history []string, changedAt time.Time) error {
	args := m.Called(ctx, id, hash, history, changedAt)
	return args.Error(0)
}

func (m *userRepoMock) ToggleFavorite(ctx context.Context, userID, movieID string) (bool, error) {
	args := m.Called(ctx, userID, movieID)
	return args.Bool(0), args.Error(1)
}

func (m *userRepoMock) IsFavorite(ctx context.Context, userID, movieID string) (bool, error) {
	args := m.Called(ctx, userID, movieID)
	return args.Bool(0), args.Error(1)
}

func (m *userRepoMock) FavoriteMovieIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type movieRepoMock struct {
	mock.Mock
}

func (m *movieRepoMock) Create(ctx context.Context, mv *entity.Movie) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

func (m *movieRepoMock) Update(ctx context.Context, mv *entity.Movie) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

func (m *movieRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *movieRepoMock) GetByID(ctx context.Context, id string) (*entity.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Movie), args.Error(1)
}

func (m *movieRepoMock) movies(args mock.Arguments) ([]*entity.Movie, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Movie), args.Error(1)
}

func (m *movieRepoMock) List(ctx context.Context) ([]*entity.Movie, error) {
	return m.movies(m.Called(ctx))
}

func (m *movieRepoMock) ListByIDs(ctx context.Context, ids []string) ([]*entity.Movie, error) {
	return m.movies(m.Called(ctx, ids))
}

func (m *movieRepoMock) ListByGenre(ctx context.Context, genreID string) ([]*entity.Movie, error) {
	return m.movies(m.Called(ctx, genreID))
}

func (m *movieRepoMock) ListByType(ctx context.Context, movieType string) ([]*entity.Movie, error) {
	return m.movies(m.Called(ctx, movieType))
}

func (m *movieRepoMock) Featured(ctx context.Context) ([]*entity.Movie, error) {
	return m.movies(m.Called(ctx))
}

func (m *movieRepoMock) Recent(ctx context.Context, limit int) ([]*entity.Movie, error) {
	return m.movies(m.Called(ctx, limit))
}

func (m *movieRepoMock) TopRated(ctx context.Context, limit int) ([]*entity.Movie, error) {
	return m.movies(m.Called(ctx, limit))
}

func (m *movieRepoMock) MostViewed(ctx context.Context, limit int) ([]*entity.Movie, error) {
	return m.movies(m.Called(ctx, limit))
}

func (m *movieRepoMock) SoonReleasing(ctx context.Context, after time.Time, limit int) ([]*entity.Movie, error) {
	return m.movies(m.Called(ctx, after, limit))
}

func (m *movieRepoMock) Search(ctx context.Context, q repository.SearchQuery) ([]*entity.Movie, error) {
	return m.movies(m.Called(ctx, q))
}

func (m *movieRepoMock) SetFeatured(ctx context.Context, id string, featured bool) error {
	args := m.Called(ctx, id, featured)
	return args.Error(0)
}

func (m *movieRepoMock) IncrementViews(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *movieRepoMock) UpsertRating(ctx context.Context, r *entity.Rating) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *movieRepoMock) RecomputeAverageRating(ctx context.Context, movieID string) error {
	args := m.Called(ctx, movieID)
	return args.Error(0)
}

type txRepoMock struct {
	mock.Mock
}

func (m *txRepoMock) Create(ctx context.Context, t *entity.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *txRepoMock) GetBySessionID(ctx context.Context, sessionID string) (*entity.Transaction, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *txRepoMock) LatestForUserMovie(ctx context.Context, userID, movieID string) (*entity.Transaction, error) {
	args := m.Called(ctx, userID, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *txRepoMock) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Transaction), args.Error(1)
}

func (m *txRepoMock) MarkPaid(ctx context.Context, sessionID, paymentIntent string) error {
	args := m.Called(ctx, sessionID, paymentIntent)
	return args.Error(0)
}

func (m *txRepoMock) HasPaid(ctx context.Context, userID, movieID string) (bool, error) {
	args := m.Called(ctx, userID, movieID)
	return args.Bool(0), args.Error(1)
}

type providerMock struct {
	mock.Mock
}

func (m *providerMock) CreateCheckoutSession(ctx context.Context, p stripe.SessionParams) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

func (m *providerMock) RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

type publisherMock struct {
	mock.Mock
}

func (m *publisherMock) PublishJSON(ctx context.Context, body any) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}
