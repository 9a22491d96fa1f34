package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cinevault/cinevault/internal/domain/entity"
	"github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/internal/infrastructure/stripe"
	"github.com/cinevault/cinevault/pkg/apperr"
)

func newPaymentService(txs *txRepoMock, movies *movieRepoMock, users *userRepoMock, provider *providerMock, receipts ReceiptPublisher) *PaymentService {
	return NewPaymentService(txs, movies, users, provider, receipts, testLogger(), PaymentConfig{
		DefaultPriceUSD: 50,
		Currency:        "usd",
		SuccessURL:      "https://example.com/success",
		CancelURL:       "https://example.com/cancel",
	})
}

func expandedIntent(t *testing.T, pi stripe.PaymentIntent) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(pi)
	assert.NoError(t, err)
	return raw
}

func TestPaymentService_CreateCheckoutSession(t *testing.T) {
	movies := &movieRepoMock{}
	movies.On("GetByID", mock.Anything, "m1").
		Return(&entity.Movie{ID: "m1", Title: "Heat"}, nil).Once()

	provider := &providerMock{}
	provider.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(p stripe.SessionParams) bool {
		return p.MovieID == "m1" && p.UserID == "u1" &&
			p.ProductName == "Heat" && p.AmountCents == 5000 && p.Currency == "usd"
	})).Return(&stripe.CheckoutSession{ID: "cs_123", URL: "https://checkout.example/cs_123"}, nil).Once()

	svc := newPaymentService(&txRepoMock{}, movies, &userRepoMock{}, provider, nil)
	res, err := svc.CreateCheckoutSession(context.Background(), "u1", "m1")

	assert.NoError(t, err)
	assert.Equal(t, "cs_123", res.SessionID)
	assert.Equal(t, "https://checkout.example/cs_123", res.URL)
	movies.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func TestPaymentService_CreateCheckoutSession_MovieMissing(t *testing.T) {
	movies := &movieRepoMock{}
	movies.On("GetByID", mock.Anything, "missing").
		Return(nil, apperr.NotFound("Movie", "missing")).Once()

	svc := newPaymentService(&txRepoMock{}, movies, &userRepoMock{}, &providerMock{}, nil)
	_, err := svc.CreateCheckoutSession(context.Background(), "u1", "missing")

	var nf *apperr.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestPaymentService_CreateCheckoutSession_ProviderDown(t *testing.T) {
	movies := &movieRepoMock{}
	movies.On("GetByID", mock.Anything, "m1").
		Return(&entity.Movie{ID: "m1", Title: "Heat"}, nil).Once()
	provider := &providerMock{}
	provider.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused")).Once()

	svc := newPaymentService(&txRepoMock{}, movies, &userRepoMock{}, provider, nil)
	_, err := svc.CreateCheckoutSession(context.Background(), "u1", "m1")

	var pe *apperr.ProviderError
	assert.ErrorAs(t, err, &pe)
}

func TestPaymentService_VerifyTransaction_Paid(t *testing.T) {
	movies := &movieRepoMock{}
	movies.On("GetByID", mock.Anything, "m1").
		Return(&entity.Movie{ID: "m1", Title: "Heat"}, nil).Once()

	txs := &txRepoMock{}
	txs.On("GetBySessionID", mock.Anything, "cs_123").Return(nil, nil).Once()
	txs.On("Create", mock.Anything, mock.MatchedBy(func(tx *entity.Transaction) bool {
		return tx.UserID == "u1" && tx.MovieID == "m1" &&
			tx.ProviderSessionID == "cs_123" &&
			tx.ProviderPaymentIntent == "pi_1" &&
			tx.Amount == 50.00 && tx.Status == entity.TxPaid
	})).Return(nil).Once()

	provider := &providerMock{}
	provider.On("RetrieveSession", mock.Anything, "cs_123").
		Return(&stripe.CheckoutSession{
			ID: "cs_123", Status: "complete",
			RawPaymentIntent: expandedIntent(t, stripe.PaymentIntent{
				ID: "pi_1", Status: "succeeded", Amount: 5000, AmountReceived: 5000, Currency: "usd",
			}),
		}, nil).Once()

	users := &userRepoMock{}
	users.On("GetByID", mock.Anything, "u1").
		Return(&entity.User{ID: "u1", Name: "Jo", Email: "jo@example.com"}, nil).Once()

	receipts := &publisherMock{}
	receipts.On("PublishJSON", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newPaymentService(txs, movies, users, provider, receipts)
	tx, err := svc.VerifyTransaction(context.Background(), "u1", "m1", "cs_123")

	assert.NoError(t, err)
	assert.True(t, tx.Paid())
	txs.AssertExpectations(t)
	receipts.AssertExpectations(t)
}

func TestPaymentService_VerifyTransaction_PartialCaptureFails(t *testing.T) {
	movies := &movieRepoMock{}
	movies.On("GetByID", mock.Anything, "m1").
		Return(&entity.Movie{ID: "m1", Title: "Heat"}, nil).Once()

	txs := &txRepoMock{}
	txs.On("GetBySessionID", mock.Anything, "cs_123").Return(nil, nil).Once()
	txs.On("Create", mock.Anything, mock.MatchedBy(func(tx *entity.Transaction) bool {
		return tx.Status == entity.TxFailed
	})).Return(nil).Once()

	provider := &providerMock{}
	provider.On("RetrieveSession", mock.Anything, "cs_123").
		Return(&stripe.CheckoutSession{
			ID: "cs_123",
			RawPaymentIntent: expandedIntent(t, stripe.PaymentIntent{
				ID: "pi_1", Status: "succeeded", Amount: 5000, AmountReceived: 2500, Currency: "usd",
			}),
		}, nil).Once()

	svc := newPaymentService(txs, movies, &userRepoMock{}, provider, nil)
	tx, err := svc.VerifyTransaction(context.Background(), "u1", "m1", "cs_123")

	// A partial capture is recorded, just never as paid.
	assert.NoError(t, err)
	assert.False(t, tx.Paid())
	txs.AssertExpectations(t)
}

func TestPaymentService_VerifyTransaction_AlreadyProcessed(t *testing.T) {
	movies := &movieRepoMock{}
	movies.On("GetByID", mock.Anything, "m1").
		Return(&entity.Movie{ID: "m1"}, nil).Once()

	txs := &txRepoMock{}
	txs.On("GetBySessionID", mock.Anything, "cs_123").
		Return(&entity.Transaction{ID: "t1", ProviderSessionID: "cs_123"}, nil).Once()

	provider := &providerMock{}
	svc := newPaymentService(txs, movies, &userRepoMock{}, provider, nil)
	_, err := svc.VerifyTransaction(context.Background(), "u1", "m1", "cs_123")

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "Transaction already processed", ve.Message)
	provider.AssertNotCalled(t, "RetrieveSession", mock.Anything, mock.Anything)
}

func TestPaymentService_VerifyTransaction_ConcurrentInsertLosesRace(t *testing.T) {
	movies := &movieRepoMock{}
	movies.On("GetByID", mock.Anything, "m1").
		Return(&entity.Movie{ID: "m1"}, nil).Once()

	// Pre-check sees nothing, but by insert time another request won.
	txs := &txRepoMock{}
	txs.On("GetBySessionID", mock.Anything, "cs_123").Return(nil, nil).Once()
	txs.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateSession).Once()

	provider := &providerMock{}
	provider.On("RetrieveSession", mock.Anything, "cs_123").
		Return(&stripe.CheckoutSession{
			ID: "cs_123",
			RawPaymentIntent: expandedIntent(t, stripe.PaymentIntent{
				ID: "pi_1", Status: "succeeded", Amount: 5000, AmountReceived: 5000,
			}),
		}, nil).Once()

	svc := newPaymentService(txs, movies, &userRepoMock{}, provider, nil)
	_, err := svc.VerifyTransaction(context.Background(), "u1", "m1", "cs_123")

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, "Transaction already processed", ve.Message)
	txs.AssertExpectations(t)
}

func TestPaymentService_VerifyTransaction_NoIntent(t *testing.T) {
	movies := &movieRepoMock{}
	movies.On("GetByID", mock.Anything, "m1").
		Return(&entity.Movie{ID: "m1"}, nil).Once()

	txs := &txRepoMock{}
	txs.On("GetBySessionID", mock.Anything, "cs_123").Return(nil, nil).Once()

	provider := &providerMock{}
	provider.On("RetrieveSession", mock.Anything, "cs_123").
		Return(&stripe.CheckoutSession{ID: "cs_123"}, nil).Once()

	svc := newPaymentService(txs, movies, &userRepoMock{}, provider, nil)
	_, err := svc.VerifyTransaction(context.Background(), "u1", "m1", "cs_123")

	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
	txs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPaymentService_HandleWebhook_IgnoresOtherEvents(t *testing.T) {
	txs := &txRepoMock{}
	svc := newPaymentService(txs, &movieRepoMock{}, &userRepoMock{}, &providerMock{}, nil)

	err := svc.HandleWebhook(context.Background(), &stripe.Event{Type: "invoice.created"})

	assert.NoError(t, err)
	txs.AssertNotCalled(t, "GetBySessionID", mock.Anything, mock.Anything)
}

func TestPaymentService_HandleWebhook_UnknownSessionNoop(t *testing.T) {
	txs := &txRepoMock{}
	txs.On("GetBySessionID", mock.Anything, "cs_unknown").Return(nil, nil).Once()

	svc := newPaymentService(txs, &movieRepoMock{}, &userRepoMock{}, &providerMock{}, nil)
	event := &stripe.Event{Type: stripe.EventCheckoutCompleted}
	event.Data.Object = stripe.CheckoutSession{ID: "cs_unknown"}

	err := svc.HandleWebhook(context.Background(), event)

	assert.NoError(t, err)
	txs.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	txs.AssertExpectations(t)
}

func TestPaymentService_HandleWebhook_SettlesExistingRow(t *testing.T) {
	txs := &txRepoMock{}
	txs.On("GetBySessionID", mock.Anything, "cs_123").
		Return(&entity.Transaction{ID: "t1", ProviderSessionID: "cs_123", Status: entity.TxFailed}, nil).Once()
	txs.On("MarkPaid", mock.Anything, "cs_123", "pi_1").Return(nil).Once()

	svc := newPaymentService(txs, &movieRepoMock{}, &userRepoMock{}, &providerMock{}, nil)
	event := &stripe.Event{Type: stripe.EventCheckoutCompleted}
	event.Data.Object = stripe.CheckoutSession{ID: "cs_123", RawPaymentIntent: json.RawMessage(`"pi_1"`)}

	err := svc.HandleWebhook(context.Background(), event)

	assert.NoError(t, err)
	txs.AssertExpectations(t)
}

func TestPaymentService_ReceiptFailureDoesNotFailVerification(t *testing.T) {
	movies := &movieRepoMock{}
	movies.On("GetByID", mock.Anything, "m1").
		Return(&entity.Movie{ID: "m1", Title: "Heat"}, nil).Once()

	txs := &txRepoMock{}
	txs.On("GetBySessionID", mock.Anything, "cs_123").Return(nil, nil).Once()
	txs.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	provider := &providerMock{}
	provider.On("RetrieveSession", mock.Anything, "cs_123").
		Return(&stripe.CheckoutSession{
			ID: "cs_123",
			RawPaymentIntent: expandedIntent(t, stripe.PaymentIntent{
				ID: "pi_1", Status: "succeeded", Amount: 5000, AmountReceived: 5000,
			}),
		}, nil).Once()

	users := &userRepoMock{}
	users.On("GetByID", mock.Anything, "u1").
		Return(&entity.User{ID: "u1", Email: "jo@example.com"}, nil).Once()

	receipts := &publisherMock{}
	receipts.On("PublishJSON", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	svc := newPaymentService(txs, movies, users, provider, receipts)
	tx, err := svc.VerifyTransaction(context.Background(), "u1", "m1", "cs_123")

	assert.NoError(t, err)
	assert.True(t, tx.Paid())
	receipts.AssertExpectations(t)
}
