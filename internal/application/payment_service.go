package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cinevault/cinevault/internal/domain/entity"
	repo "github.com/cinevault/cinevault/internal/domain/repository"
	"github.com/cinevault/cinevault/internal/infrastructure/stripe"
	"github.com/cinevault/cinevault/pkg/apperr"
	"github.com/cinevault/cinevault/pkg/mailer"
)

const transactionListLimit = 50

// CheckoutProvider is the slice of the payment provider the purchase flow
// needs. Satisfied by *stripe.Client; faked in tests.
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, p stripe.SessionParams) (*stripe.CheckoutSession, error)
	RetrieveSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
}

// ReceiptPublisher enqueues email jobs for the background worker.
type ReceiptPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// PaymentConfig holds the pricing defaults for hosted checkout.
type PaymentConfig struct {
	DefaultPriceUSD float64
	Currency        string
	SuccessURL      string
	CancelURL       string
}

// PaymentService drives the hosted-checkout purchase flow and owns the
// transaction ledger.
type PaymentService struct {
	Transactions repo.TransactionRepository
	Movies       repo.MovieRepository
	Users        repo.UserRepository
	Provider     CheckoutProvider
	Receipts     ReceiptPublisher // nil disables receipt emails
	Logger       *logrus.Logger
	Config       PaymentConfig
}

func NewPaymentService(
	transactions repo.TransactionRepository,
	movies repo.MovieRepository,
	users repo.UserRepository,
	provider CheckoutProvider,
	receipts ReceiptPublisher,
	logger *logrus.Logger,
	cfg PaymentConfig,
) *PaymentService {
	if cfg.DefaultPriceUSD <= 0 {
		cfg.DefaultPriceUSD = 50
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &PaymentService{
		Transactions: transactions,
		Movies:       movies,
		Users:        users,
		Provider:     provider,
		Receipts:     receipts,
		Logger:       logger,
		Config:       cfg,
	}
}

// CheckoutResult is what the client needs to redirect to hosted checkout.
type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateCheckoutSession opens a provider checkout session for one movie.
// Nothing is persisted here; the ledger only records verified outcomes, so
// abandoned checkouts leave no orphan rows.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, userID, movieID string) (*CheckoutResult, error) {
	if movieID == "" {
		return nil, apperr.ValidationField("movieId", "Movie id is required")
	}
	movie, err := s.Movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	session, err := s.Provider.CreateCheckoutSession(ctx, stripe.SessionParams{
		MovieID:     movie.ID,
		UserID:      userID,
		ProductName: movie.Title,
		AmountCents: int64(s.Config.DefaultPriceUSD * 100),
		Currency:    s.Config.Currency,
		SuccessURL:  s.Config.SuccessURL,
		CancelURL:   s.Config.CancelURL,
	})
	if err != nil {
		s.Logger.WithError(err).WithField("movie_id", movieID).Error("checkout session creation failed")
		return nil, apperr.Provider("stripe", err)
	}
	return &CheckoutResult{SessionID: session.ID, URL: session.URL}, nil
}

// VerifyTransaction settles a checkout session into the ledger. It is
// idempotent per session id: the pre-check catches the common retry, and
// the store's unique constraint catches the concurrent one.
func (s *PaymentService) VerifyTransaction(ctx context.Context, userID, movieID, sessionID string) (*entity.Transaction, error) {
	if sessionID == "" {
		return nil, apperr.ValidationField("sessionId", "Session id is required")
	}
	movie, err := s.Movies.GetByID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	existing, err := s.Transactions.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation("Transaction already processed")
	}

	session, err := s.Provider.RetrieveSession(ctx, sessionID)
	if err != nil {
		s.Logger.WithError(err).WithField("session_id", sessionID).Error("session retrieval failed")
		return nil, apperr.Provider("stripe", err)
	}
	intent := session.PaymentIntent()
	if intent == nil {
		return nil, apperr.Validation("No payment information found for this session")
	}

	isPaid := intent.Status == "succeeded" && intent.AmountReceived == intent.Amount
	status := entity.TxFailed
	if isPaid {
		status = entity.TxPaid
	}

	tx := &entity.Transaction{
		UserID:                userID,
		MovieID:               movie.ID,
		ProviderSessionID:     sessionID,
		ProviderPaymentIntent: intent.ID,
		Amount:                float64(intent.Amount) / 100,
		Currency:              intent.Currency,
		Status:                status,
	}
	if err := s.Transactions.Create(ctx, tx); err != nil {
		if errors.Is(err, repo.ErrDuplicateSession) {
			return nil, apperr.Validation("Transaction already processed")
		}
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"movie_id":   movie.ID,
		"status":     status,
	}).Info("transaction recorded")

	if isPaid {
		s.sendReceipt(ctx, tx, movie.Title)
	}
	return tx, nil
}

// sendReceipt enqueues the purchase-receipt email. Failures are logged and
// swallowed; the purchase already settled.
func (s *PaymentService) sendReceipt(ctx context.Context, tx *entity.Transaction, movieTitle string) {
	if s.Receipts == nil {
		return
	}
	user, err := s.Users.GetByID(ctx, tx.UserID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", tx.UserID).Warn("receipt skipped, user lookup failed")
		return
	}
	job := mailer.EmailJob{
		To:   user.Email,
		Type: mailer.TypePurchaseReceipt,
		Data: map[string]any{
			"Name":       user.Name,
			"MovieTitle": movieTitle,
			"Amount":     fmt.Sprintf("%.2f", tx.Amount),
			"Currency":   tx.Currency,
			"Reference":  tx.ProviderSessionID,
		},
	}
	if err := s.Receipts.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).Warn("failed to enqueue receipt email")
	}
}

// HandleWebhook consumes provider events. Only checkout.session.completed
// is acted on, and only when the session is already in the ledger; webhooks
// are advisory here, verification is the path of record.
func (s *PaymentService) HandleWebhook(ctx context.Context, event *stripe.Event) error {
	if event.Type != stripe.EventCheckoutCompleted {
		s.Logger.WithField("event_type", event.Type).Debug("ignoring webhook event")
		return nil
	}
	session := event.Data.Object
	existing, err := s.Transactions.GetBySessionID(ctx, session.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		s.Logger.WithField("session_id", session.ID).Debug("webhook for unknown session, skipping")
		return nil
	}
	if existing.Paid() {
		return nil
	}
	if err := s.Transactions.MarkPaid(ctx, session.ID, session.PaymentIntentID()); err != nil {
		return err
	}
	s.Logger.WithField("session_id", session.ID).Info("transaction settled by webhook")
	return nil
}

// ListTransactions returns the user's recent purchase attempts, newest first.
func (s *PaymentService) ListTransactions(ctx context.Context, userID string) ([]*entity.Transaction, error) {
	return s.Transactions.ListByUser(ctx, userID, transactionListLimit)
}

// IsPurchased reports whether the user has a settled purchase of the movie.
func (s *PaymentService) IsPurchased(ctx context.Context, userID, movieID string) (bool, error) {
	return s.Transactions.HasPaid(ctx, userID, movieID)
}
