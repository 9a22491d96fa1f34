package router

import (
	"time"

	app "github.com/cinevault/cinevault/internal/application"
	"github.com/cinevault/cinevault/internal/container"
	"github.com/cinevault/cinevault/internal/infrastructure/captcha"
	pginfra "github.com/cinevault/cinevault/internal/infrastructure/postgres"
	"github.com/cinevault/cinevault/internal/infrastructure/search"
	"github.com/cinevault/cinevault/internal/infrastructure/stripe"
	handlers "github.com/cinevault/cinevault/internal/interface/http"
	"github.com/cinevault/cinevault/internal/router/modules"
)

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	movieRepo := pginfra.NewMovieRepository(container.GetPGPool())
	genreRepo := pginfra.NewGenreRepository(container.GetPGPool())
	txRepo := pginfra.NewTransactionRepository(container.GetPGPool())

	var movieIndex *search.MovieIndex
	if es := container.GetES(); es != nil {
		movieIndex = search.NewMovieIndex(es, cfg.ESMoviesIndex)
	}

	var receipts app.ReceiptPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		receipts = pub
	}

	authSvc := app.NewAuthService(userRepo, container.GetJWT(), logger, app.SecurityPolicy{
		BcryptCost:       cfg.BcryptCost,
		MaxLoginAttempts: cfg.MaxLoginAttempts,
		LockoutWindow:    cfg.LockoutWindow,
		PasswordExpiry:   time.Duration(cfg.PasswordExpiryDays) * 24 * time.Hour,
		HistoryLimit:     cfg.PasswordHistorySize,
	})
	movieSvc := app.NewMovieService(
		movieRepo, userRepo, txRepo,
		movieIndex, container.GetRedis(), container.GetGCS(), cfg.GCSBucket,
		logger,
	)
	paymentSvc := app.NewPaymentService(
		txRepo, movieRepo, userRepo,
		stripe.NewClient(cfg.StripeSecretKey, cfg.StripeAPIURL),
		receipts, logger,
		app.PaymentConfig{
			DefaultPriceUSD: cfg.MoviePriceUSD,
			Currency:        cfg.CheckoutCurrency,
			SuccessURL:      cfg.PaymentSuccessURL,
			CancelURL:       cfg.PaymentCancelURL,
		},
	)
	genreSvc := app.NewGenreService(genreRepo, container.GetGCS(), cfg.GCSBucket, logger)
	adminSvc := app.NewAdminService(userRepo, receipts, logger, cfg.BcryptCost)

	verifier := captcha.NewVerifier(cfg.CaptchaEnabled, cfg.CaptchaSecret)

	authHandler := handlers.NewAuthHandler(authSvc, movieSvc, verifier, logger, cfg.EncryptionPassphrase, cfg.EncryptionSalt)
	movieHandler := handlers.NewMovieHandler(movieSvc, paymentSvc, logger)
	genreHandler := handlers.NewGenreHandler(genreSvc, logger)
	adminHandler := handlers.NewAdminHandler(adminSvc, logger)
	webhookHandler := handlers.NewWebhookHandler(paymentSvc, logger)

	jwt := container.GetJWT()
	r.Add(modules.NewAuthModule(authHandler, jwt, cfg.AuthRateMax, cfg.AuthRateWindow))
	r.Add(modules.NewMovieModule(movieHandler, jwt))
	r.Add(modules.NewGenreModule(genreHandler, jwt))
	r.Add(modules.NewAdminModule(adminHandler, jwt))
	r.Add(modules.NewWebhookModule(webhookHandler))
}
