package integration_test

import (
	"log/slog"
	"os"

	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-engine/internal/app"
	"github.com/metinatakli/ticket-booking-engine/internal/payment"
	appvalidator "github.com/metinatakli/ticket-booking-engine/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App            *app.Application
	DB             *pgxpool.Pool
	Redis          *redis.Client
	Provider       *payment.MockPaymentProvider
	SessionManager *scs.SessionManager
	Config         app.Config
	Logger         *slog.Logger
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	validator := appvalidator.NewValidator()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)
	provider := payment.NewMockPaymentProvider(cfg.Stripe.WebhookSecret)

	application := app.NewApp(
		cfg,
		logger,
		validator,
		sessionManager,
		db,
		redisClient,
		provider,
	)

	return &TestApp{
		App:            application,
		DB:             db,
		Redis:          redisClient,
		Provider:       provider,
		SessionManager: sessionManager,
		Config:         cfg,
		Logger:         logger,
	}, nil
}

func (a *TestApp) Close() {
	a.Redis.Close()
	a.DB.Close()
}
