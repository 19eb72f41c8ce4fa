package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
	"github.com/metinatakli/ticket-booking-engine/internal/lock"
	"github.com/metinatakli/ticket-booking-engine/internal/payment"
	"github.com/metinatakli/ticket-booking-engine/internal/repository"
	"github.com/metinatakli/ticket-booking-engine/internal/service"
	appvalidator "github.com/metinatakli/ticket-booking-engine/internal/validator"
	"github.com/metinatakli/ticket-booking-engine/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v82"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

const instrumentationName = "github.com/metinatakli/ticket-booking-engine"

type seatService interface {
	GetAvailableSeats(ctx context.Context, showtimeID int) ([]domain.SeatAvailability, error)
}

type bookingService interface {
	CreateBooking(ctx context.Context, in service.CreateBookingInput) (*domain.Ticket, error)
	ConfirmBooking(ctx context.Context, in service.ConfirmBookingInput) (*domain.Ticket, error)
	CancelTicket(ctx context.Context, userID, ticketID int) (*domain.Ticket, error)
	GetTicket(ctx context.Context, userID, ticketID int) (*domain.Ticket, error)
	ListTickets(ctx context.Context, userID int) ([]domain.Ticket, error)
}

type paymentService interface {
	InitiatePayment(ctx context.Context, in service.InitiatePaymentInput) (*service.InitiatePaymentResult, error)
	ProcessWebhook(ctx context.Context, payload []byte, signatureHeader string) (bool, error)
}

type reaper interface {
	Run(ctx context.Context)
}

type Application struct {
	config         Config
	logger         *slog.Logger
	validator      *validator.Validate
	sessionManager *scs.SessionManager

	seatService    seatService
	bookingService bookingService
	paymentService paymentService
	reaper         reaper
}

func Run() error {
	cfg, displayVersion, err := LoadConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		return nil
	}

	bootstrap := &Application{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}

	shutdownTelemetry, err := bootstrap.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	logger := slog.New(NewMultiHandler(
		slog.NewTextHandler(os.Stdout, nil),
		otelslog.NewHandler(instrumentationName),
	))

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	stripe.Key = cfg.Stripe.SecretKey

	app := NewApp(
		cfg,
		logger,
		appvalidator.NewValidator(),
		NewSessionManager(redisClient),
		db,
		redisClient,
		payment.NewStripePaymentProvider(cfg.Stripe.WebhookSecret),
	)

	return app.Serve()
}

// NewApp wires the repositories, services and the expiry reaper on top of
// the given connections.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	validator *validator.Validate,
	sessionManager *scs.SessionManager,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	provider domain.PaymentProvider) *Application {

	repos := repository.NewRepositories(db)
	txm := repository.NewPostgresTxManager(db, cfg.Booking.TxTimeout, cfg.Booking.TxMaxRetries)

	return &Application{
		config:         cfg,
		logger:         logger,
		validator:      validator,
		sessionManager: sessionManager,
		seatService:    service.NewSeatService(repos),
		bookingService: service.NewBookingService(repos, txm, provider, logger),
		paymentService: service.NewPaymentService(repos, txm, provider, cfg.Stripe.Currency, logger),
		reaper: service.NewExpiryReaper(
			txm,
			lock.NewRedisLocker(redisClient),
			cfg.Booking.ReservationTTL,
			cfg.Booking.ReaperInterval,
			logger,
		),
	}
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := redisotel.InstrumentTracing(rdb)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Serve runs the HTTP server and the expiry reaper until SIGINT or SIGTERM.
// The reaper is stopped and waited for before Serve returns.
func (app *Application) Serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.reaper.Run(reaperCtx)
	}()

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)

		stopReaper()
		wg.Wait()

		shutdownError <- err
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		stopReaper()
		wg.Wait()
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
