package app

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	DB               DBConfig
	Redis            RedisConfig
	Stripe           StripeConfig
	Booking          BookingConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
}

type BookingConfig struct {
	ReservationTTL time.Duration
	ReaperInterval time.Duration
	TxTimeout      time.Duration
	TxMaxRetries   int
}

// LoadConfig reads an optional .env file and then parses args. Environment
// variables provide the defaults and flags override them.
func LoadConfig(args []string) (Config, bool, error) {
	var cfg Config

	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, false, err
	}

	fs := flag.NewFlagSet("api", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	fs.StringVar(&cfg.Env, "env", envStr("ENV", "dev"), "Environment (dev|staging|prod)")
	fs.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envStr("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")

	fs.StringVar(&cfg.DB.DSN, "db-dsn", envStr("DB_DSN", ""), "PostgreSQL DSN")
	fs.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	fs.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	fs.StringVar(&cfg.Redis.URL, "redis-url", envStr("REDIS_URL", ""), "Redis URL")
	fs.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	fs.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	fs.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	fs.StringVar(&cfg.Stripe.SecretKey, "stripe-key", envStr("STRIPE_KEY", ""), "Stripe secret key")
	fs.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", envStr("STRIPE_WEBHOOK_SECRET", ""), "Stripe webhook secret")
	fs.StringVar(&cfg.Stripe.Currency, "stripe-currency", envStr("STRIPE_CURRENCY", "usd"), "Currency of payment intents")

	fs.DurationVar(&cfg.Booking.ReservationTTL, "reservation-ttl", envDuration("RESERVATION_TTL", 15*time.Minute), "Lifetime of a pending reservation")
	fs.DurationVar(&cfg.Booking.ReaperInterval, "reaper-interval", envDuration("REAPER_INTERVAL", time.Minute), "Interval between reservation expiry sweeps")
	fs.DurationVar(&cfg.Booking.TxTimeout, "tx-timeout", 30*time.Second, "Timeout of a booking transaction")
	fs.IntVar(&cfg.Booking.TxMaxRetries, "tx-max-retries", 3, "Attempts of a booking transaction on serialization failure")

	displayVersion := fs.Bool("version", false, "Display version and exit")

	err = fs.Parse(args)
	if err != nil {
		return cfg, false, err
	}

	if *displayVersion {
		return cfg, true, nil
	}

	err = cfg.validate()
	if err != nil {
		return cfg, false, err
	}

	return cfg, false, nil
}

// validate rejects settings the server cannot run with. Webhooks are
// authenticated by the signing secret alone, so an empty one is refused.
func (c Config) validate() error {
	var errs []error

	if c.Stripe.SecretKey == "" {
		errs = append(errs, errors.New("stripe-key (STRIPE_KEY) must be set"))
	}

	if c.Stripe.WebhookSecret == "" {
		errs = append(errs, errors.New("stripe-webhook-secret (STRIPE_WEBHOOK_SECRET) must be set"))
	}

	if c.Booking.ReservationTTL <= 0 || c.Booking.ReaperInterval <= 0 {
		errs = append(errs, errors.New("reservation-ttl and reaper-interval must be positive"))
	}

	return errors.Join(errs...)
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}

	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}

	return v
}
