package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewRepositories binds every repository to db.
func NewRepositories(db DBTX) domain.Repositories {
	return domain.Repositories{
		Showtimes: NewPostgresShowtimeRepository(db),
		Seats:     NewPostgresSeatRepository(db),
		Tickets:   NewPostgresTicketRepository(db),
		Payments:  NewPostgresPaymentRepository(db),
	}
}

type PostgresTxManager struct {
	db         *pgxpool.Pool
	timeout    time.Duration
	maxRetries uint
}

func NewPostgresTxManager(db *pgxpool.Pool, timeout time.Duration, maxRetries int) *PostgresTxManager {
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &PostgresTxManager{
		db:         db,
		timeout:    timeout,
		maxRetries: uint(maxRetries),
	}
}

// WithinSerializableTx runs fn in a SERIALIZABLE transaction, retrying the
// whole function when PostgreSQL aborts it with a serialization failure or
// deadlock. When retries run out the failure is reported as a conflict.
func (m *PostgresTxManager) WithinSerializableTx(
	ctx context.Context,
	fn func(ctx context.Context, repos domain.Repositories) error) error {

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	txOptions := pgx.TxOptions{IsoLevel: pgx.Serializable}

	operation := func() (struct{}, error) {
		err := runInTx(ctx, m.db, txOptions, func(tx pgx.Tx) error {
			return fn(ctx, NewRepositories(tx))
		})

		if err != nil && !isRetryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}

		return struct{}{}, err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 20 * time.Millisecond
	expBackoff.MaxInterval = 500 * time.Millisecond

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(m.maxRetries),
	)

	if err != nil && isRetryable(err) {
		return errors.Join(domain.ErrConcurrentUpdate, err)
	}

	return err
}

func runInTx(ctx context.Context, db *pgxpool.Pool, txOptions pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	// Rollback uses a fresh context so a cancelled request still releases
	// the transaction.
	rollbackCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	rollbackErr := tx.Rollback(rollbackCtx)
	if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
		return errors.Join(err, rollbackErr)
	}

	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == constraint
}
