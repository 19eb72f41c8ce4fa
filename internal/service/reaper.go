package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

const reaperLockKey = "locks:reservation-reaper"

// Locker hands out a short-lived lock shared by every instance of the
// service.
type Locker interface {
	// TryLock returns acquired=false without error when another holder owns
	// the key. unlock is nil unless the lock was acquired.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(context.Context) error, acquired bool, err error)
}

// ExpiryReaper moves pending tickets older than the reservation TTL to the
// expired state so their seats become available again.
type ExpiryReaper struct {
	txm      domain.TxManager
	locker   Locker
	clock    domain.Clock
	ttl      time.Duration
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics
}

func NewExpiryReaper(
	txm domain.TxManager,
	locker Locker,
	ttl, interval time.Duration,
	logger *slog.Logger,
	opts ...Option) *ExpiryReaper {

	o := newOptions(opts)

	return &ExpiryReaper{
		txm:      txm,
		locker:   locker,
		clock:    o.clock,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		metrics:  newMetrics(),
	}
}

// Run sweeps once immediately and then on every interval until ctx is done.
func (r *ExpiryReaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reservation reaper started", "ttl", r.ttl.String(), "interval", r.interval.String())

	for {
		r.tick(ctx)

		select {
		case <-ctx.Done():
			r.logger.Info("reservation reaper stopped")
			return
		case <-ticker.C:
		}
	}
}

func (r *ExpiryReaper) tick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("reservation reaper panicked", "panic", fmt.Sprint(rec))
		}
	}()

	if ctx.Err() != nil {
		return
	}

	_, err := r.Sweep(ctx)
	if err != nil {
		r.logger.Error("reservation sweep failed", "error", err)
	}
}

// Sweep expires every pending ticket created at or before now minus the TTL
// and returns their ids. It does nothing when another instance holds the
// sweep lock.
func (r *ExpiryReaper) Sweep(ctx context.Context) ([]int, error) {
	unlock, acquired, err := r.locker.TryLock(ctx, reaperLockKey, r.lockTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to acquire reaper lock: %w", err)
	}

	if !acquired {
		r.logger.Debug("reservation sweep skipped, lock held elsewhere")
		return nil, nil
	}

	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("failed to release reaper lock", "error", err)
		}
	}()

	target, err := domain.TicketStatusPending.Next(domain.TriggerReservationExpired)
	if err != nil {
		return nil, err
	}

	cutoff := r.clock.Now().Add(-r.ttl)

	var expired []int

	err = r.txm.WithinSerializableTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		ids, err := repos.Tickets.ExpirePending(ctx, cutoff, target)
		if err != nil {
			return err
		}

		expired = ids
		return nil
	})

	if err != nil {
		return nil, err
	}

	if len(expired) > 0 {
		r.metrics.reaperExpired.Add(ctx, int64(len(expired)))
		r.logger.Info("expired pending reservations", "count", len(expired), "cutoff", cutoff, "ticket_ids", expired)
	}

	return expired, nil
}

// lockTTL keeps the lock alive for a full interval so a slow sweep is not
// overlapped by another instance.
func (r *ExpiryReaper) lockTTL() time.Duration {
	if r.interval < time.Second {
		return time.Second
	}

	return r.interval
}
