// Package service implements seat availability, the reserve/confirm booking
// protocol, payment reconciliation and the reservation expiry sweep.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

type Option func(*options)

type options struct {
	clock domain.Clock
}

func newOptions(opts []Option) options {
	o := options{clock: domain.SystemClock{}}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// WithClock replaces the system clock, mostly for tests.
func WithClock(clock domain.Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// loadShowtimeSeat loads a showtime and one of its seats, enforcing that the
// showtime is active and the seat belongs to the showtime's hall.
func loadShowtimeSeat(
	ctx context.Context,
	repos domain.Repositories,
	showtimeID, seatID int) (*domain.Showtime, *domain.Seat, error) {

	showtime, err := repos.Showtimes.GetById(ctx, showtimeID)
	if err != nil {
		return nil, nil, err
	}

	if !showtime.IsActive {
		return nil, nil, domain.ErrShowtimeNotActive
	}

	seat, err := repos.Seats.GetById(ctx, seatID)
	if err != nil {
		return nil, nil, err
	}

	if seat.HallID != showtime.HallID {
		return nil, nil, domain.ErrSeatNotInHall
	}

	return showtime, seat, nil
}

// providerError classifies an error returned by the payment provider so
// that unexpected transport failures surface as ErrUnavailable.
func providerError(err error) error {
	if domain.KindOf(err) != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
}
