package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/metinatakli/ticket-booking-engine/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type CreateBookingInput struct {
	UserID     int
	ShowtimeID int
	SeatID     int
	HolderName string
}

type ConfirmBookingInput struct {
	PaymentIntentID string
	UserID          int
	ShowtimeID      int
	SeatID          int
	HolderName      string
}

type BookingService struct {
	repos    domain.Repositories
	txm      domain.TxManager
	provider domain.PaymentProvider
	clock    domain.Clock
	logger   *slog.Logger
	metrics  *metrics
}

func NewBookingService(
	repos domain.Repositories,
	txm domain.TxManager,
	provider domain.PaymentProvider,
	logger *slog.Logger,
	opts ...Option) *BookingService {

	o := newOptions(opts)

	return &BookingService{
		repos:    repos,
		txm:      txm,
		provider: provider,
		clock:    o.clock,
		logger:   logger,
		metrics:  newMetrics(),
	}
}

// CreateBooking reserves a seat by writing a pending ticket.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.Ticket, error) {
	holderName, err := domain.NormalizeHolderName(in.HolderName)
	if err != nil {
		return nil, err
	}

	var ticket *domain.Ticket

	err = s.txm.WithinSerializableTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		t, err := s.newTicket(ctx, repos, in.UserID, in.ShowtimeID, in.SeatID, holderName)
		if err != nil {
			return err
		}

		t.Status = domain.TicketStatusPending

		err = repos.Tickets.Create(ctx, t)
		if err != nil {
			return err
		}

		ticket = t
		return nil
	})

	if err != nil {
		s.recordFailure(ctx, err)
		return nil, err
	}

	s.metrics.bookingsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("path", "reserve")))
	s.logger.Info("seat reserved",
		"ticket_id", ticket.ID,
		"showtime_id", ticket.ShowtimeID,
		"seat_id", ticket.SeatID,
		"user_id", ticket.UserID,
	)

	return ticket, nil
}

// ConfirmBooking allocates a seat for a payment that already went through at
// the provider. The ticket is written as confirmed and linked to the payment
// in the same transaction. A payment opened for the caller's pending
// reservation confirms that reservation instead of writing a new ticket.
func (s *BookingService) ConfirmBooking(ctx context.Context, in ConfirmBookingInput) (*domain.Ticket, error) {
	holderName, err := domain.NormalizeHolderName(in.HolderName)
	if err != nil {
		return nil, err
	}

	payment, err := s.repos.Payments.GetByIntentId(ctx, in.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	if payment.Status.Reversed() {
		return nil, domain.ErrPaymentNotSucceeded
	}

	// The provider is queried outside the transaction so no locks are held
	// across the network round-trip.
	status, err := s.provider.GetStatus(ctx, in.PaymentIntentID)
	if err != nil {
		return nil, providerError(err)
	}

	if status != domain.IntentStatusSucceeded && status != domain.IntentStatusProcessing {
		return nil, domain.ErrPaymentNotSucceeded
	}

	var (
		ticket *domain.Ticket
		path   string
	)

	err = s.txm.WithinSerializableTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		payment, err := repos.Payments.GetByIntentId(ctx, in.PaymentIntentID)
		if err != nil {
			return err
		}

		// a webhook may have reversed it since the check above
		if payment.Status.Reversed() {
			return domain.ErrPaymentNotSucceeded
		}

		if payment.TicketID != nil {
			path = "reserved"
			ticket, err = s.confirmReserved(ctx, repos, in, payment)
			return err
		}

		path = "confirm"

		t, err := s.newTicket(ctx, repos, in.UserID, in.ShowtimeID, in.SeatID, holderName)
		if err != nil {
			return err
		}

		if !domain.PriceMatches(t.Price, payment.Amount) {
			return domain.ErrPriceMismatch
		}

		t.Status = domain.TicketStatusConfirmed

		err = repos.Tickets.Create(ctx, t)
		if err != nil {
			return err
		}

		err = repos.Payments.LinkTicket(ctx, payment.ID, t.ID, domain.PaymentStatusSuccess)
		if err != nil {
			return err
		}

		ticket = t
		return nil
	})

	if err != nil {
		s.recordFailure(ctx, err)
		return nil, err
	}

	s.metrics.bookingsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("path", path)))
	s.logger.Info("seat confirmed",
		"ticket_id", ticket.ID,
		"showtime_id", ticket.ShowtimeID,
		"seat_id", ticket.SeatID,
		"user_id", ticket.UserID,
		"payment_intent_id", in.PaymentIntentID,
	)

	return ticket, nil
}

// confirmReserved moves the pending ticket a payment was opened for to
// confirmed. Tickets of other users, and tickets that already left pending,
// make the payment unusable for this call.
func (s *BookingService) confirmReserved(
	ctx context.Context,
	repos domain.Repositories,
	in ConfirmBookingInput,
	payment *domain.Payment) (*domain.Ticket, error) {

	ticket, err := repos.Tickets.GetByIdAndUserId(ctx, *payment.TicketID, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return nil, domain.ErrPaymentAlreadyLinked
		}

		return nil, err
	}

	if ticket.ShowtimeID != in.ShowtimeID || ticket.SeatID != in.SeatID {
		return nil, domain.ErrTicketMismatch
	}

	if ticket.Status != domain.TicketStatusPending {
		return nil, domain.ErrPaymentAlreadyLinked
	}

	next, err := ticket.Status.Next(domain.TriggerPaymentSucceeded)
	if err != nil {
		return nil, err
	}

	err = repos.Tickets.UpdateStatus(ctx, ticket.ID, ticket.Status, next)
	if err != nil {
		return nil, err
	}

	err = repos.Payments.UpdateStatus(ctx, payment.ID, domain.PaymentStatusSuccess)
	if err != nil {
		return nil, err
	}

	ticket.Status = next

	return ticket, nil
}

// newTicket validates the showtime and seat, checks that the seat is free
// and builds an unsaved ticket carrying the computed price.
func (s *BookingService) newTicket(
	ctx context.Context,
	repos domain.Repositories,
	userID, showtimeID, seatID int,
	holderName string) (*domain.Ticket, error) {

	showtime, seat, err := loadShowtimeSeat(ctx, repos, showtimeID, seatID)
	if err != nil {
		return nil, err
	}

	taken, err := repos.Tickets.ExistsActive(ctx, showtimeID, seatID)
	if err != nil {
		return nil, fmt.Errorf("failed to check seat %d: %w", seatID, err)
	}

	if taken {
		return nil, domain.ErrSeatAlreadyReserved
	}

	now := s.clock.Now()

	number, err := domain.GenerateTicketNumber(now)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ticket number: %w", err)
	}

	return &domain.Ticket{
		UserID:       userID,
		ShowtimeID:   showtimeID,
		SeatID:       seatID,
		HolderName:   holderName,
		TicketNumber: number,
		Price:        domain.CalculatePrice(showtime.BasePrice, seat.PriceMultiplier),
		CreatedAt:    now,
	}, nil
}

func (s *BookingService) recordFailure(ctx context.Context, err error) {
	if errors.Is(err, domain.ErrConflict) {
		s.metrics.bookingConflicts.Add(ctx, 1)
	}
}
