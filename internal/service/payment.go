package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InitiatePaymentInput names either a free seat or, through TicketID, the
// caller's own pending reservation. ShowtimeID and SeatID may be left zero
// when TicketID is set.
type InitiatePaymentInput struct {
	UserID     int
	TicketID   int
	ShowtimeID int
	SeatID     int
}

type InitiatePaymentResult struct {
	PaymentIntentID string
	ClientSecret    string
	Amount          decimal.Decimal
	Currency        string
}

// PaymentService creates payment intents and reconciles provider webhooks
// with local payment and ticket state.
type PaymentService struct {
	repos    domain.Repositories
	txm      domain.TxManager
	provider domain.PaymentProvider
	currency string
	clock    domain.Clock
	logger   *slog.Logger
	metrics  *metrics
}

func NewPaymentService(
	repos domain.Repositories,
	txm domain.TxManager,
	provider domain.PaymentProvider,
	currency string,
	logger *slog.Logger,
	opts ...Option) *PaymentService {

	o := newOptions(opts)

	return &PaymentService{
		repos:    repos,
		txm:      txm,
		provider: provider,
		currency: currency,
		clock:    o.clock,
		logger:   logger,
		metrics:  newMetrics(),
	}
}

// InitiatePayment opens a payment intent at the provider and records a
// pending payment for it. Paying for a free seat does not hold it; the
// booking paths decide who gets it. Paying for a pending reservation links
// the payment to that ticket up front so the succeeded webhook confirms it.
func (s *PaymentService) InitiatePayment(ctx context.Context, in InitiatePaymentInput) (*InitiatePaymentResult, error) {
	var (
		amount   decimal.Decimal
		ticketID *int
		err      error
	)

	if in.TicketID != 0 {
		var ticket *domain.Ticket

		ticket, err = s.reservedTicket(ctx, in)
		if err != nil {
			return nil, err
		}

		in.ShowtimeID, in.SeatID = ticket.ShowtimeID, ticket.SeatID
		amount = ticket.Price
		ticketID = &ticket.ID
	} else {
		amount, err = s.freeSeatPrice(ctx, in.ShowtimeID, in.SeatID)
		if err != nil {
			return nil, err
		}
	}

	metadata := map[string]string{
		"user_id":     strconv.Itoa(in.UserID),
		"showtime_id": strconv.Itoa(in.ShowtimeID),
		"seat_id":     strconv.Itoa(in.SeatID),
	}
	if ticketID != nil {
		metadata["ticket_id"] = strconv.Itoa(*ticketID)
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, domain.PaymentIntentRequest{
		Amount:         amount,
		Currency:       s.currency,
		IdempotencyKey: uuid.NewString(),
		Metadata:       metadata,
	})
	if err != nil {
		return nil, providerError(err)
	}

	payment := domain.Payment{
		TicketID:         ticketID,
		ProviderIntentID: intent.ID,
		Amount:           amount,
		Currency:         s.currency,
		Status:           domain.PaymentStatusPending,
		CreatedAt:        s.clock.Now(),
	}

	err = s.repos.Payments.Create(ctx, &payment)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to record payment for intent %s: %w", intent.ID, err)
	}

	s.logger.Info("payment intent created",
		"payment_id", payment.ID,
		"payment_intent_id", intent.ID,
		"ticket_id", in.TicketID,
		"amount", amount.StringFixed(2),
		"user_id", in.UserID,
	)

	return &InitiatePaymentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          amount,
		Currency:        s.currency,
	}, nil
}

// reservedTicket loads the caller's pending ticket that the payment is for.
func (s *PaymentService) reservedTicket(ctx context.Context, in InitiatePaymentInput) (*domain.Ticket, error) {
	ticket, err := s.repos.Tickets.GetByIdAndUserId(ctx, in.TicketID, in.UserID)
	if err != nil {
		return nil, err
	}

	if (in.ShowtimeID != 0 && in.ShowtimeID != ticket.ShowtimeID) || (in.SeatID != 0 && in.SeatID != ticket.SeatID) {
		return nil, domain.ErrTicketMismatch
	}

	if ticket.Status != domain.TicketStatusPending {
		return nil, domain.ErrOnlyPendingPayable
	}

	_, _, err = loadShowtimeSeat(ctx, s.repos, ticket.ShowtimeID, ticket.SeatID)
	if err != nil {
		return nil, err
	}

	return ticket, nil
}

func (s *PaymentService) freeSeatPrice(ctx context.Context, showtimeID, seatID int) (decimal.Decimal, error) {
	showtime, seat, err := loadShowtimeSeat(ctx, s.repos, showtimeID, seatID)
	if err != nil {
		return decimal.Zero, err
	}

	taken, err := s.repos.Tickets.ExistsActive(ctx, showtimeID, seatID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to check seat %d: %w", seatID, err)
	}

	if taken {
		return decimal.Zero, domain.ErrSeatAlreadyReserved
	}

	return domain.CalculatePrice(showtime.BasePrice, seat.PriceMultiplier), nil
}

// webhookRule describes how one event type moves payment and ticket state.
type webhookRule struct {
	paymentStatus domain.PaymentStatus
	ticketTrigger domain.TicketTrigger
}

var webhookRules = map[string]webhookRule{
	domain.EventPaymentIntentSucceeded: {domain.PaymentStatusSuccess, domain.TriggerPaymentSucceeded},
	domain.EventPaymentIntentFailed:    {domain.PaymentStatusFailed, domain.TriggerPaymentReversed},
	domain.EventPaymentIntentCanceled:  {domain.PaymentStatusRefunded, domain.TriggerPaymentReversed},
}

const (
	outcomeApplied        = "applied"
	outcomeDuplicate      = "duplicate"
	outcomeIgnored        = "ignored"
	outcomeUnknownPayment = "unknown_payment"
)

// ProcessWebhook verifies and applies a provider webhook. It returns true
// whenever the event is acknowledged, including event types it does not
// handle, events without a payment intent, payments it does not know and
// replays of already applied events. Any other error means the provider
// should deliver the event again.
func (s *PaymentService) ProcessWebhook(ctx context.Context, payload []byte, signatureHeader string) (bool, error) {
	event, err := s.provider.VerifyWebhookSignature(payload, signatureHeader)
	if err != nil {
		return false, err
	}

	logger := s.logger.With("event_id", event.ID, "event_type", event.Type)

	rule, ok := webhookRules[event.Type]
	if !ok || event.PaymentIntentID == nil || *event.PaymentIntentID == "" {
		logger.Debug("webhook event acknowledged without changes")
		s.recordWebhook(ctx, event.Type, outcomeIgnored)
		return true, nil
	}

	intentID := *event.PaymentIntentID

	var outcome string

	err = s.txm.WithinSerializableTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		payment, err := repos.Payments.GetByIntentId(ctx, intentID)
		if err != nil {
			if errors.Is(err, domain.ErrPaymentNotFound) {
				outcome = outcomeUnknownPayment
				return nil
			}

			return err
		}

		outcome, err = s.applyWebhookRule(ctx, repos, logger, payment, rule)
		return err
	})

	if err != nil {
		logger.Error("failed to apply webhook event", "payment_intent_id", intentID, "error", err)
		return false, err
	}

	logger.Info("webhook event processed", "payment_intent_id", intentID, "outcome", outcome)
	s.recordWebhook(ctx, event.Type, outcome)

	return true, nil
}

func (s *PaymentService) applyWebhookRule(
	ctx context.Context,
	repos domain.Repositories,
	logger *slog.Logger,
	payment *domain.Payment,
	rule webhookRule) (string, error) {

	if payment.Status == rule.paymentStatus {
		return outcomeDuplicate, nil
	}

	err := repos.Payments.UpdateStatus(ctx, payment.ID, rule.paymentStatus)
	if err != nil {
		return "", fmt.Errorf("failed to update payment %d: %w", payment.ID, err)
	}

	if payment.TicketID == nil {
		return outcomeApplied, nil
	}

	ticket, err := repos.Tickets.GetById(ctx, *payment.TicketID)
	if err != nil {
		return "", err
	}

	if !ticket.Status.CanApply(rule.ticketTrigger) {
		logger.Warn("linked ticket left unchanged",
			"ticket_id", ticket.ID,
			"ticket_status", ticket.Status,
			"payment_status", rule.paymentStatus,
		)
		return outcomeApplied, nil
	}

	next, err := ticket.Status.Next(rule.ticketTrigger)
	if err != nil {
		return "", err
	}

	err = repos.Tickets.UpdateStatus(ctx, ticket.ID, ticket.Status, next)
	if err != nil {
		return "", fmt.Errorf("failed to update ticket %d: %w", ticket.ID, err)
	}

	return outcomeApplied, nil
}

func (s *PaymentService) recordWebhook(ctx context.Context, eventType, outcome string) {
	s.metrics.webhookEvents.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", eventType),
		attribute.String("outcome", outcome),
	))
}
