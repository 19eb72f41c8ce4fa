package domain

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusConfirmed TicketStatus = "confirmed"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusExpired   TicketStatus = "expired"
)

// IsActive reports whether a ticket in this status holds its seat.
func (s TicketStatus) IsActive() bool {
	return s == TicketStatusPending || s == TicketStatusConfirmed
}

// TicketTrigger is an event that may move a ticket to another status.
type TicketTrigger string

const (
	TriggerPaymentSucceeded   TicketTrigger = "payment_succeeded"
	TriggerPaymentReversed    TicketTrigger = "payment_reversed"
	TriggerUserCancelled      TicketTrigger = "user_cancelled"
	TriggerReservationExpired TicketTrigger = "reservation_expired"
)

type transitionKey struct {
	from    TicketStatus
	trigger TicketTrigger
}

var ticketTransitions = map[transitionKey]TicketStatus{
	{TicketStatusPending, TriggerPaymentSucceeded}:   TicketStatusConfirmed,
	{TicketStatusPending, TriggerPaymentReversed}:    TicketStatusCancelled,
	{TicketStatusPending, TriggerUserCancelled}:      TicketStatusCancelled,
	{TicketStatusPending, TriggerReservationExpired}: TicketStatusExpired,

	// A ticket confirmed against a "processing" payment is released if that
	// payment later fails or is canceled.
	{TicketStatusConfirmed, TriggerPaymentReversed}: TicketStatusCancelled,
}

// Next returns the status reached by applying trigger to s.
func (s TicketStatus) Next(trigger TicketTrigger) (TicketStatus, error) {
	next, ok := ticketTransitions[transitionKey{from: s, trigger: trigger}]
	if !ok {
		if trigger == TriggerUserCancelled {
			return s, ErrOnlyPendingCancelable
		}

		return s, newError(ErrInvalidState, fmt.Sprintf("ticket cannot go from %s on %s", s, trigger))
	}

	return next, nil
}

// CanApply reports whether trigger is a legal transition out of s.
func (s TicketStatus) CanApply(trigger TicketTrigger) bool {
	_, ok := ticketTransitions[transitionKey{from: s, trigger: trigger}]
	return ok
}

type Ticket struct {
	ID           int
	UserID       int
	ShowtimeID   int
	SeatID       int
	HolderName   string
	TicketNumber string
	Price        decimal.Decimal
	Status       TicketStatus
	CreatedAt    time.Time
}

const (
	maxHolderNameLength = 100
	ticketNumberSuffix  = 10
	ticketNumberAlpha   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NormalizeHolderName trims name and checks its length.
func NormalizeHolderName(name string) (string, error) {
	name = strings.TrimSpace(name)

	length := utf8.RuneCountInString(name)
	if length == 0 || length > maxHolderNameLength {
		return "", ErrInvalidHolderName
	}

	return name, nil
}

// GenerateTicketNumber returns a number of the form YYYYMMDD-XXXXXXXXXX.
func GenerateTicketNumber(now time.Time) (string, error) {
	var sb strings.Builder

	sb.WriteString(now.UTC().Format("20060102"))
	sb.WriteByte('-')

	max := big.NewInt(int64(len(ticketNumberAlpha)))
	for range ticketNumberSuffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}

		sb.WriteByte(ticketNumberAlpha[n.Int64()])
	}

	return sb.String(), nil
}

type TicketRepository interface {
	Create(ctx context.Context, ticket *Ticket) error
	GetById(ctx context.Context, id int) (*Ticket, error)
	GetByIdAndUserId(ctx context.Context, id, userID int) (*Ticket, error)
	GetAllByUserId(ctx context.Context, userID int) ([]Ticket, error)
	// ExistsActive reports whether a pending or confirmed ticket holds the seat.
	ExistsActive(ctx context.Context, showtimeID, seatID int) (bool, error)
	GetActiveSeatIds(ctx context.Context, showtimeID int) ([]int, error)
	// UpdateStatus moves a ticket from one status to another. It returns
	// ErrConcurrentUpdate when the ticket is no longer in status from.
	UpdateStatus(ctx context.Context, id int, from, to TicketStatus) error
	// ExpirePending moves every pending ticket created at or before cutoff to
	// status to and returns the affected ticket ids.
	ExpirePending(ctx context.Context, cutoff time.Time, to TicketStatus) ([]int, error)
}
