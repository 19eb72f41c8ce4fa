package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSuccess  PaymentStatus = "success"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Reversed reports whether the payment failed or was refunded.
func (s PaymentStatus) Reversed() bool {
	return s == PaymentStatusFailed || s == PaymentStatusRefunded
}

type Payment struct {
	ID               int
	TicketID         *int
	ProviderIntentID string
	Amount           decimal.Decimal
	Currency         string
	Status           PaymentStatus
	CreatedAt        time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByIntentId(ctx context.Context, intentID string) (*Payment, error)
	UpdateStatus(ctx context.Context, id int, status PaymentStatus) error
	// LinkTicket attaches ticketID to the payment and sets its status.
	LinkTicket(ctx context.Context, id, ticketID int, status PaymentStatus) error
}
