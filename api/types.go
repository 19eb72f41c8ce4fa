// Package api holds the JSON request and response bodies of the HTTP API.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type SeatAvailability struct {
	SeatId      int    `json:"seatId"`
	Label       string `json:"label"`
	IsAvailable bool   `json:"isAvailable"`
}

type SeatAvailabilityResponse struct {
	ShowtimeId int                `json:"showtimeId"`
	Seats      []SeatAvailability `json:"seats"`
}

// InitiatePaymentRequest pays either for a free seat or, with TicketId, for
// the caller's pending reservation.
type InitiatePaymentRequest struct {
	TicketId   int `json:"ticketId,omitempty" validate:"gte=0"`
	ShowtimeId int `json:"showtimeId,omitempty" validate:"required_without=TicketId,gte=0"`
	SeatId     int `json:"seatId,omitempty" validate:"required_without=TicketId,gte=0"`
}

type PaymentIntentResponse struct {
	PaymentIntentId string          `json:"paymentIntentId"`
	ClientSecret    string          `json:"clientSecret"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

type CreateBookingRequest struct {
	ShowtimeId int    `json:"showtimeId" validate:"required,gt=0"`
	SeatId     int    `json:"seatId" validate:"required,gt=0"`
	HolderName string `json:"holderName" validate:"holder_name"`
}

type ConfirmBookingRequest struct {
	PaymentIntentId string `json:"paymentIntentId" validate:"required,max=255"`
	ShowtimeId      int    `json:"showtimeId" validate:"required,gt=0"`
	SeatId          int    `json:"seatId" validate:"required,gt=0"`
	HolderName      string `json:"holderName" validate:"holder_name"`
}

type TicketStatus string

const (
	TicketStatusPending   TicketStatus = "pending"
	TicketStatusConfirmed TicketStatus = "confirmed"
	TicketStatusCancelled TicketStatus = "cancelled"
	TicketStatusExpired   TicketStatus = "expired"
)

type Ticket struct {
	Id           int             `json:"id"`
	TicketNumber string          `json:"ticketNumber"`
	ShowtimeId   int             `json:"showtimeId"`
	SeatId       int             `json:"seatId"`
	HolderName   string          `json:"holderName"`
	Price        decimal.Decimal `json:"price"`
	Status       TicketStatus    `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type TicketResponse struct {
	Ticket Ticket `json:"ticket"`
}

type TicketListResponse struct {
	Tickets []Ticket `json:"tickets"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
