package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider-side payment intent statuses the core cares about.
const (
	IntentStatusSucceeded  = "succeeded"
	IntentStatusProcessing = "processing"
)

// Webhook event types handled by the reconciler.
const (
	EventPaymentIntentSucceeded = "payment_intent.succeeded"
	EventPaymentIntentFailed    = "payment_intent.payment_failed"
	EventPaymentIntentCanceled  = "payment_intent.canceled"
)

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

type PaymentIntentRequest struct {
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

type WebhookEvent struct {
	ID              string
	Type            string
	PaymentIntentID *string
}

type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	GetStatus(ctx context.Context, intentID string) (string, error)
	// VerifyWebhookSignature fails with ErrUnauthorized when the signature
	// does not match the payload.
	VerifyWebhookSignature(payload []byte, signatureHeader string) (*WebhookEvent, error)
}
