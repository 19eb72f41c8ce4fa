package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/metinatakli/ticket-booking-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

var centsPerUnit = decimal.NewFromInt(100)

// StripePaymentProvider talks to Stripe through the package level client, so
// stripe.Key must be set before it is used.
type StripePaymentProvider struct {
	webhookSecret string
}

func NewStripePaymentProvider(webhookSecret string) *StripePaymentProvider {
	return &StripePaymentProvider{
		webhookSecret: webhookSecret,
	}
}

func (s *StripePaymentProvider) CreatePaymentIntent(
	ctx context.Context,
	req domain.PaymentIntentRequest) (*domain.PaymentIntent, error) {

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(toMinorUnits(req.Amount)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &domain.PaymentIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       string(intent.Status),
	}, nil
}

func (s *StripePaymentProvider) GetStatus(ctx context.Context, intentID string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return "", domain.ErrPaymentNotFound
		}

		return "", fmt.Errorf("failed to get payment intent %s: %w", intentID, err)
	}

	return string(intent.Status), nil
}

func (s *StripePaymentProvider) VerifyWebhookSignature(payload []byte, signatureHeader string) (*domain.WebhookEvent, error) {
	return parseWebhook(payload, signatureHeader, s.webhookSecret)
}

// parseWebhook checks the Stripe-Signature header against the payload and
// extracts the payment intent id for payment_intent.* events.
func parseWebhook(payload []byte, signatureHeader, secret string) (*domain.WebhookEvent, error) {
	// anyone can produce a valid signature for an empty secret
	if secret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", domain.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSignature, err)
	}

	result := &domain.WebhookEvent{
		ID:   event.ID,
		Type: string(event.Type),
	}

	if event.Data != nil && strings.HasPrefix(result.Type, "payment_intent.") {
		if id, ok := event.Data.Object["id"].(string); ok && id != "" {
			result.PaymentIntentID = &id
		}
	}

	return result, nil
}

// toMinorUnits converts a two-decimal amount to cents.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(centsPerUnit).Round(0).IntPart()
}
