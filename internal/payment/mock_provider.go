package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

// MockPaymentProvider keeps payment intents in memory. Webhooks are verified
// with the same signature scheme as Stripe, so tests can sign payloads with
// webhook.GenerateTestSignedPayload.
type MockPaymentProvider struct {
	webhookSecret string

	mu       sync.Mutex
	seq      int
	intents  map[string]string
	requests map[string]domain.PaymentIntentRequest
}

func NewMockPaymentProvider(webhookSecret string) *MockPaymentProvider {
	return &MockPaymentProvider{
		webhookSecret: webhookSecret,
		intents:       make(map[string]string),
		requests:      make(map[string]domain.PaymentIntentRequest),
	}
}

func (m *MockPaymentProvider) CreatePaymentIntent(
	ctx context.Context,
	req domain.PaymentIntentRequest) (*domain.PaymentIntent, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	id := fmt.Sprintf("pi_mock_%d", m.seq)

	m.intents[id] = "requires_payment_method"
	m.requests[id] = req

	return &domain.PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       m.intents[id],
	}, nil
}

func (m *MockPaymentProvider) GetStatus(ctx context.Context, intentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status, ok := m.intents[intentID]
	if !ok {
		return "", domain.ErrPaymentNotFound
	}

	return status, nil
}

func (m *MockPaymentProvider) VerifyWebhookSignature(payload []byte, signatureHeader string) (*domain.WebhookEvent, error) {
	return parseWebhook(payload, signatureHeader, m.webhookSecret)
}

// SetStatus moves an intent to status, as the provider would after the
// customer completes or abandons the payment.
func (m *MockPaymentProvider) SetStatus(intentID, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.intents[intentID] = status
}

// Request returns the request an intent was created with.
func (m *MockPaymentProvider) Request(intentID string) (domain.PaymentIntentRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[intentID]
	return req, ok
}
