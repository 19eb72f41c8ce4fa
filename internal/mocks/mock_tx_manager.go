package mocks

import (
	"context"
	"time"

	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

// MockTxManager runs the callback directly against Repos. When Err is set
// the callback is skipped and Err is returned, as if the transaction could
// not be started.
type MockTxManager struct {
	Repos domain.Repositories
	Err   error
	Calls int
}

func (m *MockTxManager) WithinSerializableTx(
	ctx context.Context,
	fn func(ctx context.Context, repos domain.Repositories) error) error {

	m.Calls++

	if m.Err != nil {
		return m.Err
	}

	return fn(ctx, m.Repos)
}

type MockClock struct {
	Time time.Time
}

func (c *MockClock) Now() time.Time {
	return c.Time
}
