package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockLocker struct {
	mock.Mock
	Released int
}

func (m *MockLocker) TryLock(
	ctx context.Context,
	key string,
	ttl time.Duration) (func(context.Context) error, bool, error) {

	args := m.Called(ctx, key, ttl)

	if !args.Bool(0) {
		return nil, false, args.Error(1)
	}

	unlock := func(context.Context) error {
		m.Released++
		return nil
	}

	return unlock, true, args.Error(1)
}
