package mocks

import (
	"context"
	"time"

	"github.com/metinatakli/ticket-booking-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockTicketRepo struct {
	mock.Mock
	domain.TicketRepository
}

func (m *MockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepo) GetById(ctx context.Context, id int) (*domain.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepo) GetByIdAndUserId(ctx context.Context, id, userID int) (*domain.Ticket, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepo) GetAllByUserId(ctx context.Context, userID int) ([]domain.Ticket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketRepo) ExistsActive(ctx context.Context, showtimeID, seatID int) (bool, error) {
	args := m.Called(ctx, showtimeID, seatID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketRepo) GetActiveSeatIds(ctx context.Context, showtimeID int) ([]int, error) {
	args := m.Called(ctx, showtimeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockTicketRepo) UpdateStatus(ctx context.Context, id int, from, to domain.TicketStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockTicketRepo) ExpirePending(ctx context.Context, cutoff time.Time, to domain.TicketStatus) ([]int, error) {
	args := m.Called(ctx, cutoff, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}
