package service

import (
	"io"
	"log/slog"
	"time"

	"github.com/metinatakli/ticket-booking-engine/internal/domain"
	"github.com/metinatakli/ticket-booking-engine/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

type testDeps struct {
	showtimes *mocks.MockShowtimeRepo
	seats     *mocks.MockSeatRepo
	tickets   *mocks.MockTicketRepo
	payments  *mocks.MockPaymentRepo
	provider  *mocks.MockPaymentProvider
	txm       *mocks.MockTxManager
	clock     *mocks.MockClock
	repos     domain.Repositories
	logger    *slog.Logger
}

func newTestDeps() *testDeps {
	d := &testDeps{
		showtimes: new(mocks.MockShowtimeRepo),
		seats:     new(mocks.MockSeatRepo),
		tickets:   new(mocks.MockTicketRepo),
		payments:  new(mocks.MockPaymentRepo),
		provider:  new(mocks.MockPaymentProvider),
		clock:     &mocks.MockClock{Time: testNow},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	d.repos = domain.Repositories{
		Showtimes: d.showtimes,
		Seats:     d.seats,
		Tickets:   d.tickets,
		Payments:  d.payments,
	}
	d.txm = &mocks.MockTxManager{Repos: d.repos}

	return d
}

func (d *testDeps) assertExpectations(t mock.TestingT) {
	d.showtimes.AssertExpectations(t)
	d.seats.AssertExpectations(t)
	d.tickets.AssertExpectations(t)
	d.payments.AssertExpectations(t)
	d.provider.AssertExpectations(t)
}

func testShowtime() *domain.Showtime {
	return &domain.Showtime{
		ID:        1,
		HallID:    3,
		StartTime: testNow.Add(24 * time.Hour),
		EndTime:   testNow.Add(26 * time.Hour),
		BasePrice: decimal.RequireFromString("12.00"),
		IsActive:  true,
	}
}

func testSeat() *domain.Seat {
	return &domain.Seat{
		ID:              5,
		HallID:          3,
		Row:             "A",
		Number:          1,
		PriceMultiplier: decimal.RequireFromString("1.25"),
	}
}

func ptr[T any](v T) *T {
	return &v
}
