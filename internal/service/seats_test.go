package service

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestGetAvailableSeats(t *testing.T) {
	deps := newTestDeps()
	service := NewSeatService(deps.repos)

	one := decimal.NewFromInt(1)

	deps.showtimes.On("GetById", mock.Anything, 1).Return(testShowtime(), nil).Once()
	deps.seats.On("GetByHallId", mock.Anything, 3).Return([]domain.Seat{
		{ID: 5, HallID: 3, Row: "A", Number: 1, PriceMultiplier: one},
		{ID: 6, HallID: 3, Row: "A", Number: 2, PriceMultiplier: one},
		{ID: 7, HallID: 3, Row: "B", Number: 1, PriceMultiplier: one},
	}, nil).Once()
	deps.tickets.On("GetActiveSeatIds", mock.Anything, 1).Return([]int{6}, nil).Once()

	got, err := service.GetAvailableSeats(context.Background(), 1)
	assert.NoError(t, err)

	want := []domain.SeatAvailability{
		{SeatID: 5, Label: "A-1", IsAvailable: true},
		{SeatID: 6, Label: "A-2", IsAvailable: false},
		{SeatID: 7, Label: "B-1", IsAvailable: true},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("seat availability mismatch (-want +got):\n%s", diff)
	}

	deps.assertExpectations(t)
}

func TestGetAvailableSeatsInactiveShowtime(t *testing.T) {
	deps := newTestDeps()
	service := NewSeatService(deps.repos)

	showtime := testShowtime()
	showtime.IsActive = false

	deps.showtimes.On("GetById", mock.Anything, 1).Return(showtime, nil).Once()

	_, err := service.GetAvailableSeats(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrShowtimeNotActive)

	deps.assertExpectations(t)
}
