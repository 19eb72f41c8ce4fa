package service

import (
	"context"
	"fmt"

	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

type SeatService struct {
	repos domain.Repositories
}

func NewSeatService(repos domain.Repositories) *SeatService {
	return &SeatService{
		repos: repos,
	}
}

// GetAvailableSeats returns every seat of the showtime's hall, ordered by row
// and number, flagged as available unless a pending or confirmed ticket
// holds it. The result is a snapshot taken without locks.
func (s *SeatService) GetAvailableSeats(ctx context.Context, showtimeID int) ([]domain.SeatAvailability, error) {
	showtime, err := s.repos.Showtimes.GetById(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	if !showtime.IsActive {
		return nil, domain.ErrShowtimeNotActive
	}

	seats, err := s.repos.Seats.GetByHallId(ctx, showtime.HallID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seats of hall %d: %w", showtime.HallID, err)
	}

	takenSeatIds, err := s.repos.Tickets.GetActiveSeatIds(ctx, showtimeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get taken seats: %w", err)
	}

	taken := make(map[int]bool, len(takenSeatIds))
	for _, id := range takenSeatIds {
		taken[id] = true
	}

	availability := make([]domain.SeatAvailability, len(seats))

	for i, seat := range seats {
		availability[i] = domain.SeatAvailability{
			SeatID:      seat.ID,
			Label:       seat.Label(),
			IsAvailable: !taken[seat.ID],
		}
	}

	return availability, nil
}
