package service

import (
	"context"
	"errors"

	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

// CancelTicket cancels a pending ticket owned by userID. A ticket owned by
// someone else is reported as not found.
func (s *BookingService) CancelTicket(ctx context.Context, userID, ticketID int) (*domain.Ticket, error) {
	ticket, err := s.repos.Tickets.GetByIdAndUserId(ctx, ticketID, userID)
	if err != nil {
		return nil, err
	}

	next, err := ticket.Status.Next(domain.TriggerUserCancelled)
	if err != nil {
		return nil, err
	}

	err = s.repos.Tickets.UpdateStatus(ctx, ticket.ID, ticket.Status, next)
	if err != nil {
		// Confirmed or expired between the read and the write.
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, domain.ErrOnlyPendingCancelable
		}

		return nil, err
	}

	ticket.Status = next

	s.logger.Info("ticket cancelled", "ticket_id", ticket.ID, "user_id", userID)

	return ticket, nil
}

func (s *BookingService) GetTicket(ctx context.Context, userID, ticketID int) (*domain.Ticket, error) {
	return s.repos.Tickets.GetByIdAndUserId(ctx, ticketID, userID)
}

func (s *BookingService) ListTickets(ctx context.Context, userID int) ([]domain.Ticket, error) {
	return s.repos.Tickets.GetAllByUserId(ctx, userID)
}
