package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

// Partial unique index over (showtime_id, seat_id) for pending and
// confirmed tickets.
const activeSeatConstraint = "tickets_active_seat_idx"

type PostgresTicketRepository struct {
	db DBTX
}

func NewPostgresTicketRepository(db DBTX) *PostgresTicketRepository {
	return &PostgresTicketRepository{
		db: db,
	}
}

func (p *PostgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (
			user_id,
			showtime_id,
			seat_id,
			holder_name,
			ticket_number,
			price,
			status,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := p.db.QueryRow(
		ctx,
		query,
		ticket.UserID,
		ticket.ShowtimeID,
		ticket.SeatID,
		ticket.HolderName,
		ticket.TicketNumber,
		ticket.Price,
		ticket.Status,
		ticket.CreatedAt,
	).Scan(&ticket.ID)

	if err != nil {
		if isUniqueViolation(err, activeSeatConstraint) {
			return domain.ErrSeatAlreadyReserved
		}

		return err
	}

	return nil
}

const ticketColumns = `id, user_id, showtime_id, seat_id, holder_name, ticket_number, price, status, created_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket

	err := row.Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.ShowtimeID,
		&ticket.SeatID,
		&ticket.HolderName,
		&ticket.TicketNumber,
		&ticket.Price,
		&ticket.Status,
		&ticket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}

		return nil, err
	}

	return &ticket, nil
}

func (p *PostgresTicketRepository) GetById(ctx context.Context, id int) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	return scanTicket(p.db.QueryRow(ctx, query, id))
}

func (p *PostgresTicketRepository) GetByIdAndUserId(ctx context.Context, id, userID int) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1 AND user_id = $2`

	return scanTicket(p.db.QueryRow(ctx, query, id, userID))
}

func (p *PostgresTicketRepository) GetAllByUserId(ctx context.Context, userID int) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)

	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, *ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (p *PostgresTicketRepository) ExistsActive(ctx context.Context, showtimeID, seatID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM tickets
			WHERE showtime_id = $1 AND seat_id = $2 AND status IN ('pending', 'confirmed')
		)
	`

	var exists bool

	err := p.db.QueryRow(ctx, query, showtimeID, seatID).Scan(&exists)

	return exists, err
}

func (p *PostgresTicketRepository) GetActiveSeatIds(ctx context.Context, showtimeID int) ([]int, error) {
	query := `
		SELECT seat_id
		FROM tickets
		WHERE showtime_id = $1 AND status IN ('pending', 'confirmed')
	`

	rows, err := p.db.Query(ctx, query, showtimeID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (p *PostgresTicketRepository) UpdateStatus(
	ctx context.Context,
	id int,
	from, to domain.TicketStatus) error {

	query := `
		UPDATE tickets
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	tag, err := p.db.Exec(ctx, query, to, id, from)
	if err != nil {
		if isUniqueViolation(err, activeSeatConstraint) {
			return domain.ErrSeatAlreadyReserved
		}

		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentUpdate
	}

	return nil
}

func (p *PostgresTicketRepository) ExpirePending(
	ctx context.Context,
	cutoff time.Time,
	to domain.TicketStatus) ([]int, error) {

	query := `
		UPDATE tickets
		SET status = $1
		WHERE status = 'pending' AND created_at <= $2
		RETURNING id
	`

	rows, err := p.db.Query(ctx, query, to, cutoff)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, pgx.RowTo[int])
}
