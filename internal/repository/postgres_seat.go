package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

type PostgresSeatRepository struct {
	db DBTX
}

func NewPostgresSeatRepository(db DBTX) *PostgresSeatRepository {
	return &PostgresSeatRepository{
		db: db,
	}
}

func (p *PostgresSeatRepository) GetById(ctx context.Context, id int) (*domain.Seat, error) {
	query := `
		SELECT id, hall_id, seat_row, seat_number, price_multiplier
		FROM seats
		WHERE id = $1
	`

	var seat domain.Seat

	err := p.db.QueryRow(ctx, query, id).Scan(
		&seat.ID,
		&seat.HallID,
		&seat.Row,
		&seat.Number,
		&seat.PriceMultiplier,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSeatNotFound
		}

		return nil, err
	}

	return &seat, nil
}

func (p *PostgresSeatRepository) GetByHallId(ctx context.Context, hallID int) ([]domain.Seat, error) {
	query := `
		SELECT id, hall_id, seat_row, seat_number, price_multiplier
		FROM seats
		WHERE hall_id = $1
		ORDER BY seat_row, seat_number
	`

	rows, err := p.db.Query(ctx, query, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.Seat, 0)

	for rows.Next() {
		var seat domain.Seat

		err = rows.Scan(
			&seat.ID,
			&seat.HallID,
			&seat.Row,
			&seat.Number,
			&seat.PriceMultiplier,
		)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
