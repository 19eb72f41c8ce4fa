package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/metinatakli/ticket-booking-engine/internal/domain"
)

type PostgresShowtimeRepository struct {
	db DBTX
}

func NewPostgresShowtimeRepository(db DBTX) *PostgresShowtimeRepository {
	return &PostgresShowtimeRepository{
		db: db,
	}
}

func (p *PostgresShowtimeRepository) GetById(ctx context.Context, id int) (*domain.Showtime, error) {
	query := `
		SELECT id, hall_id, start_time, end_time, base_price, is_active
		FROM showtimes
		WHERE id = $1
	`

	var showtime domain.Showtime

	err := p.db.QueryRow(ctx, query, id).Scan(
		&showtime.ID,
		&showtime.HallID,
		&showtime.StartTime,
		&showtime.EndTime,
		&showtime.BasePrice,
		&showtime.IsActive,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShowtimeNotFound
		}

		return nil, err
	}

	return &showtime, nil
}
