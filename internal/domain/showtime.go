package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Showtime struct {
	ID        int
	HallID    int
	StartTime time.Time
	EndTime   time.Time
	BasePrice decimal.Decimal
	IsActive  bool
}

type ShowtimeRepository interface {
	GetById(ctx context.Context, id int) (*Showtime, error)
}
