package domain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

type Seat struct {
	ID              int
	HallID          int
	Row             string
	Number          int
	PriceMultiplier decimal.Decimal
}

// Label renders the seat as "{row}-{number}".
func (s Seat) Label() string {
	return fmt.Sprintf("%s-%d", s.Row, s.Number)
}

type SeatAvailability struct {
	SeatID      int
	Label       string
	IsAvailable bool
}

type SeatRepository interface {
	GetById(ctx context.Context, id int) (*Seat, error)
	// GetByHallId returns the seats of a hall ordered by row, then number.
	GetByHallId(ctx context.Context, hallID int) ([]Seat, error)
}
