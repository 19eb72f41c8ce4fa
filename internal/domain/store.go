package domain

import "context"

// Repositories is a set of repositories bound to the same connection or
// transaction handle.
type Repositories struct {
	Showtimes ShowtimeRepository
	Seats     SeatRepository
	Tickets   TicketRepository
	Payments  PaymentRepository
}

// TxManager runs fn inside a serializable transaction. The repositories
// handed to fn are only valid until fn returns; the transaction commits when
// fn returns nil and rolls back otherwise.
type TxManager interface {
	WithinSerializableTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
