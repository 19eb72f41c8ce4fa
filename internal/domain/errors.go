package domain

import "errors"

// Error kinds. Every error returned by the core unwraps to one of these.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidInput = errors.New("invalid input")
)

// Error carries a caller-facing message together with its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrShowtimeNotFound      = newError(ErrNotFound, "showtime not found")
	ErrSeatNotFound          = newError(ErrNotFound, "seat not found")
	ErrTicketNotFound        = newError(ErrNotFound, "ticket not found")
	ErrPaymentNotFound       = newError(ErrNotFound, "payment not found")
	ErrShowtimeNotActive     = newError(ErrInvalidState, "showtime is not active")
	ErrSeatNotInHall         = newError(ErrInvalidState, "seat not in hall")
	ErrOnlyPendingCancelable = newError(ErrInvalidState, "only pending tickets can be cancelled")
	ErrPaymentNotSucceeded   = newError(ErrInvalidState, "payment has not succeeded")
	ErrOnlyPendingPayable    = newError(ErrInvalidState, "only pending tickets can be paid for")
	ErrSeatAlreadyReserved   = newError(ErrConflict, "seat already reserved")
	ErrPriceMismatch         = newError(ErrConflict, "price mismatch")
	ErrPaymentAlreadyLinked  = newError(ErrConflict, "payment is already linked to a ticket")
	ErrConcurrentUpdate      = newError(ErrConflict, "concurrent update, please retry")
	ErrInvalidSignature      = newError(ErrUnauthorized, "invalid webhook signature")
	ErrProviderUnavailable   = newError(ErrUnavailable, "payment provider is unavailable")
	ErrInvalidHolderName     = newError(ErrInvalidInput, "holder name must be between 1 and 100 characters")
	ErrTicketMismatch        = newError(ErrInvalidInput, "ticket does not match the showtime and seat")
)

// KindOf returns the error kind err unwraps to, or nil for unclassified errors.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrNotFound,
		ErrInvalidState,
		ErrConflict,
		ErrUnauthorized,
		ErrUnavailable,
		ErrInvalidInput,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}

	return nil
}
