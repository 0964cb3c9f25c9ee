package bookings

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrOrderNotFound   = errors.New("order not found")

	// ErrInvalidState is returned when an operation targets a booking whose
	// current status does not permit the transition.
	ErrInvalidState = errors.New("booking is not in a valid state for this operation")

	// ErrAlreadyConfirmed signals an idempotent replay: the booking was
	// already confirmed under the same payment reference.
	ErrAlreadyConfirmed = errors.New("booking already confirmed")

	ErrNotOwner = errors.New("booking belongs to a different user")

	// ErrSeatsUnavailable is the sentinel wrapped by SeatsUnavailableError.
	ErrSeatsUnavailable = errors.New("one or more requested seats are unavailable")

	// ErrGatewayTimeout is returned by CheckoutGateway implementations when
	// the payment gateway did not answer in time. The booking stays PENDING
	// and the caller may retry the payment URL within the hold window.
	ErrGatewayTimeout = errors.New("payment gateway timed out")
)

// SeatsUnavailableError carries the full set of seats that blocked an
// all-or-nothing reservation so the client can pick replacements in one go.
type SeatsUnavailableError struct {
	Blocked []uuid.UUID
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("%d requested seat(s) are unavailable", len(e.Blocked))
}

func (e *SeatsUnavailableError) Unwrap() error {
	return ErrSeatsUnavailable
}
