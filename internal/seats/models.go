package seats

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Reservation statuses
const (
	StatusAvailable = "AVAILABLE"
	StatusHeld      = "HELD"
	StatusBooked    = "BOOKED"
)

// ErrSeatUnavailable is returned when a seat is already held or booked by
// another booking
var ErrSeatUnavailable = errors.New("seat is already held or booked")

// ErrNotHolder is returned when a caller tries to finalize a reservation it
// does not own
var ErrNotHolder = errors.New("reservation is not held by this booking")

// SeatReservation is the ownership record for one (showtime, seat) pair.
// The (showtime_id, seat_id) pair is unique; every competing claim is
// decided by a conditional write against this row, never by a
// read-then-write sequence.
type SeatReservation struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShowtimeID uuid.UUID  `gorm:"type:uuid;not null;index:idx_seat_reservations_key,unique,priority:1" json:"showtime_id"`
	SeatID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_seat_reservations_key,unique,priority:2" json:"seat_id"`
	Status     string     `gorm:"type:varchar(20);check:status IN ('AVAILABLE', 'HELD', 'BOOKED');default:'AVAILABLE'" json:"status"`
	BookingID  *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName sets the table name for SeatReservation
func (SeatReservation) TableName() string {
	return "seat_reservations"
}

// IsOwnedBy reports whether the reservation is held or booked by the given booking
func (r *SeatReservation) IsOwnedBy(bookingID uuid.UUID) bool {
	return r.BookingID != nil && *r.BookingID == bookingID &&
		(r.Status == StatusHeld || r.Status == StatusBooked)
}
