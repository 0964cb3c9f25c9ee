package seats

import (
	"context"
	"errors"

	"cinely/internal/shared/txn"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// Conditional writes; the row count of each statement is the decision
	Reserve(ctx context.Context, showtimeID, seatID, bookingID uuid.UUID) error
	Finalize(ctx context.Context, showtimeID, seatID, bookingID uuid.UUID) error
	Release(ctx context.Context, showtimeID, seatID uuid.UUID) error
	ReleaseForBooking(ctx context.Context, bookingID uuid.UUID) ([]uuid.UUID, error)
	ReleaseOrphans(ctx context.Context) ([]uuid.UUID, error)

	// Reads
	GetReservation(ctx context.Context, showtimeID, seatID uuid.UUID) (*SeatReservation, error)
	ListAvailableSeatIDs(ctx context.Context, showtimeID uuid.UUID) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Reserve attempts the atomic AVAILABLE -> HELD transition. The upsert
// succeeds only when no row exists yet for the (showtime, seat) pair or the
// existing row is AVAILABLE; anything else means another booking owns the
// seat. Re-reserving by the same booking is an idempotent success.
func (r *repository) Reserve(ctx context.Context, showtimeID, seatID, bookingID uuid.UUID) error {
	db := txn.FromContext(ctx, r.db)

	res := db.Exec(`
		INSERT INTO seat_reservations (id, showtime_id, seat_id, status, booking_id, created_at, updated_at)
		VALUES (?, ?, ?, 'HELD', ?, NOW(), NOW())
		ON CONFLICT (showtime_id, seat_id) DO UPDATE
		SET status = 'HELD', booking_id = EXCLUDED.booking_id, updated_at = NOW()
		WHERE seat_reservations.status = 'AVAILABLE'`,
		uuid.New(), showtimeID, seatID, bookingID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// Zero rows: the seat is taken. The follow-up read only classifies the
	// failure; it never grants ownership.
	existing, err := r.GetReservation(ctx, showtimeID, seatID)
	if err != nil {
		return err
	}
	if existing != nil && existing.IsOwnedBy(bookingID) {
		return nil
	}
	return ErrSeatUnavailable
}

// Finalize transitions HELD -> BOOKED on confirmation. Only the holder may
// finalize; re-finalizing an already BOOKED row by the holder is a no-op
// success.
func (r *repository) Finalize(ctx context.Context, showtimeID, seatID, bookingID uuid.UUID) error {
	db := txn.FromContext(ctx, r.db)

	res := db.Exec(`
		UPDATE seat_reservations
		SET status = 'BOOKED', updated_at = NOW()
		WHERE showtime_id = ? AND seat_id = ? AND booking_id = ? AND status IN ('HELD', 'BOOKED')`,
		showtimeID, seatID, bookingID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotHolder
	}
	return nil
}

// Release transitions HELD/BOOKED -> AVAILABLE. Safe to call on rows that
// are already AVAILABLE or do not exist.
func (r *repository) Release(ctx context.Context, showtimeID, seatID uuid.UUID) error {
	db := txn.FromContext(ctx, r.db)

	return db.Exec(`
		UPDATE seat_reservations
		SET status = 'AVAILABLE', booking_id = NULL, updated_at = NOW()
		WHERE showtime_id = ? AND seat_id = ? AND status IN ('HELD', 'BOOKED')`,
		showtimeID, seatID).Error
}

// ReleaseForBooking releases every seat held or booked by the given booking
// and returns the showtime ids whose availability changed.
func (r *repository) ReleaseForBooking(ctx context.Context, bookingID uuid.UUID) ([]uuid.UUID, error) {
	db := txn.FromContext(ctx, r.db)

	var showtimeIDs []uuid.UUID
	err := db.Raw(`
		UPDATE seat_reservations
		SET status = 'AVAILABLE', booking_id = NULL, updated_at = NOW()
		WHERE booking_id = ? AND status IN ('HELD', 'BOOKED')
		RETURNING showtime_id`,
		bookingID).Scan(&showtimeIDs).Error
	if err != nil {
		return nil, err
	}
	return showtimeIDs, nil
}

// ReleaseOrphans is a consistency repair: it frees HELD/BOOKED rows whose
// owning booking no longer exists or has reached a terminal released state.
func (r *repository) ReleaseOrphans(ctx context.Context) ([]uuid.UUID, error) {
	db := txn.FromContext(ctx, r.db)

	var showtimeIDs []uuid.UUID
	err := db.Raw(`
		UPDATE seat_reservations sr
		SET status = 'AVAILABLE', booking_id = NULL, updated_at = NOW()
		WHERE sr.status IN ('HELD', 'BOOKED')
		AND (
			sr.booking_id IS NULL
			OR NOT EXISTS (
				SELECT 1 FROM bookings b
				WHERE b.id = sr.booking_id
				AND b.status IN ('PENDING', 'CONFIRMED', 'COMPLETED')
			)
		)
		RETURNING sr.showtime_id`).Scan(&showtimeIDs).Error
	if err != nil {
		return nil, err
	}
	return showtimeIDs, nil
}

func (r *repository) GetReservation(ctx context.Context, showtimeID, seatID uuid.UUID) (*SeatReservation, error) {
	db := txn.FromContext(ctx, r.db)

	var reservation SeatReservation
	err := db.Where("showtime_id = ? AND seat_id = ?", showtimeID, seatID).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

// ListAvailableSeatIDs returns the seats of the showtime's room that no
// live reservation owns. Display only; reservation decisions never read
// this snapshot.
func (r *repository) ListAvailableSeatIDs(ctx context.Context, showtimeID uuid.UUID) ([]uuid.UUID, error) {
	db := txn.FromContext(ctx, r.db)

	var seatIDs []uuid.UUID
	err := db.Raw(`
		SELECT s.id FROM seats s
		JOIN showtimes st ON st.room_id = s.room_id
		WHERE st.id = ?
		AND NOT EXISTS (
			SELECT 1 FROM seat_reservations sr
			WHERE sr.showtime_id = st.id AND sr.seat_id = s.id
			AND sr.status IN ('HELD', 'BOOKED')
		)
		ORDER BY s.label ASC`,
		showtimeID).Scan(&seatIDs).Error
	if err != nil {
		return nil, err
	}
	return seatIDs, nil
}
