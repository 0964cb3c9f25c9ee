package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds critical database constraints for concurrency control
func MigrateConstraints(db *gorm.DB) error {
	// One ownership row per (showtime, seat); conditional writes against this
	// row decide every competing seat claim.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_seat_per_showtime
		ON seat_reservations (showtime_id, seat_id);
	`).Error
	if err != nil {
		return err
	}

	// One ticket per (order, seat); makes ticket issuance idempotent
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_ticket_per_order_seat
		ON tickets (order_id, seat_id);
	`).Error
	if err != nil {
		return err
	}

	// One redemption per (instrument, user) for identified users
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_usage_per_user
		ON discount_usages (instrument_id, user_id)
		WHERE user_id IS NOT NULL;
	`).Error
	if err != nil {
		return err
	}

	// The quantity invariant holds even if a buggy writer bypasses the
	// conditional decrement
	err = db.Exec(`
		ALTER TABLE discount_instruments
		DROP CONSTRAINT IF EXISTS discount_quantity_non_negative;
	`).Error
	if err != nil {
		return err
	}
	err = db.Exec(`
		ALTER TABLE discount_instruments
		ADD CONSTRAINT discount_quantity_non_negative
		CHECK (remaining_quantity >= 0 AND used_quantity + remaining_quantity = total_quantity);
	`).Error
	if err != nil {
		return err
	}

	// Index for the sweeper's stale-pending scan
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_status_created
		ON bookings (status, created_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
