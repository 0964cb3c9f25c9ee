package database

import (
	"cinely/internal/bookings"
	"cinely/internal/catalog"
	"cinely/internal/discounts"
	"cinely/internal/seats"
	"cinely/internal/tickets"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&catalog.Movie{},
		&catalog.Room{},
		&catalog.Seat{},
		&catalog.Showtime{},
		&seats.SeatReservation{},
		&discounts.DiscountInstrument{},
		&discounts.DiscountUsage{},
		&bookings.Order{},
		&bookings.Booking{},
		&bookings.BookingSeat{},
		&tickets.Ticket{},
	)
}
