package bookings

import (
	"time"

	"github.com/google/uuid"
)

// Order groups one or more bookings under a single payment. TxnRef is the
// reference the payment gateway echoes back in its outcome callbacks.
type Order struct {
	ID         uuid.UUID   `json:"id" gorm:"type:uuid;primary_key"`
	TxnRef     string      `json:"txn_ref" gorm:"uniqueIndex;not null"`
	Status     OrderStatus `json:"status" gorm:"not null;default:'PENDING';index"`
	TotalPrice int64       `json:"total_price" gorm:"not null"`
	Currency   string      `json:"currency" gorm:"not null;default:'INR'"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

type Booking struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Ref        string     `json:"ref" gorm:"uniqueIndex;not null"`
	OrderID    uuid.UUID  `json:"order_id" gorm:"type:uuid;not null;index"`
	UserID     *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	ShowtimeID uuid.UUID  `json:"showtime_id" gorm:"type:uuid;not null;index"`

	CustomerName  string `json:"customer_name" gorm:"not null"`
	CustomerEmail string `json:"customer_email" gorm:"not null"`
	CustomerPhone string `json:"customer_phone"`

	TotalSeats     int    `json:"total_seats" gorm:"not null"`
	OriginalPrice  int64  `json:"original_price" gorm:"not null"`
	DiscountCode   string `json:"discount_code,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
	TotalPrice     int64  `json:"total_price" gorm:"not null"`

	Status     Status `json:"status" gorm:"not null;default:'PENDING';index"`
	PaymentRef string `json:"payment_ref,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	BookingSeats []BookingSeat `json:"booking_seats,omitempty" gorm:"foreignKey:BookingID"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingSeat records a seat that belongs to a booking together with the
// catalog price it was sold at. Prices are snapshotted at creation so later
// catalog edits do not change what was charged.
type BookingSeat struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	BookingID uuid.UUID `json:"booking_id" gorm:"type:uuid;not null;index"`
	SeatID    uuid.UUID `json:"seat_id" gorm:"type:uuid;not null"`
	SeatPrice int64     `json:"seat_price" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (BookingSeat) TableName() string {
	return "booking_seats"
}
