package bookings

import (
	"time"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID             uuid.UUID   `json:"id"`
	Ref            string      `json:"ref"`
	OrderID        uuid.UUID   `json:"order_id"`
	ShowtimeID     uuid.UUID   `json:"showtime_id"`
	Status         Status      `json:"status"`
	SeatIDs        []uuid.UUID `json:"seat_ids"`
	TotalSeats     int         `json:"total_seats"`
	OriginalPrice  int64       `json:"original_price"`
	DiscountCode   string      `json:"discount_code,omitempty"`
	DiscountAmount int64       `json:"discount_amount"`
	TotalPrice     int64       `json:"total_price"`
	CreatedAt      time.Time   `json:"created_at"`
	ExpiresAt      *time.Time  `json:"expires_at,omitempty"`
}

type CreateBookingResponse struct {
	Booking    BookingResponse `json:"booking"`
	TxnRef     string          `json:"txn_ref"`
	PaymentURL string          `json:"payment_url,omitempty"`
}

// NewBookingResponse maps the model to its API shape. expiresAt is only set
// for PENDING bookings since the hold window stops mattering after that.
func NewBookingResponse(booking *Booking, holdDuration time.Duration) BookingResponse {
	seatIDs := make([]uuid.UUID, 0, len(booking.BookingSeats))
	for _, bs := range booking.BookingSeats {
		seatIDs = append(seatIDs, bs.SeatID)
	}

	resp := BookingResponse{
		ID:             booking.ID,
		Ref:            booking.Ref,
		OrderID:        booking.OrderID,
		ShowtimeID:     booking.ShowtimeID,
		Status:         booking.Status,
		SeatIDs:        seatIDs,
		TotalSeats:     booking.TotalSeats,
		OriginalPrice:  booking.OriginalPrice,
		DiscountCode:   booking.DiscountCode,
		DiscountAmount: booking.DiscountAmount,
		TotalPrice:     booking.TotalPrice,
		CreatedAt:      booking.CreatedAt,
	}
	if booking.Status == StatusPending {
		expiresAt := booking.CreatedAt.Add(holdDuration)
		resp.ExpiresAt = &expiresAt
	}
	return resp
}
