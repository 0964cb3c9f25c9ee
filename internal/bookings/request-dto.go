package bookings

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type CreateBookingRequest struct {
	ShowtimeID    string   `json:"showtime_id" binding:"required,uuid" validate:"required,uuid"`
	SeatIDs       []string `json:"seat_ids" binding:"required,min=1,max=10" validate:"required,min=1,max=10,unique,dive,uuid"`
	CustomerName  string   `json:"customer_name" binding:"required,min=2,max=100" validate:"required"`
	CustomerEmail string   `json:"customer_email" binding:"required,email" validate:"required,email"`
	CustomerPhone string   `json:"customer_phone" binding:"omitempty,min=7,max=20"`
	DiscountCode  string   `json:"discount_code" binding:"omitempty,max=40"`
}

// ToInput validates the raw request and converts it into service input
func (r *CreateBookingRequest) ToInput(userID *uuid.UUID) (CreateInput, error) {
	if err := validate.Struct(r); err != nil {
		return CreateInput{}, err
	}

	showtimeID, err := uuid.Parse(r.ShowtimeID)
	if err != nil {
		return CreateInput{}, fmt.Errorf("invalid showtime id: %w", err)
	}

	seatIDs := make([]uuid.UUID, 0, len(r.SeatIDs))
	for _, raw := range r.SeatIDs {
		seatID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return CreateInput{}, fmt.Errorf("invalid seat id %q: %w", raw, parseErr)
		}
		seatIDs = append(seatIDs, seatID)
	}

	return CreateInput{
		ShowtimeID:    showtimeID,
		SeatIDs:       seatIDs,
		UserID:        userID,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		CustomerPhone: r.CustomerPhone,
		DiscountCode:  r.DiscountCode,
	}, nil
}
