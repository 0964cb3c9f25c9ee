package discounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Instrument statuses
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

// Discount rule types
const (
	TypePercent = "PERCENT"
	TypeFixed   = "FIXED"
)

// Rejection reasons carried by DiscountError
const (
	ReasonNotFound     = "not_found"
	ReasonInactive     = "inactive"
	ReasonExpired      = "expired"
	ReasonExhausted    = "exhausted"
	ReasonBelowMinimum = "below_minimum"
	ReasonAlreadyUsed  = "already_used"
)

// DiscountError reports why a code could not be validated or redeemed
type DiscountError struct {
	Code   string
	Reason string
}

func (e *DiscountError) Error() string {
	return fmt.Sprintf("discount %q invalid: %s", e.Code, e.Reason)
}

// DiscountInstrument is a coupon or time-bound event offering a computed
// discount with a finite usable quantity.
// Invariant: used_quantity + remaining_quantity == total_quantity and
// remaining_quantity >= 0, after every operation.
type DiscountInstrument struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code              string    `gorm:"type:varchar(50);unique;not null" json:"code"`
	Name              string    `gorm:"not null" json:"name"`
	DiscountType      string    `gorm:"type:varchar(20);check:discount_type IN ('PERCENT', 'FIXED');not null" json:"discount_type"`
	DiscountValue     int64     `gorm:"not null" json:"discount_value"`
	TotalQuantity     int       `gorm:"not null" json:"total_quantity"`
	RemainingQuantity int       `gorm:"not null" json:"remaining_quantity"`
	UsedQuantity      int       `gorm:"not null;default:0" json:"used_quantity"`
	MinOrderAmount    int64     `gorm:"not null;default:0" json:"min_order_amount"`
	ValidFrom         time.Time `gorm:"not null" json:"valid_from"`
	ValidUntil        time.Time `gorm:"not null" json:"valid_until"`
	Status            string    `gorm:"type:varchar(20);check:status IN ('ACTIVE', 'INACTIVE');default:'ACTIVE'" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DiscountUsage is the append-only record of one redemption
type DiscountUsage struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	InstrumentID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"instrument_id"`
	UserID         *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	BookingID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"booking_id"`
	OriginalAmount int64      `gorm:"not null" json:"original_amount"`
	DiscountAmount int64      `gorm:"not null" json:"discount_amount"`
	FinalAmount    int64      `gorm:"not null" json:"final_amount"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TableName sets the table name for DiscountInstrument
func (DiscountInstrument) TableName() string {
	return "discount_instruments"
}

// TableName sets the table name for DiscountUsage
func (DiscountUsage) TableName() string {
	return "discount_usages"
}

// Amount computes the discount for the given order amount, capped at the
// order amount itself
func (d *DiscountInstrument) Amount(orderAmount int64) int64 {
	var amount int64
	switch d.DiscountType {
	case TypePercent:
		amount = orderAmount * d.DiscountValue / 100
	case TypeFixed:
		amount = d.DiscountValue
	}
	if amount > orderAmount {
		amount = orderAmount
	}
	if amount < 0 {
		amount = 0
	}
	return amount
}

// WithinWindow reports whether now falls inside the validity window
func (d *DiscountInstrument) WithinWindow(now time.Time) bool {
	return !now.Before(d.ValidFrom) && !now.After(d.ValidUntil)
}
