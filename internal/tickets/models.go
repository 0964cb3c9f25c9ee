package tickets

import (
	"time"

	"github.com/google/uuid"
)

// Ticket statuses
const (
	StatusValid    = "VALID"
	StatusRedeemed = "REDEEMED"
	StatusVoid     = "VOID"
)

// Ticket is redeemable proof of one paid seat reservation. Exactly one
// ticket ever exists per (order, seat); the unique index on that pair makes
// issuance idempotent.
type Ticket struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null" json:"booking_id"`
	SeatID    uuid.UUID `gorm:"type:uuid;not null" json:"seat_id"`
	Token     string    `gorm:"type:varchar(64);unique;not null" json:"token"`
	Price     int64     `gorm:"not null" json:"price"`
	Status    string    `gorm:"type:varchar(20);check:status IN ('VALID', 'REDEEMED', 'VOID');default:'VALID'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Ticket
func (Ticket) TableName() string {
	return "tickets"
}

// Content returns the string an external renderer encodes into the
// scannable artifact
func (t *Ticket) Content() string {
	return t.Token
}
