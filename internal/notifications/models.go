package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types published to the booking-events topic
const (
	EventTicketsIssued          = "TICKETS_ISSUED"
	EventPaymentFailed          = "PAYMENT_FAILED"
	EventReconciliationRequired = "RECONCILIATION_REQUIRED"
)

// TicketInfo is the part of a ticket downstream renderers need: the content
// string to encode plus the seat it belongs to
type TicketInfo struct {
	TicketID uuid.UUID `json:"ticket_id"`
	SeatID   uuid.UUID `json:"seat_id"`
	Token    string    `json:"token"`
}

// BookingEvent is published after payment outcomes are applied. Delivery
// and rendering (QR images, email) are downstream consumers' concern.
type BookingEvent struct {
	ID         uuid.UUID    `json:"id"`
	Type       string       `json:"type"`
	OrderID    uuid.UUID    `json:"order_id"`
	BookingIDs []uuid.UUID  `json:"booking_ids,omitempty"`
	TxnRef     string       `json:"txn_ref"`
	Amount     int64        `json:"amount,omitempty"`
	Tickets    []TicketInfo `json:"tickets,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// NewBookingEvent creates an event with id and timestamp filled in
func NewBookingEvent(eventType string, orderID uuid.UUID, txnRef string) *BookingEvent {
	return &BookingEvent{
		ID:        uuid.New(),
		Type:      eventType,
		OrderID:   orderID,
		TxnRef:    txnRef,
		CreatedAt: time.Now(),
	}
}

// ToJSON serializes the event for the wire
func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// GetPartitionKey routes all events of one order to the same partition so
// consumers observe them in order
func (e *BookingEvent) GetPartitionKey() string {
	return e.OrderID.String()
}
