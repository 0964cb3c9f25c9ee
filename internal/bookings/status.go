package bookings

// Status is the booking lifecycle state.
// PENDING -> {CONFIRMED, CANCELLED, EXPIRED}; CONFIRMED -> COMPLETED after
// the screening. No transition leaves CANCELLED, EXPIRED or COMPLETED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
	StatusCompleted Status = "COMPLETED"
)

// IsTerminal reports whether no further transitions are possible
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusExpired || s == StatusCompleted
}

// OrderStatus is the payment-side state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusFailed    OrderStatus = "FAILED"
	OrderStatusReconcile OrderStatus = "RECONCILE"
)
