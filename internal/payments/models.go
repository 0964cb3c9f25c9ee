package payments

import (
	"errors"

	"github.com/google/uuid"
)

// Outcome is the verified result of a payment attempt. Signature checks and
// amount verification against the gateway happen upstream of this package.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailure Outcome = "FAILURE"
)

// PaymentOutcome is the input to ProcessOutcome
type PaymentOutcome struct {
	TransactionRef string
	VerifiedAmount int64
	Outcome        Outcome
}

// ProcessResult reports what applying an outcome did
type ProcessResult struct {
	OrderID           uuid.UUID   `json:"order_id"`
	TxnRef            string      `json:"txn_ref"`
	Status            string      `json:"status"`
	AlreadyProcessed  bool        `json:"already_processed"`
	ConfirmedBookings []uuid.UUID `json:"confirmed_bookings,omitempty"`
}

var (
	// ErrAmountMismatch means the verified amount does not equal the
	// order total. The outcome is rejected without touching any state.
	ErrAmountMismatch = errors.New("verified amount does not match order total")

	// ErrReconciliationRequired means a verified success arrived for an
	// order whose bookings can no longer be confirmed, typically because
	// the hold expired first. The order is flagged RECONCILE and the
	// customer must be refunded out of band.
	ErrReconciliationRequired = errors.New("payment succeeded but bookings are no longer confirmable, manual reconciliation required")
)
