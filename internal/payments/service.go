package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cinely/internal/bookings"
	"cinely/internal/notifications"
	"cinely/internal/shared/txn"
	"cinely/internal/tickets"
	"cinely/pkg/logger"
)

// BookingLifecycle is the slice of the bookings service this adapter needs.
// Declared here to keep the dependency one-directional.
type BookingLifecycle interface {
	OrderByTxnRef(ctx context.Context, txnRef string) (*bookings.Order, error)
	BookingsForOrder(ctx context.Context, orderID uuid.UUID) ([]bookings.Booking, error)
	Confirm(ctx context.Context, bookingID uuid.UUID, paymentRef string) error
	MarkOrderPaid(ctx context.Context, txnRef string) (bool, error)
	MarkOrderFailed(ctx context.Context, txnRef string) (bool, error)
	MarkOrderReconcile(ctx context.Context, txnRef string) (bool, error)
}

// TicketReader fetches issued tickets for event payloads
type TicketReader interface {
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]tickets.Ticket, error)
}

type Service interface {
	// ProcessOutcome applies a verified gateway outcome to the order it
	// references. Replays of an already applied outcome are detected and
	// acknowledged without side effects. A success that can no longer be
	// applied flags the order RECONCILE and returns
	// ErrReconciliationRequired.
	ProcessOutcome(ctx context.Context, outcome PaymentOutcome) (*ProcessResult, error)

	GetOrderStatus(ctx context.Context, txnRef string) (*bookings.Order, error)
}

type service struct {
	lifecycle BookingLifecycle
	tickets   TicketReader
	producer  notifications.Producer
	tx        txn.Manager
	logger    *logger.Logger
}

func NewService(lifecycle BookingLifecycle, ticketReader TicketReader, producer notifications.Producer, tx txn.Manager) Service {
	return &service{
		lifecycle: lifecycle,
		tickets:   ticketReader,
		producer:  producer,
		tx:        tx,
		logger:    logger.GetDefault(),
	}
}

// errNotConfirmable aborts the confirmation transaction so every partial
// confirm rolls back before the order is flagged for reconciliation
var errNotConfirmable = errors.New("order bookings not confirmable")

// errPaidElsewhere signals a concurrent delivery already settled the order
var errPaidElsewhere = errors.New("order already paid by concurrent delivery")

func (s *service) ProcessOutcome(ctx context.Context, outcome PaymentOutcome) (*ProcessResult, error) {
	order, err := s.lifecycle.OrderByTxnRef(ctx, outcome.TransactionRef)
	if err != nil {
		return nil, err
	}

	switch outcome.Outcome {
	case OutcomeSuccess:
		return s.applySuccess(ctx, order, outcome)
	case OutcomeFailure:
		return s.applyFailure(ctx, order, outcome)
	default:
		return nil, fmt.Errorf("unknown payment outcome: %q", outcome.Outcome)
	}
}

func (s *service) applySuccess(ctx context.Context, order *bookings.Order, outcome PaymentOutcome) (*ProcessResult, error) {
	if order.Status == bookings.OrderStatusPaid {
		s.logger.LogPaymentOutcome(ctx, order.TxnRef, "SUCCESS (replay)")
		return &ProcessResult{
			OrderID:          order.ID,
			TxnRef:           order.TxnRef,
			Status:           string(order.Status),
			AlreadyProcessed: true,
		}, nil
	}

	if outcome.VerifiedAmount != order.TotalPrice {
		return nil, fmt.Errorf("verified %d, order total %d: %w",
			outcome.VerifiedAmount, order.TotalPrice, ErrAmountMismatch)
	}

	var confirmed []uuid.UUID
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		list, txErr := s.lifecycle.BookingsForOrder(ctx, order.ID)
		if txErr != nil {
			return txErr
		}
		if len(list) == 0 {
			return fmt.Errorf("order %s has no bookings", order.ID)
		}

		for _, booking := range list {
			confirmErr := s.lifecycle.Confirm(ctx, booking.ID, outcome.TransactionRef)
			switch {
			case confirmErr == nil, errors.Is(confirmErr, bookings.ErrAlreadyConfirmed):
				confirmed = append(confirmed, booking.ID)
			case errors.Is(confirmErr, bookings.ErrInvalidState):
				// The hold expired or the customer cancelled before
				// the success arrived. Roll everything back; the
				// money was taken and must be handled by hand.
				return errNotConfirmable
			default:
				return confirmErr
			}
		}

		ok, txErr := s.lifecycle.MarkOrderPaid(ctx, order.TxnRef)
		if txErr != nil {
			return txErr
		}
		if !ok {
			// A concurrent delivery of the same outcome can win the
			// paid transition between our pre-read and this update.
			current, reErr := s.lifecycle.OrderByTxnRef(ctx, order.TxnRef)
			if reErr != nil {
				return reErr
			}
			if current.Status == bookings.OrderStatusPaid {
				return errPaidElsewhere
			}
			return fmt.Errorf("order %s could not be marked paid", order.TxnRef)
		}
		return nil
	})

	if errors.Is(err, errPaidElsewhere) {
		s.logger.LogPaymentOutcome(ctx, order.TxnRef, "SUCCESS (replay)")
		return &ProcessResult{
			OrderID:          order.ID,
			TxnRef:           order.TxnRef,
			Status:           string(bookings.OrderStatusPaid),
			AlreadyProcessed: true,
		}, nil
	}
	if errors.Is(err, errNotConfirmable) {
		return s.flagReconcile(ctx, order)
	}
	if err != nil {
		return nil, err
	}

	s.logger.LogPaymentOutcome(ctx, order.TxnRef, "SUCCESS")
	s.publishTicketsIssued(ctx, order, confirmed)

	return &ProcessResult{
		OrderID:           order.ID,
		TxnRef:            order.TxnRef,
		Status:            string(bookings.OrderStatusPaid),
		ConfirmedBookings: confirmed,
	}, nil
}

func (s *service) applyFailure(ctx context.Context, order *bookings.Order, outcome PaymentOutcome) (*ProcessResult, error) {
	if order.Status == bookings.OrderStatusPaid {
		// A failure arriving after a success is gateway noise
		s.logger.LogPaymentOutcome(ctx, order.TxnRef, "FAILURE (ignored, order already paid)")
		return &ProcessResult{
			OrderID:          order.ID,
			TxnRef:           order.TxnRef,
			Status:           string(order.Status),
			AlreadyProcessed: true,
		}, nil
	}

	changed, err := s.lifecycle.MarkOrderFailed(ctx, order.TxnRef)
	if err != nil {
		return nil, err
	}

	s.logger.LogPaymentOutcome(ctx, order.TxnRef, "FAILURE")
	if changed {
		// Seats stay held until the customer retries, cancels or the
		// sweeper reclaims them at the end of the hold window.
		event := notifications.NewBookingEvent(notifications.EventPaymentFailed, order.ID, order.TxnRef)
		event.Amount = order.TotalPrice
		s.publish(ctx, event)
	}

	return &ProcessResult{
		OrderID:          order.ID,
		TxnRef:           order.TxnRef,
		Status:           string(bookings.OrderStatusFailed),
		AlreadyProcessed: !changed,
	}, nil
}

func (s *service) flagReconcile(ctx context.Context, order *bookings.Order) (*ProcessResult, error) {
	if _, err := s.lifecycle.MarkOrderReconcile(ctx, order.TxnRef); err != nil {
		return nil, err
	}

	s.logger.LogReconciliationRequired(ctx, order.TxnRef)
	event := notifications.NewBookingEvent(notifications.EventReconciliationRequired, order.ID, order.TxnRef)
	event.Amount = order.TotalPrice
	event.Reason = "payment succeeded after booking hold expired"
	s.publish(ctx, event)

	return &ProcessResult{
		OrderID: order.ID,
		TxnRef:  order.TxnRef,
		Status:  string(bookings.OrderStatusReconcile),
	}, ErrReconciliationRequired
}

func (s *service) publishTicketsIssued(ctx context.Context, order *bookings.Order, confirmed []uuid.UUID) {
	event := notifications.NewBookingEvent(notifications.EventTicketsIssued, order.ID, order.TxnRef)
	event.BookingIDs = confirmed
	event.Amount = order.TotalPrice

	issued, err := s.tickets.GetByOrderID(ctx, order.ID)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "failed to load tickets for event payload", err, map[string]interface{}{
			"order_id": order.ID.String(),
		})
	}
	for _, t := range issued {
		event.Tickets = append(event.Tickets, notifications.TicketInfo{
			TicketID: t.ID,
			SeatID:   t.SeatID,
			Token:    t.Token,
		})
	}
	s.publish(ctx, event)
}

// publish is best effort. Outcomes are already committed; a broker outage
// must not fail the webhook.
func (s *service) publish(ctx context.Context, event *notifications.BookingEvent) {
	if err := s.producer.Publish(ctx, event); err != nil {
		s.logger.ErrorWithContext(ctx, "failed to publish booking event", err, map[string]interface{}{
			"event_type": event.Type,
			"order_id":   event.OrderID.String(),
		})
	}
}

func (s *service) GetOrderStatus(ctx context.Context, txnRef string) (*bookings.Order, error) {
	return s.lifecycle.OrderByTxnRef(ctx, txnRef)
}
