package bookings

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cinely/internal/catalog"
	"cinely/internal/discounts"
	"cinely/internal/seats"
	"cinely/internal/shared/txn"
	"cinely/internal/tickets"
	"cinely/pkg/logger"
)

// SeatLedger is implemented by the seats service. Declared here to avoid a
// circular dependency between the packages.
type SeatLedger interface {
	Reserve(ctx context.Context, showtimeID, seatID, bookingID uuid.UUID) error
	Finalize(ctx context.Context, showtimeID, seatID, bookingID uuid.UUID) error
	Release(ctx context.Context, showtimeID, seatID uuid.UUID) error
	ReleaseForBooking(ctx context.Context, bookingID uuid.UUID) (int, error)
	ReleaseOrphans(ctx context.Context) (int, error)
}

// DiscountLedger is implemented by the discounts service
type DiscountLedger interface {
	Validate(ctx context.Context, code string, orderAmount int64, userID *uuid.UUID) (*discounts.Quote, error)
	Redeem(ctx context.Context, code string, userID *uuid.UUID, bookingID uuid.UUID, originalAmount int64) (*discounts.DiscountUsage, error)
}

// TicketIssuer is implemented by the tickets service
type TicketIssuer interface {
	IssueForBooking(ctx context.Context, orderID, bookingID uuid.UUID, shares []tickets.SeatShare) ([]tickets.Ticket, error)
}

// ShowtimeCatalog is the slice of the catalog repository the lifecycle needs
type ShowtimeCatalog interface {
	GetShowtimeByID(ctx context.Context, id uuid.UUID) (*catalog.Showtime, error)
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]catalog.Seat, error)
}

// CheckoutGateway creates a hosted checkout session for an order and returns
// the URL the customer should be redirected to. Implemented by the payments
// gateway client.
type CheckoutGateway interface {
	CreateCheckout(ctx context.Context, order *Order, booking *Booking) (string, error)
}

// CreateInput is the validated input for Create
type CreateInput struct {
	ShowtimeID    uuid.UUID
	SeatIDs       []uuid.UUID
	UserID        *uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	DiscountCode  string
}

// CreateResult is what Create hands back to the transport layer. PaymentURL
// is empty when the gateway timed out; the booking is still live and the
// client retries via PaymentURL.
type CreateResult struct {
	Booking    *Booking `json:"booking"`
	Order      *Order   `json:"order"`
	PaymentURL string   `json:"payment_url,omitempty"`
}

type Service interface {
	// Create holds every requested seat, prices the booking, opens an
	// order and asks the gateway for a checkout URL. All-or-nothing: if
	// any seat is blocked, nothing is held and the full blocked set is
	// returned inside a SeatsUnavailableError.
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)

	// Confirm finalizes a PENDING booking after payment: seats flip to
	// BOOKED, the requested discount is redeemed and tickets are issued,
	// all in one transaction. Replays with the same paymentRef return
	// ErrAlreadyConfirmed.
	Confirm(ctx context.Context, bookingID uuid.UUID, paymentRef string) error

	// Cancel releases a PENDING booking at the holder's request
	Cancel(ctx context.Context, bookingID uuid.UUID, userID *uuid.UUID) error

	// Expire reclaims a PENDING booking whose hold window has lapsed
	Expire(ctx context.Context, bookingID uuid.UUID) error

	// ExpireStale runs one sweep pass: expires stale PENDING bookings in
	// creation order and repairs any orphaned seat rows. Returns how many
	// bookings were expired and how many seat rows were repaired.
	ExpireStale(ctx context.Context) (int, int, error)

	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]Booking, error)

	// PaymentURL re-requests a checkout URL for a still PENDING booking
	PaymentURL(ctx context.Context, bookingID uuid.UUID) (string, error)

	OrderByTxnRef(ctx context.Context, txnRef string) (*Order, error)
	BookingsForOrder(ctx context.Context, orderID uuid.UUID) ([]Booking, error)
	MarkOrderPaid(ctx context.Context, txnRef string) (bool, error)
	MarkOrderFailed(ctx context.Context, txnRef string) (bool, error)
	MarkOrderReconcile(ctx context.Context, txnRef string) (bool, error)
}

type service struct {
	repo      Repository
	seats     SeatLedger
	discounts DiscountLedger
	tickets   TicketIssuer
	catalog   ShowtimeCatalog
	gateway   CheckoutGateway
	tx        txn.Manager
	logger    *logger.Logger

	holdDuration   time.Duration
	sweepBatchSize int

	now func() time.Time
}

func NewService(
	repo Repository,
	seatLedger SeatLedger,
	discountLedger DiscountLedger,
	ticketIssuer TicketIssuer,
	showtimeCatalog ShowtimeCatalog,
	gateway CheckoutGateway,
	tx txn.Manager,
	holdDuration time.Duration,
	sweepBatchSize int,
) Service {
	return &service{
		repo:           repo,
		seats:          seatLedger,
		discounts:      discountLedger,
		tickets:        ticketIssuer,
		catalog:        showtimeCatalog,
		gateway:        gateway,
		tx:             tx,
		logger:         logger.GetDefault(),
		holdDuration:   holdDuration,
		sweepBatchSize: sweepBatchSize,
		now:            time.Now,
	}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	showtime, err := s.catalog.GetShowtimeByID(ctx, input.ShowtimeID)
	if err != nil {
		return nil, err
	}
	if !showtime.IsBookable(s.now()) {
		return nil, fmt.Errorf("showtime is not open for booking: %w", ErrInvalidState)
	}

	seatRows, err := s.catalog.GetSeatsByIDs(ctx, input.SeatIDs)
	if err != nil {
		return nil, err
	}
	if len(seatRows) != len(input.SeatIDs) {
		return nil, fmt.Errorf("one or more seats do not exist")
	}
	for _, seat := range seatRows {
		if seat.RoomID != showtime.RoomID {
			return nil, fmt.Errorf("seat %s does not belong to the showtime's room", seat.ID)
		}
	}

	bookingID := uuid.New()

	// Attempt every seat before giving up so a losing request learns the
	// full blocked set, not just the first conflict.
	var held []uuid.UUID
	var blocked []uuid.UUID
	for _, seat := range seatRows {
		reserveErr := s.seats.Reserve(ctx, input.ShowtimeID, seat.ID, bookingID)
		switch {
		case reserveErr == nil:
			held = append(held, seat.ID)
		case errors.Is(reserveErr, seats.ErrSeatUnavailable):
			blocked = append(blocked, seat.ID)
		default:
			s.releaseHeld(ctx, input.ShowtimeID, held)
			return nil, reserveErr
		}
	}
	if len(blocked) > 0 {
		s.releaseHeld(ctx, input.ShowtimeID, held)
		return nil, &SeatsUnavailableError{Blocked: blocked}
	}

	var originalPrice int64
	bookingSeats := make([]BookingSeat, 0, len(seatRows))
	for _, seat := range seatRows {
		originalPrice += seat.Price
		bookingSeats = append(bookingSeats, BookingSeat{
			ID:        uuid.New(),
			BookingID: bookingID,
			SeatID:    seat.ID,
			SeatPrice: seat.Price,
		})
	}

	var discountAmount int64
	code := strings.ToUpper(strings.TrimSpace(input.DiscountCode))
	if code != "" {
		quote, quoteErr := s.discounts.Validate(ctx, code, originalPrice, input.UserID)
		if quoteErr != nil {
			s.releaseHeld(ctx, input.ShowtimeID, held)
			return nil, quoteErr
		}
		discountAmount = quote.DiscountAmount
	}

	order := &Order{
		ID:         uuid.New(),
		TxnRef:     generateTxnRef(),
		Status:     OrderStatusPending,
		TotalPrice: originalPrice - discountAmount,
	}
	booking := &Booking{
		ID:             bookingID,
		Ref:            generateBookingRef(),
		OrderID:        order.ID,
		UserID:         input.UserID,
		ShowtimeID:     input.ShowtimeID,
		CustomerName:   input.CustomerName,
		CustomerEmail:  input.CustomerEmail,
		CustomerPhone:  input.CustomerPhone,
		TotalSeats:     len(bookingSeats),
		OriginalPrice:  originalPrice,
		DiscountCode:   code,
		DiscountAmount: discountAmount,
		TotalPrice:     originalPrice - discountAmount,
		Status:         StatusPending,
		BookingSeats:   bookingSeats,
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if txErr := s.repo.CreateOrder(ctx, order); txErr != nil {
			return txErr
		}
		return s.repo.CreateBooking(ctx, booking)
	})
	if err != nil {
		s.releaseHeld(ctx, input.ShowtimeID, held)
		return nil, err
	}

	s.logger.LogBookingCreated(ctx, booking.ID.String(), input.ShowtimeID.String(), len(bookingSeats))

	result := &CreateResult{Booking: booking, Order: order}
	checkoutURL, gwErr := s.gateway.CreateCheckout(ctx, order, booking)
	if gwErr != nil {
		// The hold survives a gateway hiccup. The caller retries via
		// PaymentURL until the sweeper reclaims the seats.
		if errors.Is(gwErr, ErrGatewayTimeout) {
			return result, ErrGatewayTimeout
		}
		return result, gwErr
	}
	result.PaymentURL = checkoutURL
	return result, nil
}

func (s *service) releaseHeld(ctx context.Context, showtimeID uuid.UUID, seatIDs []uuid.UUID) {
	for _, seatID := range seatIDs {
		if err := s.seats.Release(ctx, showtimeID, seatID); err != nil {
			s.logger.ErrorWithContext(ctx, "failed to release held seat", err, map[string]interface{}{
				"showtime_id": showtimeID.String(),
				"seat_id":     seatID.String(),
			})
		}
	}
}

func (s *service) Confirm(ctx context.Context, bookingID uuid.UUID, paymentRef string) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		booking, txErr := s.repo.GetBookingByID(ctx, bookingID)
		if txErr != nil {
			return txErr
		}

		switch booking.Status {
		case StatusConfirmed, StatusCompleted:
			if booking.PaymentRef == paymentRef {
				return ErrAlreadyConfirmed
			}
			return fmt.Errorf("booking confirmed under a different payment: %w", ErrInvalidState)
		case StatusPending:
		default:
			return fmt.Errorf("booking is %s: %w", booking.Status, ErrInvalidState)
		}

		ok, txErr := s.repo.MarkConfirmed(ctx, bookingID, paymentRef)
		if txErr != nil {
			return txErr
		}
		if !ok {
			// Lost the race against a concurrent confirm, cancel or
			// expiry. Re-read to classify.
			current, reErr := s.repo.GetBookingByID(ctx, bookingID)
			if reErr != nil {
				return reErr
			}
			if current.Status == StatusConfirmed && current.PaymentRef == paymentRef {
				return ErrAlreadyConfirmed
			}
			return fmt.Errorf("booking is %s: %w", current.Status, ErrInvalidState)
		}

		for _, bs := range booking.BookingSeats {
			if txErr = s.seats.Finalize(ctx, booking.ShowtimeID, bs.SeatID, bookingID); txErr != nil {
				return txErr
			}
		}

		if booking.DiscountCode != "" {
			if _, txErr = s.discounts.Redeem(ctx, booking.DiscountCode, booking.UserID, bookingID, booking.OriginalPrice); txErr != nil {
				return txErr
			}
		}

		shares := make([]tickets.SeatShare, 0, len(booking.BookingSeats))
		for _, bs := range booking.BookingSeats {
			shares = append(shares, tickets.SeatShare{SeatID: bs.SeatID, Price: bs.SeatPrice})
		}
		_, txErr = s.tickets.IssueForBooking(ctx, booking.OrderID, bookingID, shares)
		return txErr
	})
	if err != nil {
		return err
	}

	s.logger.LogBookingConfirmed(ctx, bookingID.String(), paymentRef)
	return nil
}

func (s *service) Cancel(ctx context.Context, bookingID uuid.UUID, userID *uuid.UUID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		booking, err := s.repo.GetBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.UserID != nil && (userID == nil || *booking.UserID != *userID) {
			return ErrNotOwner
		}
		ok, err := s.repo.MarkTerminal(ctx, bookingID, StatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("booking is no longer pending: %w", ErrInvalidState)
		}
		_, err = s.seats.ReleaseForBooking(ctx, bookingID)
		return err
	})
}

func (s *service) Expire(ctx context.Context, bookingID uuid.UUID) error {
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		ok, err := s.repo.MarkTerminal(ctx, bookingID, StatusExpired)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("booking is no longer pending: %w", ErrInvalidState)
		}
		if _, err = s.seats.ReleaseForBooking(ctx, bookingID); err != nil {
			return err
		}
		s.logger.LogBookingExpired(ctx, bookingID.String())
		return nil
	})
}

func (s *service) ExpireStale(ctx context.Context) (int, int, error) {
	cutoff := s.now().Add(-s.holdDuration)
	ids, err := s.repo.ListStalePendingIDs(ctx, cutoff, s.sweepBatchSize)
	if err != nil {
		return 0, 0, err
	}

	expired := 0
	for _, id := range ids {
		expireErr := s.Expire(ctx, id)
		switch {
		case expireErr == nil:
			expired++
		case errors.Is(expireErr, ErrInvalidState):
			// A payment or cancel landed between the scan and the
			// expiry. Nothing to reclaim.
			s.logger.LogLostRace(ctx, id.String(), "expire")
		default:
			return expired, 0, expireErr
		}
	}

	repaired, err := s.seats.ReleaseOrphans(ctx)
	if err != nil {
		return expired, 0, err
	}
	return expired, repaired, nil
}

func (s *service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.repo.GetBookingByID(ctx, id)
}

func (s *service) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	return s.repo.ListBookingsByUser(ctx, userID)
}

func (s *service) PaymentURL(ctx context.Context, bookingID uuid.UUID) (string, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if booking.Status != StatusPending {
		return "", fmt.Errorf("booking is %s: %w", booking.Status, ErrInvalidState)
	}
	order, err := s.repo.GetOrderByID(ctx, booking.OrderID)
	if err != nil {
		return "", err
	}
	return s.gateway.CreateCheckout(ctx, order, booking)
}

func (s *service) OrderByTxnRef(ctx context.Context, txnRef string) (*Order, error) {
	return s.repo.GetOrderByTxnRef(ctx, txnRef)
}

func (s *service) BookingsForOrder(ctx context.Context, orderID uuid.UUID) ([]Booking, error) {
	return s.repo.GetBookingsByOrderID(ctx, orderID)
}

func (s *service) MarkOrderPaid(ctx context.Context, txnRef string) (bool, error) {
	return s.repo.MarkOrderPaid(ctx, txnRef)
}

func (s *service) MarkOrderFailed(ctx context.Context, txnRef string) (bool, error) {
	return s.repo.MarkOrderFailed(ctx, txnRef)
}

func (s *service) MarkOrderReconcile(ctx context.Context, txnRef string) (bool, error) {
	return s.repo.MarkOrderReconcile(ctx, txnRef)
}

func generateTxnRef() string {
	return fmt.Sprintf("TXN_%d_%s", time.Now().Unix(), randomSuffix(4))
}

func generateBookingRef() string {
	return fmt.Sprintf("CIN-%s-%s", time.Now().Format("20060102"), randomSuffix(3))
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return strings.ToUpper(hex.EncodeToString(buf))
}
