package bookings

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinely/internal/catalog"
	"cinely/internal/discounts"
	"cinely/internal/seats"
	"cinely/internal/tickets"
)

// passTx runs the function directly; transactional atomicity is the
// database's concern, not what these tests exercise
type passTx struct{}

func (passTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]*Order
	byTxnRef map[string]*Order
	bookings map[uuid.UUID]*Booking
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders:   make(map[uuid.UUID]*Order),
		byTxnRef: make(map[string]*Order),
		bookings: make(map[uuid.UUID]*Booking),
	}
}

func (r *fakeRepo) CreateOrder(_ context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	r.orders[order.ID] = order
	r.byTxnRef[order.TxnRef] = order
	return nil
}

func (r *fakeRepo) CreateBooking(_ context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	r.bookings[booking.ID] = booking
	return nil
}

func (r *fakeRepo) GetBookingByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeRepo) GetBookingsByOrderID(_ context.Context, orderID uuid.UUID) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []Booking
	for _, booking := range r.bookings {
		if booking.OrderID == orderID {
			list = append(list, *booking)
		}
	}
	return list, nil
}

func (r *fakeRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeRepo) GetOrderByTxnRef(_ context.Context, txnRef string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.byTxnRef[txnRef]
	if !ok {
		return nil, ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeRepo) ListBookingsByUser(_ context.Context, userID uuid.UUID) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []Booking
	for _, booking := range r.bookings {
		if booking.UserID != nil && *booking.UserID == userID {
			list = append(list, *booking)
		}
	}
	return list, nil
}

func (r *fakeRepo) MarkConfirmed(_ context.Context, id uuid.UUID, paymentRef string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok || booking.Status != StatusPending {
		return false, nil
	}
	booking.Status = StatusConfirmed
	booking.PaymentRef = paymentRef
	return true, nil
}

func (r *fakeRepo) MarkTerminal(_ context.Context, id uuid.UUID, target Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok || booking.Status != StatusPending {
		return false, nil
	}
	booking.Status = target
	return true, nil
}

func (r *fakeRepo) ListStalePendingIDs(_ context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stale []*Booking
	for _, booking := range r.bookings {
		if booking.Status == StatusPending && booking.CreatedAt.Before(cutoff) {
			stale = append(stale, booking)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].CreatedAt.Before(stale[j].CreatedAt) })
	var ids []uuid.UUID
	for i, booking := range stale {
		if i >= limit {
			break
		}
		ids = append(ids, booking.ID)
	}
	return ids, nil
}

func (r *fakeRepo) MarkOrderPaid(_ context.Context, txnRef string) (bool, error) {
	return r.markOrder(txnRef, OrderStatusPaid, OrderStatusPending, OrderStatusFailed)
}

func (r *fakeRepo) MarkOrderFailed(_ context.Context, txnRef string) (bool, error) {
	return r.markOrder(txnRef, OrderStatusFailed, OrderStatusPending)
}

func (r *fakeRepo) MarkOrderReconcile(_ context.Context, txnRef string) (bool, error) {
	return r.markOrder(txnRef, OrderStatusReconcile, OrderStatusPending, OrderStatusFailed)
}

func (r *fakeRepo) markOrder(txnRef string, target OrderStatus, from ...OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.byTxnRef[txnRef]
	if !ok {
		return false, nil
	}
	for _, status := range from {
		if order.Status == status {
			order.Status = target
			return true, nil
		}
	}
	return false, nil
}

type fakeSeatLedger struct {
	mu        sync.Mutex
	blocked   map[uuid.UUID]bool
	holds     map[uuid.UUID]uuid.UUID // seat -> booking
	finalized []uuid.UUID
	released  []uuid.UUID
	orphans   int
}

func newFakeSeatLedger() *fakeSeatLedger {
	return &fakeSeatLedger{
		blocked: make(map[uuid.UUID]bool),
		holds:   make(map[uuid.UUID]uuid.UUID),
	}
}

func (l *fakeSeatLedger) Reserve(_ context.Context, _, seatID, bookingID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.blocked[seatID] {
		return seats.ErrSeatUnavailable
	}
	if holder, held := l.holds[seatID]; held && holder != bookingID {
		return seats.ErrSeatUnavailable
	}
	l.holds[seatID] = bookingID
	return nil
}

func (l *fakeSeatLedger) Finalize(_ context.Context, _, seatID, bookingID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if holder, held := l.holds[seatID]; !held || holder != bookingID {
		return seats.ErrNotHolder
	}
	l.finalized = append(l.finalized, seatID)
	return nil
}

func (l *fakeSeatLedger) Release(_ context.Context, _, seatID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.holds, seatID)
	l.released = append(l.released, seatID)
	return nil
}

func (l *fakeSeatLedger) ReleaseForBooking(_ context.Context, bookingID uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	count := 0
	for seatID, holder := range l.holds {
		if holder == bookingID {
			delete(l.holds, seatID)
			l.released = append(l.released, seatID)
			count++
		}
	}
	return count, nil
}

func (l *fakeSeatLedger) ReleaseOrphans(context.Context) (int, error) {
	return l.orphans, nil
}

type fakeDiscountLedger struct {
	quote       *discounts.Quote
	validateErr error
	redeemErr   error
	redeemCalls int
}

func (d *fakeDiscountLedger) Validate(context.Context, string, int64, *uuid.UUID) (*discounts.Quote, error) {
	if d.validateErr != nil {
		return nil, d.validateErr
	}
	return d.quote, nil
}

func (d *fakeDiscountLedger) Redeem(context.Context, string, *uuid.UUID, uuid.UUID, int64) (*discounts.DiscountUsage, error) {
	d.redeemCalls++
	if d.redeemErr != nil {
		return nil, d.redeemErr
	}
	return &discounts.DiscountUsage{ID: uuid.New()}, nil
}

type fakeTicketIssuer struct {
	calls    int
	issueErr error
}

func (t *fakeTicketIssuer) IssueForBooking(_ context.Context, orderID, bookingID uuid.UUID, shares []tickets.SeatShare) ([]tickets.Ticket, error) {
	t.calls++
	if t.issueErr != nil {
		return nil, t.issueErr
	}
	issued := make([]tickets.Ticket, 0, len(shares))
	for _, share := range shares {
		issued = append(issued, tickets.Ticket{
			ID:        uuid.New(),
			OrderID:   orderID,
			BookingID: bookingID,
			SeatID:    share.SeatID,
			Price:     share.Price,
			Token:     uuid.NewString(),
			Status:    tickets.StatusValid,
		})
	}
	return issued, nil
}

type fakeCatalog struct {
	showtime *catalog.Showtime
	seats    map[uuid.UUID]catalog.Seat
}

func (c *fakeCatalog) GetShowtimeByID(_ context.Context, id uuid.UUID) (*catalog.Showtime, error) {
	if c.showtime == nil || c.showtime.ID != id {
		return nil, catalog.ErrShowtimeNotFound
	}
	return c.showtime, nil
}

func (c *fakeCatalog) GetSeatsByIDs(_ context.Context, seatIDs []uuid.UUID) ([]catalog.Seat, error) {
	var found []catalog.Seat
	for _, id := range seatIDs {
		if seat, ok := c.seats[id]; ok {
			found = append(found, seat)
		}
	}
	return found, nil
}

type fakeGateway struct {
	url   string
	err   error
	calls int
}

func (g *fakeGateway) CreateCheckout(context.Context, *Order, *Booking) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.url, nil
}

type fixture struct {
	repo      *fakeRepo
	seats     *fakeSeatLedger
	discounts *fakeDiscountLedger
	tickets   *fakeTicketIssuer
	catalog   *fakeCatalog
	gateway   *fakeGateway
	svc       *service

	showtimeID uuid.UUID
	seatIDs    []uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	showtimeID := uuid.New()
	roomID := uuid.New()
	seatA := uuid.New()
	seatB := uuid.New()

	f := &fixture{
		repo:      newFakeRepo(),
		seats:     newFakeSeatLedger(),
		discounts: &fakeDiscountLedger{},
		tickets:   &fakeTicketIssuer{},
		catalog: &fakeCatalog{
			showtime: &catalog.Showtime{
				ID:       showtimeID,
				RoomID:   roomID,
				StartsAt: time.Now().Add(24 * time.Hour),
				EndsAt:   time.Now().Add(26 * time.Hour),
				Status:   "SCHEDULED",
			},
			seats: map[uuid.UUID]catalog.Seat{
				seatA: {ID: seatA, RoomID: roomID, Label: "A1", Price: 90000},
				seatB: {ID: seatB, RoomID: roomID, Label: "H1", Price: 150000},
			},
		},
		gateway:    &fakeGateway{url: "https://gateway.test/checkout/abc"},
		showtimeID: showtimeID,
		seatIDs:    []uuid.UUID{seatA, seatB},
	}

	f.svc = NewService(
		f.repo, f.seats, f.discounts, f.tickets, f.catalog, f.gateway,
		passTx{}, 15*time.Minute, 100,
	).(*service)
	return f
}

func (f *fixture) createInput() CreateInput {
	return CreateInput{
		ShowtimeID:    f.showtimeID,
		SeatIDs:       f.seatIDs,
		CustomerName:  "Mai Tran",
		CustomerEmail: "mai@example.com",
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("holds seats and opens a pending order", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.svc.Create(ctx, f.createInput())
		require.NoError(t, err)

		assert.Equal(t, StatusPending, result.Booking.Status)
		assert.Equal(t, int64(240000), result.Booking.OriginalPrice)
		assert.Equal(t, int64(240000), result.Booking.TotalPrice)
		assert.Equal(t, 2, result.Booking.TotalSeats)
		assert.Equal(t, OrderStatusPending, result.Order.Status)
		assert.Equal(t, int64(240000), result.Order.TotalPrice)
		assert.NotEmpty(t, result.Order.TxnRef)
		assert.Equal(t, "https://gateway.test/checkout/abc", result.PaymentURL)
		assert.Len(t, f.seats.holds, 2)
	})

	t.Run("all or nothing when any seat is blocked", func(t *testing.T) {
		f := newFixture(t)
		f.seats.blocked[f.seatIDs[1]] = true

		_, err := f.svc.Create(ctx, f.createInput())

		var seatsErr *SeatsUnavailableError
		require.ErrorAs(t, err, &seatsErr)
		assert.Equal(t, []uuid.UUID{f.seatIDs[1]}, seatsErr.Blocked)
		assert.ErrorIs(t, err, ErrSeatsUnavailable)
		// The seat that was briefly held got released
		assert.Empty(t, f.seats.holds)
		assert.Empty(t, f.repo.bookings)
	})

	t.Run("reports every blocked seat, not just the first", func(t *testing.T) {
		f := newFixture(t)
		f.seats.blocked[f.seatIDs[0]] = true
		f.seats.blocked[f.seatIDs[1]] = true

		_, err := f.svc.Create(ctx, f.createInput())

		var seatsErr *SeatsUnavailableError
		require.ErrorAs(t, err, &seatsErr)
		assert.Len(t, seatsErr.Blocked, 2)
	})

	t.Run("rejects a showtime that is not bookable", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.showtime.Status = "CANCELLED"

		_, err := f.svc.Create(ctx, f.createInput())
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Empty(t, f.seats.holds)
	})

	t.Run("rejects unknown seats", func(t *testing.T) {
		f := newFixture(t)
		input := f.createInput()
		input.SeatIDs = append(input.SeatIDs, uuid.New())

		_, err := f.svc.Create(ctx, input)
		assert.Error(t, err)
		assert.Empty(t, f.seats.holds)
	})

	t.Run("applies a validated discount to the order total", func(t *testing.T) {
		f := newFixture(t)
		f.discounts.quote = &discounts.Quote{
			Code:           "TEN",
			OriginalAmount: 240000,
			DiscountAmount: 24000,
			FinalAmount:    216000,
		}

		input := f.createInput()
		input.DiscountCode = "ten"

		result, err := f.svc.Create(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, "TEN", result.Booking.DiscountCode)
		assert.Equal(t, int64(24000), result.Booking.DiscountAmount)
		assert.Equal(t, int64(216000), result.Booking.TotalPrice)
		assert.Equal(t, int64(216000), result.Order.TotalPrice)
		// Validation only previews; redemption happens at confirmation
		assert.Equal(t, 0, f.discounts.redeemCalls)
	})

	t.Run("releases seats when the discount is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.discounts.validateErr = &discounts.DiscountError{Code: "DEAD", Reason: discounts.ReasonExpired}

		input := f.createInput()
		input.DiscountCode = "DEAD"

		_, err := f.svc.Create(ctx, input)
		var discErr *discounts.DiscountError
		require.ErrorAs(t, err, &discErr)
		assert.Empty(t, f.seats.holds)
		assert.Empty(t, f.repo.bookings)
	})

	t.Run("gateway timeout keeps the booking alive", func(t *testing.T) {
		f := newFixture(t)
		f.gateway.err = ErrGatewayTimeout

		result, err := f.svc.Create(ctx, f.createInput())
		assert.ErrorIs(t, err, ErrGatewayTimeout)
		require.NotNil(t, result)
		assert.Empty(t, result.PaymentURL)

		stored, getErr := f.repo.GetBookingByID(ctx, result.Booking.ID)
		require.NoError(t, getErr)
		assert.Equal(t, StatusPending, stored.Status)
		assert.Len(t, f.seats.holds, 2)
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()

	create := func(t *testing.T, f *fixture, discountCode string) *CreateResult {
		t.Helper()
		input := f.createInput()
		input.DiscountCode = discountCode
		result, err := f.svc.Create(ctx, input)
		require.NoError(t, err)
		return result
	}

	t.Run("finalizes seats, issues tickets", func(t *testing.T) {
		f := newFixture(t)
		result := create(t, f, "")

		err := f.svc.Confirm(ctx, result.Booking.ID, "PAY_1")
		require.NoError(t, err)

		stored, _ := f.repo.GetBookingByID(ctx, result.Booking.ID)
		assert.Equal(t, StatusConfirmed, stored.Status)
		assert.Equal(t, "PAY_1", stored.PaymentRef)
		assert.Len(t, f.seats.finalized, 2)
		assert.Equal(t, 1, f.tickets.calls)
		assert.Equal(t, 0, f.discounts.redeemCalls)
	})

	t.Run("redeems the requested discount", func(t *testing.T) {
		f := newFixture(t)
		f.discounts.quote = &discounts.Quote{Code: "TEN", DiscountAmount: 24000, FinalAmount: 216000}
		result := create(t, f, "TEN")

		require.NoError(t, f.svc.Confirm(ctx, result.Booking.ID, "PAY_1"))
		assert.Equal(t, 1, f.discounts.redeemCalls)
	})

	t.Run("replay with the same payment ref is idempotent", func(t *testing.T) {
		f := newFixture(t)
		result := create(t, f, "")

		require.NoError(t, f.svc.Confirm(ctx, result.Booking.ID, "PAY_1"))
		err := f.svc.Confirm(ctx, result.Booking.ID, "PAY_1")
		assert.ErrorIs(t, err, ErrAlreadyConfirmed)
		assert.Equal(t, 1, f.tickets.calls)
	})

	t.Run("different payment ref on a confirmed booking is invalid", func(t *testing.T) {
		f := newFixture(t)
		result := create(t, f, "")

		require.NoError(t, f.svc.Confirm(ctx, result.Booking.ID, "PAY_1"))
		err := f.svc.Confirm(ctx, result.Booking.ID, "PAY_2")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("cannot confirm a cancelled booking", func(t *testing.T) {
		f := newFixture(t)
		result := create(t, f, "")

		require.NoError(t, f.svc.Cancel(ctx, result.Booking.ID, nil))
		err := f.svc.Confirm(ctx, result.Booking.ID, "PAY_1")
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, 0, f.tickets.calls)
	})

	t.Run("discount redemption failure blocks confirmation", func(t *testing.T) {
		f := newFixture(t)
		f.discounts.quote = &discounts.Quote{Code: "TEN", DiscountAmount: 24000}
		result := create(t, f, "TEN")

		f.discounts.redeemErr = &discounts.DiscountError{Code: "TEN", Reason: discounts.ReasonExhausted}
		err := f.svc.Confirm(ctx, result.Booking.ID, "PAY_1")

		var discErr *discounts.DiscountError
		assert.ErrorAs(t, err, &discErr)
		assert.Equal(t, 0, f.tickets.calls)
	})

	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Confirm(ctx, uuid.New(), "PAY_1")
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("releases the held seats", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.svc.Create(ctx, f.createInput())
		require.NoError(t, err)

		require.NoError(t, f.svc.Cancel(ctx, result.Booking.ID, nil))

		stored, _ := f.repo.GetBookingByID(ctx, result.Booking.ID)
		assert.Equal(t, StatusCancelled, stored.Status)
		assert.Empty(t, f.seats.holds)
	})

	t.Run("only the owner may cancel an account booking", func(t *testing.T) {
		f := newFixture(t)
		owner := uuid.New()
		input := f.createInput()
		input.UserID = &owner
		result, err := f.svc.Create(ctx, input)
		require.NoError(t, err)

		stranger := uuid.New()
		err = f.svc.Cancel(ctx, result.Booking.ID, &stranger)
		assert.ErrorIs(t, err, ErrNotOwner)

		require.NoError(t, f.svc.Cancel(ctx, result.Booking.ID, &owner))
	})

	t.Run("anonymous caller cannot cancel an account booking", func(t *testing.T) {
		f := newFixture(t)
		owner := uuid.New()
		input := f.createInput()
		input.UserID = &owner
		result, err := f.svc.Create(ctx, input)
		require.NoError(t, err)

		err = f.svc.Cancel(ctx, result.Booking.ID, nil)
		assert.ErrorIs(t, err, ErrNotOwner)

		stored, _ := f.repo.GetBookingByID(ctx, result.Booking.ID)
		assert.Equal(t, StatusPending, stored.Status)
		assert.Len(t, f.seats.holds, len(f.seatIDs))
	})

	t.Run("cannot cancel after confirmation", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.svc.Create(ctx, f.createInput())
		require.NoError(t, err)
		require.NoError(t, f.svc.Confirm(ctx, result.Booking.ID, "PAY_1"))

		err = f.svc.Cancel(ctx, result.Booking.ID, nil)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestExpireStale(t *testing.T) {
	ctx := context.Background()

	t.Run("expires only lapsed pending bookings", func(t *testing.T) {
		f := newFixture(t)

		stale, err := f.svc.Create(ctx, f.createInput())
		require.NoError(t, err)
		f.repo.bookings[stale.Booking.ID].CreatedAt = time.Now().Add(-time.Hour)

		seatC := uuid.New()
		f.catalog.seats[seatC] = catalog.Seat{ID: seatC, RoomID: f.catalog.showtime.RoomID, Label: "B1", Price: 90000}
		fresh, err := f.svc.Create(ctx, CreateInput{
			ShowtimeID:    f.showtimeID,
			SeatIDs:       []uuid.UUID{seatC},
			CustomerName:  "Fresh",
			CustomerEmail: "fresh@example.com",
		})
		require.NoError(t, err)

		expired, repaired, err := f.svc.ExpireStale(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)
		assert.Equal(t, 0, repaired)

		staleStored, _ := f.repo.GetBookingByID(ctx, stale.Booking.ID)
		assert.Equal(t, StatusExpired, staleStored.Status)
		freshStored, _ := f.repo.GetBookingByID(ctx, fresh.Booking.ID)
		assert.Equal(t, StatusPending, freshStored.Status)
		// The stale booking's seats returned to the pool; the fresh hold stays
		assert.Len(t, f.seats.holds, 1)
	})

	t.Run("losing the race to a confirmation is benign", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.svc.Create(ctx, f.createInput())
		require.NoError(t, err)
		f.repo.bookings[result.Booking.ID].CreatedAt = time.Now().Add(-time.Hour)

		// Payment lands between the scan and the expiry
		require.NoError(t, f.svc.Confirm(ctx, result.Booking.ID, "PAY_1"))

		expired, _, err := f.svc.ExpireStale(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, expired)

		stored, _ := f.repo.GetBookingByID(ctx, result.Booking.ID)
		assert.Equal(t, StatusConfirmed, stored.Status)
	})

	t.Run("reports repaired orphan rows", func(t *testing.T) {
		f := newFixture(t)
		f.seats.orphans = 3

		_, repaired, err := f.svc.ExpireStale(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, repaired)
	})
}

func TestPaymentURL(t *testing.T) {
	ctx := context.Background()

	t.Run("re-requests a checkout URL while pending", func(t *testing.T) {
		f := newFixture(t)
		f.gateway.err = ErrGatewayTimeout
		result, err := f.svc.Create(ctx, f.createInput())
		assert.ErrorIs(t, err, ErrGatewayTimeout)

		f.gateway.err = nil
		url, err := f.svc.PaymentURL(ctx, result.Booking.ID)
		require.NoError(t, err)
		assert.Equal(t, "https://gateway.test/checkout/abc", url)
	})

	t.Run("refused once the booking left PENDING", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.svc.Create(ctx, f.createInput())
		require.NoError(t, err)
		require.NoError(t, f.svc.Confirm(ctx, result.Booking.ID, "PAY_1"))

		_, err = f.svc.PaymentURL(ctx, result.Booking.ID)
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}
