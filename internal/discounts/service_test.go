package discounts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository with the same conditional-decrement
// semantics as the SQL implementation
type fakeRepo struct {
	mu          sync.Mutex
	instruments map[string]*DiscountInstrument
	usages      []DiscountUsage
}

func newFakeRepo(instruments ...*DiscountInstrument) *fakeRepo {
	r := &fakeRepo{instruments: make(map[string]*DiscountInstrument)}
	for _, inst := range instruments {
		r.instruments[inst.Code] = inst
	}
	return r
}

func (r *fakeRepo) GetByCode(_ context.Context, code string) (*DiscountInstrument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instruments[code]
	if !ok {
		return nil, nil
	}
	copied := *inst
	return &copied, nil
}

func (r *fakeRepo) CountUsageByUser(_ context.Context, instrumentID uuid.UUID, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, usage := range r.usages {
		if usage.InstrumentID == instrumentID && usage.UserID != nil && *usage.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) DecrementRemaining(_ context.Context, code string, orderAmount int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instruments[code]
	if !ok {
		return false, nil
	}
	now := time.Now()
	if inst.Status != StatusActive || !inst.WithinWindow(now) ||
		inst.RemainingQuantity <= 0 || orderAmount < inst.MinOrderAmount {
		return false, nil
	}
	inst.RemainingQuantity--
	inst.UsedQuantity++
	return true, nil
}

func (r *fakeRepo) CreateUsage(_ context.Context, usage *DiscountUsage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if usage.ID == uuid.Nil {
		usage.ID = uuid.New()
	}
	r.usages = append(r.usages, *usage)
	return nil
}

func (r *fakeRepo) Create(_ context.Context, instrument *DiscountInstrument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instruments[instrument.Code] = instrument
	return nil
}

func activeInstrument(code string) *DiscountInstrument {
	now := time.Now()
	return &DiscountInstrument{
		ID:                uuid.New(),
		Code:              code,
		Name:              "test discount",
		DiscountType:      TypePercent,
		DiscountValue:     10,
		TotalQuantity:     5,
		RemainingQuantity: 5,
		ValidFrom:         now.Add(-time.Hour),
		ValidUntil:        now.Add(time.Hour),
		Status:            StatusActive,
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("percent quote", func(t *testing.T) {
		svc := NewService(newFakeRepo(activeInstrument("TEN")))

		quote, err := svc.Validate(ctx, "TEN", 100000, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), quote.DiscountAmount)
		assert.Equal(t, int64(90000), quote.FinalAmount)
	})

	t.Run("fixed discount capped at order amount", func(t *testing.T) {
		inst := activeInstrument("BIGFIX")
		inst.DiscountType = TypeFixed
		inst.DiscountValue = 500000
		svc := NewService(newFakeRepo(inst))

		quote, err := svc.Validate(ctx, "BIGFIX", 120000, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(120000), quote.DiscountAmount)
		assert.Equal(t, int64(0), quote.FinalAmount)
	})

	t.Run("unknown code", func(t *testing.T) {
		svc := NewService(newFakeRepo())

		_, err := svc.Validate(ctx, "NOPE", 100000, nil)
		var discErr *DiscountError
		require.ErrorAs(t, err, &discErr)
		assert.Equal(t, ReasonNotFound, discErr.Reason)
	})

	t.Run("inactive code", func(t *testing.T) {
		inst := activeInstrument("OFF")
		inst.Status = StatusInactive
		svc := NewService(newFakeRepo(inst))

		_, err := svc.Validate(ctx, "OFF", 100000, nil)
		var discErr *DiscountError
		require.ErrorAs(t, err, &discErr)
		assert.Equal(t, ReasonInactive, discErr.Reason)
	})

	t.Run("outside validity window", func(t *testing.T) {
		inst := activeInstrument("LATE")
		inst.ValidUntil = time.Now().Add(-time.Minute)
		svc := NewService(newFakeRepo(inst))

		_, err := svc.Validate(ctx, "LATE", 100000, nil)
		var discErr *DiscountError
		require.ErrorAs(t, err, &discErr)
		assert.Equal(t, ReasonExpired, discErr.Reason)
	})

	t.Run("below minimum order amount", func(t *testing.T) {
		inst := activeInstrument("MIN")
		inst.MinOrderAmount = 200000
		svc := NewService(newFakeRepo(inst))

		_, err := svc.Validate(ctx, "MIN", 100000, nil)
		var discErr *DiscountError
		require.ErrorAs(t, err, &discErr)
		assert.Equal(t, ReasonBelowMinimum, discErr.Reason)
	})

	t.Run("exhausted", func(t *testing.T) {
		inst := activeInstrument("GONE")
		inst.RemainingQuantity = 0
		inst.UsedQuantity = inst.TotalQuantity
		svc := NewService(newFakeRepo(inst))

		_, err := svc.Validate(ctx, "GONE", 100000, nil)
		var discErr *DiscountError
		require.ErrorAs(t, err, &discErr)
		assert.Equal(t, ReasonExhausted, discErr.Reason)
	})

	t.Run("validate does not consume quantity", func(t *testing.T) {
		repo := newFakeRepo(activeInstrument("TEN"))
		svc := NewService(repo)

		for i := 0; i < 10; i++ {
			_, err := svc.Validate(ctx, "TEN", 100000, nil)
			require.NoError(t, err)
		}
		assert.Equal(t, 5, repo.instruments["TEN"].RemainingQuantity)
	})
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("success records usage and decrements", func(t *testing.T) {
		repo := newFakeRepo(activeInstrument("TEN"))
		svc := NewService(repo)
		userID := uuid.New()
		bookingID := uuid.New()

		usage, err := svc.Redeem(ctx, "TEN", &userID, bookingID, 100000)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), usage.DiscountAmount)
		assert.Equal(t, int64(90000), usage.FinalAmount)
		assert.Equal(t, bookingID, usage.BookingID)
		assert.Equal(t, 4, repo.instruments["TEN"].RemainingQuantity)
		assert.Len(t, repo.usages, 1)
	})

	t.Run("second redemption by same user refused", func(t *testing.T) {
		repo := newFakeRepo(activeInstrument("TEN"))
		svc := NewService(repo)
		userID := uuid.New()

		_, err := svc.Redeem(ctx, "TEN", &userID, uuid.New(), 100000)
		require.NoError(t, err)

		_, err = svc.Redeem(ctx, "TEN", &userID, uuid.New(), 100000)
		var discErr *DiscountError
		require.ErrorAs(t, err, &discErr)
		assert.Equal(t, ReasonAlreadyUsed, discErr.Reason)
		assert.Equal(t, 4, repo.instruments["TEN"].RemainingQuantity)
	})

	t.Run("guests may redeem without per-user limit", func(t *testing.T) {
		repo := newFakeRepo(activeInstrument("TEN"))
		svc := NewService(repo)

		_, err := svc.Redeem(ctx, "TEN", nil, uuid.New(), 100000)
		require.NoError(t, err)
		_, err = svc.Redeem(ctx, "TEN", nil, uuid.New(), 100000)
		require.NoError(t, err)
		assert.Equal(t, 3, repo.instruments["TEN"].RemainingQuantity)
	})

	t.Run("never oversells the last unit", func(t *testing.T) {
		inst := activeInstrument("LAST")
		inst.TotalQuantity = 1
		inst.RemainingQuantity = 1
		repo := newFakeRepo(inst)
		svc := NewService(repo)

		const attempts = 20
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Redeem(ctx, "LAST", nil, uuid.New(), 100000)
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				var discErr *DiscountError
				require.ErrorAs(t, err, &discErr)
				assert.Equal(t, ReasonExhausted, discErr.Reason)
			}
		}
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 0, repo.instruments["LAST"].RemainingQuantity)
		assert.Len(t, repo.usages, 1)
	})
}
