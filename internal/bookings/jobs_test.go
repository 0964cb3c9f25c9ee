package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper(t *testing.T) {
	ctx := context.Background()

	t.Run("single pass reclaims lapsed holds", func(t *testing.T) {
		f := newFixture(t)
		result, err := f.svc.Create(ctx, f.createInput())
		require.NoError(t, err)
		f.repo.bookings[result.Booking.ID].CreatedAt = time.Now().Add(-time.Hour)

		sweeper := NewSweeper(f.svc, time.Minute)
		sweeper.SweepOnce(ctx)

		stored, _ := f.repo.GetBookingByID(ctx, result.Booking.ID)
		assert.Equal(t, StatusExpired, stored.Status)
		assert.Empty(t, f.seats.holds)
	})

	t.Run("start and stop terminate cleanly", func(t *testing.T) {
		f := newFixture(t)
		sweeper := NewSweeper(f.svc, 10*time.Millisecond)

		sweeper.Start()
		time.Sleep(30 * time.Millisecond)
		sweeper.Stop()
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		f := newFixture(t)
		sweeper := NewSweeper(f.svc, time.Minute)

		sweeper.Start()
		sweeper.Stop()
		sweeper.Stop()
	})
}
