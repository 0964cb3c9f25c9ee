package seats

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinely/pkg/cache"
)

type seatKey struct {
	showtimeID uuid.UUID
	seatID     uuid.UUID
}

// fakeRepo mirrors the conditional-write semantics of the SQL repository:
// every ownership decision is a compare-and-set under one lock
type fakeRepo struct {
	mu   sync.Mutex
	rows map[seatKey]*SeatReservation

	// seat ids known for a showtime, for ListAvailableSeatIDs
	roomSeats map[uuid.UUID][]uuid.UUID

	listCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		rows:      make(map[seatKey]*SeatReservation),
		roomSeats: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *fakeRepo) Reserve(_ context.Context, showtimeID, seatID, bookingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := seatKey{showtimeID, seatID}
	row, ok := r.rows[key]
	if !ok || row.Status == StatusAvailable {
		holder := bookingID
		r.rows[key] = &SeatReservation{
			ID:         uuid.New(),
			ShowtimeID: showtimeID,
			SeatID:     seatID,
			Status:     StatusHeld,
			BookingID:  &holder,
		}
		return nil
	}
	if row.IsOwnedBy(bookingID) {
		return nil
	}
	return ErrSeatUnavailable
}

func (r *fakeRepo) Finalize(_ context.Context, showtimeID, seatID, bookingID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[seatKey{showtimeID, seatID}]
	if !ok || !row.IsOwnedBy(bookingID) {
		return ErrNotHolder
	}
	row.Status = StatusBooked
	return nil
}

func (r *fakeRepo) Release(_ context.Context, showtimeID, seatID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[seatKey{showtimeID, seatID}]; ok {
		row.Status = StatusAvailable
		row.BookingID = nil
	}
	return nil
}

func (r *fakeRepo) ReleaseForBooking(_ context.Context, bookingID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var touched []uuid.UUID
	for _, row := range r.rows {
		if row.BookingID != nil && *row.BookingID == bookingID {
			row.Status = StatusAvailable
			row.BookingID = nil
			touched = append(touched, row.ShowtimeID)
		}
	}
	return touched, nil
}

func (r *fakeRepo) ReleaseOrphans(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var touched []uuid.UUID
	for _, row := range r.rows {
		if row.Status != StatusAvailable && row.BookingID == nil {
			row.Status = StatusAvailable
			touched = append(touched, row.ShowtimeID)
		}
	}
	return touched, nil
}

func (r *fakeRepo) GetReservation(_ context.Context, showtimeID, seatID uuid.UUID) (*SeatReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[seatKey{showtimeID, seatID}]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeRepo) ListAvailableSeatIDs(_ context.Context, showtimeID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var available []uuid.UUID
	for _, seatID := range r.roomSeats[showtimeID] {
		row, ok := r.rows[seatKey{showtimeID, seatID}]
		if !ok || row.Status == StatusAvailable {
			available = append(available, seatID)
		}
	}
	return available, nil
}

// fakeCache is an in-memory cache.Service
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	c.deletes = append(c.deletes, key)
	return nil
}

func (c *fakeCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fetcher func() (interface{}, error), dest interface{}) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	}
	value, err := fetcher()
	if err != nil {
		return err
	}
	if err := c.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.Get(ctx, key, dest)
}

func (c *fakeCache) Ping(context.Context) error { return nil }

func TestReserve(t *testing.T) {
	ctx := context.Background()
	showtimeID := uuid.New()
	seatID := uuid.New()

	t.Run("first claim wins", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, nil, time.Second)

		require.NoError(t, svc.Reserve(ctx, showtimeID, seatID, uuid.New()))
	})

	t.Run("second claim refused", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, nil, time.Second)

		require.NoError(t, svc.Reserve(ctx, showtimeID, seatID, uuid.New()))
		err := svc.Reserve(ctx, showtimeID, seatID, uuid.New())
		assert.ErrorIs(t, err, ErrSeatUnavailable)
	})

	t.Run("reserve is idempotent for the holder", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, nil, time.Second)
		bookingID := uuid.New()

		require.NoError(t, svc.Reserve(ctx, showtimeID, seatID, bookingID))
		require.NoError(t, svc.Reserve(ctx, showtimeID, seatID, bookingID))
	})

	t.Run("same seat in another showtime is independent", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, nil, time.Second)

		require.NoError(t, svc.Reserve(ctx, showtimeID, seatID, uuid.New()))
		require.NoError(t, svc.Reserve(ctx, uuid.New(), seatID, uuid.New()))
	})

	t.Run("released seat can be claimed again", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, nil, time.Second)

		require.NoError(t, svc.Reserve(ctx, showtimeID, seatID, uuid.New()))
		require.NoError(t, svc.Release(ctx, showtimeID, seatID))
		require.NoError(t, svc.Reserve(ctx, showtimeID, seatID, uuid.New()))
	})

	t.Run("exactly one winner under contention", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, nil, time.Second)

		const attempts = 50
		var wg sync.WaitGroup
		errs := make([]error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = svc.Reserve(ctx, showtimeID, seatID, uuid.New())
			}(i)
		}
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
			} else {
				assert.ErrorIs(t, err, ErrSeatUnavailable)
			}
		}
		assert.Equal(t, 1, winners)
	})
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()
	showtimeID := uuid.New()
	seatID := uuid.New()

	t.Run("holder can finalize", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, nil, time.Second)
		bookingID := uuid.New()

		require.NoError(t, svc.Reserve(ctx, showtimeID, seatID, bookingID))
		require.NoError(t, svc.Finalize(ctx, showtimeID, seatID, bookingID))

		row, err := repo.GetReservation(ctx, showtimeID, seatID)
		require.NoError(t, err)
		assert.Equal(t, StatusBooked, row.Status)
	})

	t.Run("non-holder cannot finalize", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, nil, time.Second)

		require.NoError(t, svc.Reserve(ctx, showtimeID, seatID, uuid.New()))
		err := svc.Finalize(ctx, showtimeID, seatID, uuid.New())
		assert.ErrorIs(t, err, ErrNotHolder)
	})

	t.Run("cannot finalize an unclaimed seat", func(t *testing.T) {
		repo := newFakeRepo()
		svc := NewService(repo, nil, time.Second)

		err := svc.Finalize(ctx, showtimeID, seatID, uuid.New())
		assert.ErrorIs(t, err, ErrNotHolder)
	})
}

func TestListAvailable(t *testing.T) {
	ctx := context.Background()
	showtimeID := uuid.New()
	seatA := uuid.New()
	seatB := uuid.New()

	t.Run("snapshot served from cache until invalidated", func(t *testing.T) {
		repo := newFakeRepo()
		repo.roomSeats[showtimeID] = []uuid.UUID{seatA, seatB}
		cacheSvc := newFakeCache()
		svc := NewService(repo, cacheSvc, time.Minute)

		first, err := svc.ListAvailable(ctx, showtimeID)
		require.NoError(t, err)
		assert.Len(t, first, 2)

		// Second read hits the cache
		_, err = svc.ListAvailable(ctx, showtimeID)
		require.NoError(t, err)
		assert.Equal(t, 1, repo.listCalls)

		// A reservation invalidates the snapshot
		require.NoError(t, svc.Reserve(ctx, showtimeID, seatA, uuid.New()))
		after, err := svc.ListAvailable(ctx, showtimeID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{seatB}, after)
		assert.Equal(t, 2, repo.listCalls)
	})

	t.Run("works without a cache", func(t *testing.T) {
		repo := newFakeRepo()
		repo.roomSeats[showtimeID] = []uuid.UUID{seatA}
		svc := NewService(repo, nil, time.Minute)

		available, err := svc.ListAvailable(ctx, showtimeID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{seatA}, available)
	})
}

func TestReleaseForBooking(t *testing.T) {
	ctx := context.Background()
	showtimeID := uuid.New()
	bookingID := uuid.New()
	seatA := uuid.New()
	seatB := uuid.New()

	repo := newFakeRepo()
	svc := NewService(repo, nil, time.Second)

	require.NoError(t, svc.Reserve(ctx, showtimeID, seatA, bookingID))
	require.NoError(t, svc.Reserve(ctx, showtimeID, seatB, bookingID))
	require.NoError(t, svc.Reserve(ctx, showtimeID, uuid.New(), uuid.New()))

	released, err := svc.ReleaseForBooking(ctx, bookingID)
	require.NoError(t, err)
	assert.Equal(t, 2, released)

	// Both of this booking's seats are claimable again
	require.NoError(t, svc.Reserve(ctx, showtimeID, seatA, uuid.New()))
	require.NoError(t, svc.Reserve(ctx, showtimeID, seatB, uuid.New()))
}

func TestReleaseOrphans(t *testing.T) {
	ctx := context.Background()
	showtimeID := uuid.New()
	seatID := uuid.New()

	repo := newFakeRepo()
	svc := NewService(repo, nil, time.Second)

	// A row holding a seat with no live booking attached
	repo.rows[seatKey{showtimeID, seatID}] = &SeatReservation{
		ID:         uuid.New(),
		ShowtimeID: showtimeID,
		SeatID:     seatID,
		Status:     StatusHeld,
	}

	repaired, err := svc.ReleaseOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	require.NoError(t, svc.Reserve(ctx, showtimeID, seatID, uuid.New()))
}
