package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	showtimes map[uuid.UUID]*Showtime
	roomSeats map[uuid.UUID][]Seat
}

func (r *fakeRepo) GetShowtimeByID(_ context.Context, id uuid.UUID) (*Showtime, error) {
	if showtime, ok := r.showtimes[id]; ok {
		return showtime, nil
	}
	return nil, ErrShowtimeNotFound
}

func (r *fakeRepo) ListUpcomingShowtimes(_ context.Context, limit, offset int) ([]Showtime, error) {
	var list []Showtime
	for _, showtime := range r.showtimes {
		list = append(list, *showtime)
	}
	return list, nil
}

func (r *fakeRepo) GetSeatsByIDs(_ context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	return nil, nil
}

func (r *fakeRepo) GetSeatsByRoomID(_ context.Context, roomID uuid.UUID) ([]Seat, error) {
	return r.roomSeats[roomID], nil
}

func (r *fakeRepo) CreateMovie(context.Context, *Movie) error       { return nil }
func (r *fakeRepo) CreateRoom(context.Context, *Room) error         { return nil }
func (r *fakeRepo) CreateSeats(context.Context, []Seat) error       { return nil }
func (r *fakeRepo) CreateShowtime(context.Context, *Showtime) error { return nil }

type fakeAvailability struct {
	available []uuid.UUID
}

func (a *fakeAvailability) ListAvailable(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return a.available, nil
}

func TestShowtimeSeats(t *testing.T) {
	ctx := context.Background()
	roomID := uuid.New()
	showtimeID := uuid.New()
	seatA := uuid.New()
	seatB := uuid.New()

	repo := &fakeRepo{
		showtimes: map[uuid.UUID]*Showtime{
			showtimeID: {
				ID:       showtimeID,
				RoomID:   roomID,
				StartsAt: time.Now().Add(time.Hour),
				Status:   "SCHEDULED",
			},
		},
		roomSeats: map[uuid.UUID][]Seat{
			roomID: {
				{ID: seatA, RoomID: roomID, Label: "A1", Price: 90000},
				{ID: seatB, RoomID: roomID, Label: "A2", Price: 90000},
			},
		},
	}

	t.Run("marks held seats unavailable", func(t *testing.T) {
		svc := NewService(repo, &fakeAvailability{available: []uuid.UUID{seatB}})

		seats, err := svc.ShowtimeSeats(ctx, showtimeID)
		require.NoError(t, err)
		require.Len(t, seats, 2)

		byID := map[uuid.UUID]bool{}
		for _, seat := range seats {
			byID[seat.ID] = seat.Available
		}
		assert.False(t, byID[seatA])
		assert.True(t, byID[seatB])
	})

	t.Run("unknown showtime", func(t *testing.T) {
		svc := NewService(repo, &fakeAvailability{})

		_, err := svc.ShowtimeSeats(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrShowtimeNotFound)
	})
}

func TestIsBookable(t *testing.T) {
	now := time.Now()
	showtime := &Showtime{Status: "SCHEDULED", StartsAt: now.Add(time.Hour)}

	assert.True(t, showtime.IsBookable(now))
	assert.False(t, showtime.IsBookable(now.Add(2*time.Hour)))

	showtime.Status = "CANCELLED"
	assert.False(t, showtime.IsBookable(now))
}
