package catalog

import (
	"context"

	"github.com/google/uuid"
)

// AvailabilityLister is implemented by the seats service. Declared here to
// avoid a circular dependency between the packages.
type AvailabilityLister interface {
	ListAvailable(ctx context.Context, showtimeID uuid.UUID) ([]uuid.UUID, error)
}

// SeatAvailability is one seat of a showtime's room with its live
// availability flag
type SeatAvailability struct {
	Seat
	Available bool `json:"available"`
}

type Service interface {
	GetShowtime(ctx context.Context, id uuid.UUID) (*Showtime, error)
	ListUpcomingShowtimes(ctx context.Context, limit, offset int) ([]Showtime, error)

	// ShowtimeSeats returns the room's full seat map annotated with live
	// availability for the given showtime.
	ShowtimeSeats(ctx context.Context, showtimeID uuid.UUID) ([]SeatAvailability, error)
}

type service struct {
	repo         Repository
	availability AvailabilityLister
}

func NewService(repo Repository, availability AvailabilityLister) Service {
	return &service{repo: repo, availability: availability}
}

func (s *service) GetShowtime(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	return s.repo.GetShowtimeByID(ctx, id)
}

func (s *service) ListUpcomingShowtimes(ctx context.Context, limit, offset int) ([]Showtime, error) {
	return s.repo.ListUpcomingShowtimes(ctx, limit, offset)
}

func (s *service) ShowtimeSeats(ctx context.Context, showtimeID uuid.UUID) ([]SeatAvailability, error) {
	showtime, err := s.repo.GetShowtimeByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	seats, err := s.repo.GetSeatsByRoomID(ctx, showtime.RoomID)
	if err != nil {
		return nil, err
	}

	availableIDs, err := s.availability.ListAvailable(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	available := make(map[uuid.UUID]struct{}, len(availableIDs))
	for _, id := range availableIDs {
		available[id] = struct{}{}
	}

	result := make([]SeatAvailability, 0, len(seats))
	for _, seat := range seats {
		_, ok := available[seat.ID]
		result = append(result, SeatAvailability{Seat: seat, Available: ok})
	}
	return result, nil
}
