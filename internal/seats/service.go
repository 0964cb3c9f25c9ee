package seats

import (
	"context"
	"fmt"
	"time"

	"cinely/pkg/cache"

	"github.com/google/uuid"
)

// Service is the seat inventory ledger: the sole source of truth for seat
// ownership per (showtime, seat) pair. All mutation goes through the
// repository's conditional writes; this layer adds snapshot caching.
type Service interface {
	Reserve(ctx context.Context, showtimeID, seatID, bookingID uuid.UUID) error
	Finalize(ctx context.Context, showtimeID, seatID, bookingID uuid.UUID) error
	Release(ctx context.Context, showtimeID, seatID uuid.UUID) error
	ReleaseForBooking(ctx context.Context, bookingID uuid.UUID) (int, error)
	ReleaseOrphans(ctx context.Context) (int, error)
	ListAvailable(ctx context.Context, showtimeID uuid.UUID) ([]uuid.UUID, error)
}

type service struct {
	repo        Repository
	cache       cache.Service
	snapshotTTL time.Duration
}

// NewService creates a new seat ledger instance. cacheService may be nil;
// the ledger then serves availability straight from the database.
func NewService(repo Repository, cacheService cache.Service, snapshotTTL time.Duration) Service {
	return &service{
		repo:        repo,
		cache:       cacheService,
		snapshotTTL: snapshotTTL,
	}
}

func availableSeatsKey(showtimeID uuid.UUID) string {
	return fmt.Sprintf("cinely:seats:available:%s", showtimeID)
}

func (s *service) Reserve(ctx context.Context, showtimeID, seatID, bookingID uuid.UUID) error {
	if err := s.repo.Reserve(ctx, showtimeID, seatID, bookingID); err != nil {
		return err
	}
	s.invalidate(ctx, showtimeID)
	return nil
}

func (s *service) Finalize(ctx context.Context, showtimeID, seatID, bookingID uuid.UUID) error {
	return s.repo.Finalize(ctx, showtimeID, seatID, bookingID)
}

func (s *service) Release(ctx context.Context, showtimeID, seatID uuid.UUID) error {
	if err := s.repo.Release(ctx, showtimeID, seatID); err != nil {
		return err
	}
	s.invalidate(ctx, showtimeID)
	return nil
}

func (s *service) ReleaseForBooking(ctx context.Context, bookingID uuid.UUID) (int, error) {
	showtimeIDs, err := s.repo.ReleaseForBooking(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	s.invalidateAll(ctx, showtimeIDs)
	return len(showtimeIDs), nil
}

func (s *service) ReleaseOrphans(ctx context.Context) (int, error) {
	showtimeIDs, err := s.repo.ReleaseOrphans(ctx)
	if err != nil {
		return 0, err
	}
	s.invalidateAll(ctx, showtimeIDs)
	return len(showtimeIDs), nil
}

// ListAvailable returns an eventually-consistent snapshot for display.
// Reservation decisions never consult it.
func (s *service) ListAvailable(ctx context.Context, showtimeID uuid.UUID) ([]uuid.UUID, error) {
	if s.cache == nil {
		return s.repo.ListAvailableSeatIDs(ctx, showtimeID)
	}

	var seatIDs []uuid.UUID
	err := s.cache.GetOrSet(ctx, availableSeatsKey(showtimeID), s.snapshotTTL,
		func() (interface{}, error) {
			return s.repo.ListAvailableSeatIDs(ctx, showtimeID)
		}, &seatIDs)
	if err != nil {
		// Cache trouble degrades to a direct read
		return s.repo.ListAvailableSeatIDs(ctx, showtimeID)
	}
	return seatIDs, nil
}

func (s *service) invalidate(ctx context.Context, showtimeID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, availableSeatsKey(showtimeID))
}

func (s *service) invalidateAll(ctx context.Context, showtimeIDs []uuid.UUID) {
	seen := make(map[uuid.UUID]struct{}, len(showtimeIDs))
	for _, id := range showtimeIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		s.invalidate(ctx, id)
	}
}
