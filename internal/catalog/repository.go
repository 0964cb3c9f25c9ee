package catalog

import (
	"context"
	"errors"

	"cinely/internal/shared/txn"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrShowtimeNotFound is returned when a showtime id does not exist
var ErrShowtimeNotFound = errors.New("showtime not found")

type Repository interface {
	// Showtime reads
	GetShowtimeByID(ctx context.Context, id uuid.UUID) (*Showtime, error)
	ListUpcomingShowtimes(ctx context.Context, limit, offset int) ([]Showtime, error)

	// Seat reads
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error)
	GetSeatsByRoomID(ctx context.Context, roomID uuid.UUID) ([]Seat, error)

	// Seeding helpers
	CreateMovie(ctx context.Context, movie *Movie) error
	CreateRoom(ctx context.Context, room *Room) error
	CreateSeats(ctx context.Context, seats []Seat) error
	CreateShowtime(ctx context.Context, showtime *Showtime) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetShowtimeByID(ctx context.Context, id uuid.UUID) (*Showtime, error) {
	var showtime Showtime
	err := txn.FromContext(ctx, r.db).
		Preload("Movie").
		Preload("Room").
		Where("id = ?", id).
		First(&showtime).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &showtime, nil
}

func (r *repository) ListUpcomingShowtimes(ctx context.Context, limit, offset int) ([]Showtime, error) {
	if limit <= 0 {
		limit = 20
	}
	var showtimes []Showtime
	err := txn.FromContext(ctx, r.db).
		Preload("Movie").
		Preload("Room").
		Where("status = ? AND starts_at > NOW()", "SCHEDULED").
		Order("starts_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&showtimes).Error
	return showtimes, err
}

func (r *repository) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := txn.FromContext(ctx, r.db).
		Where("id IN ?", seatIDs).
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByRoomID(ctx context.Context, roomID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := txn.FromContext(ctx, r.db).
		Where("room_id = ?", roomID).
		Order("label ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) CreateMovie(ctx context.Context, movie *Movie) error {
	return txn.FromContext(ctx, r.db).Create(movie).Error
}

func (r *repository) CreateRoom(ctx context.Context, room *Room) error {
	return txn.FromContext(ctx, r.db).Create(room).Error
}

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return txn.FromContext(ctx, r.db).Create(&seats).Error
}

func (r *repository) CreateShowtime(ctx context.Context, showtime *Showtime) error {
	return txn.FromContext(ctx, r.db).Create(showtime).Error
}
