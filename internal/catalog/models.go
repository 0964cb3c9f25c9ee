package catalog

import (
	"time"

	"github.com/google/uuid"
)

// All monetary amounts in this service are integer minor units (e.g. cents,
// or whole dong for zero-decimal currencies). The payment gateway boundary
// converts to whatever the provider expects.

// Movie is a static catalog entry
type Movie struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	DurationMin int       `gorm:"not null" json:"duration_min"`
	Rating      string    `gorm:"type:varchar(10)" json:"rating"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Room is a screening room holding a fixed seat layout
type Room struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Seat is a specific physical seat in a room, with a type and price
type Seat struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RoomID    uuid.UUID `gorm:"type:uuid;index;not null" json:"room_id"`
	Label     string    `gorm:"type:varchar(10);not null" json:"label"`
	Type      string    `gorm:"type:varchar(20);check:type IN ('STANDARD', 'VIP', 'COUPLE');default:'STANDARD'" json:"type"`
	Price     int64     `gorm:"not null" json:"price"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID;constraint:OnDelete:RESTRICT;"`
}

// Showtime is a scheduled screening of a movie in a specific room.
// It is immutable once the screening begins.
type Showtime struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MovieID   uuid.UUID `gorm:"type:uuid;index;not null" json:"movie_id"`
	RoomID    uuid.UUID `gorm:"type:uuid;index;not null" json:"room_id"`
	StartsAt  time.Time `gorm:"not null;index" json:"starts_at"`
	EndsAt    time.Time `gorm:"not null" json:"ends_at"`
	Status    string    `gorm:"type:varchar(20);check:status IN ('SCHEDULED', 'SCREENING', 'FINISHED', 'CANCELLED');default:'SCHEDULED'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Movie *Movie `json:"movie,omitempty" gorm:"foreignKey:MovieID;constraint:OnDelete:RESTRICT;"`
	Room  *Room  `json:"room,omitempty" gorm:"foreignKey:RoomID;constraint:OnDelete:RESTRICT;"`
}

// TableName sets the table name for Movie
func (Movie) TableName() string {
	return "movies"
}

// TableName sets the table name for Room
func (Room) TableName() string {
	return "rooms"
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

// TableName sets the table name for Showtime
func (Showtime) TableName() string {
	return "showtimes"
}

// IsBookable reports whether new bookings may be taken for the showtime
func (s *Showtime) IsBookable(now time.Time) bool {
	return s.Status == "SCHEDULED" && now.Before(s.StartsAt)
}
