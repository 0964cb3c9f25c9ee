package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"cinely/internal/catalog"
	"cinely/internal/discounts"
	"cinely/internal/shared/config"
	"cinely/internal/shared/database"
)

type Seeder struct {
	db       *database.DB
	catalog  catalog.Repository
	discount discounts.Repository
}

func main() {
	fmt.Println("Starting Cinely database seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{
		db:       db,
		catalog:  catalog.NewRepository(db.GetPostgreSQL()),
		discount: discounts.NewRepository(db.GetPostgreSQL()),
	}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed, database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"tickets",
		"discount_usages",
		"booking_seats",
		"bookings",
		"orders",
		"seat_reservations",
		"discount_instruments",
		"showtimes",
		"seats",
		"rooms",
		"movies",
	}
	for _, table := range tables {
		if err := s.db.GetPostgreSQL().Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedAll populates a small catalog plus a few discount codes
func (s *Seeder) SeedAll(ctx context.Context) error {
	movies := []catalog.Movie{
		{ID: uuid.New(), Title: "The Long Night", DurationMin: 128, Rating: "PG-13"},
		{ID: uuid.New(), Title: "Paper Lanterns", DurationMin: 104, Rating: "PG"},
		{ID: uuid.New(), Title: "Last Transit", DurationMin: 141, Rating: "R"},
	}
	for i := range movies {
		if err := s.catalog.CreateMovie(ctx, &movies[i]); err != nil {
			return err
		}
	}
	fmt.Printf("  seeded %d movies\n", len(movies))

	rooms := []catalog.Room{
		{ID: uuid.New(), Name: "Room 1"},
		{ID: uuid.New(), Name: "Room 2"},
	}
	for i := range rooms {
		if err := s.catalog.CreateRoom(ctx, &rooms[i]); err != nil {
			return err
		}
	}

	// 8 rows x 10 seats per room; last row is VIP
	for _, room := range rooms {
		var seats []catalog.Seat
		for row := 0; row < 8; row++ {
			for num := 1; num <= 10; num++ {
				seatType := "STANDARD"
				price := int64(90000)
				if row == 7 {
					seatType = "VIP"
					price = 150000
				}
				seats = append(seats, catalog.Seat{
					ID:     uuid.New(),
					RoomID: room.ID,
					Label:  fmt.Sprintf("%c%d", 'A'+row, num),
					Type:   seatType,
					Price:  price,
				})
			}
		}
		if err := s.catalog.CreateSeats(ctx, seats); err != nil {
			return err
		}
	}
	fmt.Printf("  seeded %d rooms with seats\n", len(rooms))

	now := time.Now()
	showtimeCount := 0
	for dayOffset := 1; dayOffset <= 3; dayOffset++ {
		for i, movie := range movies {
			room := rooms[i%len(rooms)]
			day := now.AddDate(0, 0, dayOffset)
			start := time.Date(day.Year(), day.Month(), day.Day(), 15+3*i, 0, 0, 0, day.Location())
			showtime := catalog.Showtime{
				ID:       uuid.New(),
				MovieID:  movie.ID,
				RoomID:   room.ID,
				StartsAt: start,
				EndsAt:   start.Add(time.Duration(movie.DurationMin) * time.Minute),
				Status:   "SCHEDULED",
			}
			if err := s.catalog.CreateShowtime(ctx, &showtime); err != nil {
				return err
			}
			showtimeCount++
		}
	}
	fmt.Printf("  seeded %d showtimes\n", showtimeCount)

	validFrom := now.Add(-24 * time.Hour)
	validUntil := now.AddDate(0, 1, 0)
	instruments := []discounts.DiscountInstrument{
		{
			ID:                uuid.New(),
			Code:              "OPENING10",
			Name:              "Opening week 10% off",
			DiscountType:      discounts.TypePercent,
			DiscountValue:     10,
			TotalQuantity:     100,
			RemainingQuantity: 100,
			ValidFrom:         validFrom,
			ValidUntil:        validUntil,
			Status:            discounts.StatusActive,
		},
		{
			ID:                uuid.New(),
			Code:              "FLAT50K",
			Name:              "Flat 50k off orders over 200k",
			DiscountType:      discounts.TypeFixed,
			DiscountValue:     50000,
			TotalQuantity:     50,
			RemainingQuantity: 50,
			MinOrderAmount:    200000,
			ValidFrom:         validFrom,
			ValidUntil:        validUntil,
			Status:            discounts.StatusActive,
		},
	}
	for i := range instruments {
		if err := s.discount.Create(ctx, &instruments[i]); err != nil {
			return err
		}
	}
	fmt.Printf("  seeded %d discount codes\n", len(instruments))

	return nil
}
