package tickets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// SeatShare is one seat's slice of an order: the seat plus the price
// attributed to its ticket. Price share is the per-seat catalog price.
type SeatShare struct {
	SeatID uuid.UUID
	Price  int64
}

// Service mints tickets for confirmed bookings
type Service interface {
	// IssueForBooking mints one ticket per seat. Idempotent: re-invocation
	// after a partial failure never duplicates tickets for seats already
	// issued.
	IssueForBooking(ctx context.Context, orderID, bookingID uuid.UUID, shares []SeatShare) ([]Ticket, error)

	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]Ticket, error)
}

type service struct {
	repo Repository
}

// NewService creates a new ticket issuance instance
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) IssueForBooking(ctx context.Context, orderID, bookingID uuid.UUID, shares []SeatShare) ([]Ticket, error) {
	issued := make([]Ticket, 0, len(shares))

	for _, share := range shares {
		token, err := generateToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate ticket token: %w", err)
		}

		ticket := &Ticket{
			ID:        uuid.New(),
			OrderID:   orderID,
			BookingID: bookingID,
			SeatID:    share.SeatID,
			Token:     token,
			Price:     share.Price,
			Status:    StatusValid,
		}

		created, err := s.repo.InsertIfAbsent(ctx, ticket)
		if err != nil {
			return nil, fmt.Errorf("failed to issue ticket for seat %s: %w", share.SeatID, err)
		}
		if !created {
			existing, err := s.repo.GetByOrderAndSeat(ctx, orderID, share.SeatID)
			if err != nil {
				return nil, fmt.Errorf("failed to load existing ticket for seat %s: %w", share.SeatID, err)
			}
			if existing == nil {
				return nil, fmt.Errorf("ticket for seat %s neither created nor found", share.SeatID)
			}
			issued = append(issued, *existing)
			continue
		}
		issued = append(issued, *ticket)
	}

	return issued, nil
}

func (s *service) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]Ticket, error) {
	return s.repo.GetByOrderID(ctx, orderID)
}

// generateToken mints a unique cryptographically-random redemption token
func generateToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
