package tickets

import (
	"context"
	"errors"

	"cinely/internal/shared/txn"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent creates the ticket unless one already exists for its
	// (order, seat) pair. Reports whether a row was created.
	InsertIfAbsent(ctx context.Context, ticket *Ticket) (bool, error)
	GetByOrderAndSeat(ctx context.Context, orderID, seatID uuid.UUID) (*Ticket, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]Ticket, error)
	GetByToken(ctx context.Context, token string) (*Ticket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertIfAbsent(ctx context.Context, ticket *Ticket) (bool, error) {
	res := txn.FromContext(ctx, r.db).Exec(`
		INSERT INTO tickets (id, order_id, booking_id, seat_id, token, price, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (order_id, seat_id) DO NOTHING`,
		ticket.ID, ticket.OrderID, ticket.BookingID, ticket.SeatID,
		ticket.Token, ticket.Price, ticket.Status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) GetByOrderAndSeat(ctx context.Context, orderID, seatID uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := txn.FromContext(ctx, r.db).
		Where("order_id = ? AND seat_id = ?", orderID, seatID).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]Ticket, error) {
	var ticketList []Ticket
	err := txn.FromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&ticketList).Error
	return ticketList, err
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Ticket, error) {
	var ticket Ticket
	err := txn.FromContext(ctx, r.db).
		Where("token = ?", token).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}
