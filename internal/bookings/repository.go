package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cinely/internal/shared/txn"
)

type Repository interface {
	CreateOrder(ctx context.Context, order *Order) error
	CreateBooking(ctx context.Context, booking *Booking) error

	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetBookingsByOrderID(ctx context.Context, orderID uuid.UUID) ([]Booking, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByTxnRef(ctx context.Context, txnRef string) (*Order, error)
	ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error)

	// MarkConfirmed moves a PENDING booking to CONFIRMED and records the
	// payment reference. Returns false when the booking was no longer
	// PENDING, which means a concurrent transition won.
	MarkConfirmed(ctx context.Context, id uuid.UUID, paymentRef string) (bool, error)

	// MarkTerminal moves a PENDING booking to CANCELLED or EXPIRED.
	MarkTerminal(ctx context.Context, id uuid.UUID, target Status) (bool, error)

	// ListStalePendingIDs returns up to limit PENDING bookings created
	// before cutoff, oldest first.
	ListStalePendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)

	MarkOrderPaid(ctx context.Context, txnRef string) (bool, error)
	MarkOrderFailed(ctx context.Context, txnRef string) (bool, error)
	MarkOrderReconcile(ctx context.Context, txnRef string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	return txn.FromContext(ctx, r.db)
}

func (r *repository) CreateOrder(ctx context.Context, order *Order) error {
	if err := r.conn(ctx).WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	if err := r.conn(ctx).WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.conn(ctx).WithContext(ctx).
		Preload("BookingSeats").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) GetBookingsByOrderID(ctx context.Context, orderID uuid.UUID) ([]Booking, error) {
	var list []Booking
	err := r.conn(ctx).WithContext(ctx).
		Preload("BookingSeats").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for order: %w", err)
	}
	return list, nil
}

func (r *repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	var order Order
	err := r.conn(ctx).WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

func (r *repository) GetOrderByTxnRef(ctx context.Context, txnRef string) (*Order, error) {
	var order Order
	err := r.conn(ctx).WithContext(ctx).Where("txn_ref = ?", txnRef).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by txn ref: %w", err)
	}
	return &order, nil
}

func (r *repository) ListBookingsByUser(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var list []Booking
	err := r.conn(ctx).WithContext(ctx).
		Preload("BookingSeats").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	return list, nil
}

func (r *repository) MarkConfirmed(ctx context.Context, id uuid.UUID, paymentRef string) (bool, error) {
	result := r.conn(ctx).WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":      StatusConfirmed,
			"payment_ref": paymentRef,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to confirm booking: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) MarkTerminal(ctx context.Context, id uuid.UUID, target Status) (bool, error) {
	if target != StatusCancelled && target != StatusExpired {
		return false, fmt.Errorf("invalid terminal status: %s", target)
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":     target,
		"updated_at": now,
	}
	if target == StatusCancelled {
		updates["cancelled_at"] = now
	}
	result := r.conn(ctx).WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark booking %s: %w", target, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) ListStalePendingIDs(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.conn(ctx).WithContext(ctx).
		Model(&Booking{}).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending bookings: %w", err)
	}
	return ids, nil
}

func (r *repository) MarkOrderPaid(ctx context.Context, txnRef string) (bool, error) {
	return r.updateOrderStatus(ctx, txnRef, OrderStatusPaid, []OrderStatus{OrderStatusPending, OrderStatusFailed})
}

func (r *repository) MarkOrderFailed(ctx context.Context, txnRef string) (bool, error) {
	return r.updateOrderStatus(ctx, txnRef, OrderStatusFailed, []OrderStatus{OrderStatusPending})
}

func (r *repository) MarkOrderReconcile(ctx context.Context, txnRef string) (bool, error) {
	return r.updateOrderStatus(ctx, txnRef, OrderStatusReconcile, []OrderStatus{OrderStatusPending, OrderStatusFailed})
}

func (r *repository) updateOrderStatus(ctx context.Context, txnRef string, target OrderStatus, from []OrderStatus) (bool, error) {
	result := r.conn(ctx).WithContext(ctx).
		Model(&Order{}).
		Where("txn_ref = ? AND status IN ?", txnRef, from).
		Updates(map[string]interface{}{
			"status":     target,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark order %s: %w", target, result.Error)
	}
	return result.RowsAffected == 1, nil
}
