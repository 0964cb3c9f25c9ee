package discounts

import (
	"context"
	"errors"

	"cinely/internal/shared/txn"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*DiscountInstrument, error)
	CountUsageByUser(ctx context.Context, instrumentID uuid.UUID, userID uuid.UUID) (int64, error)

	// DecrementRemaining is the single conditional operation that decides a
	// redemption: it reports whether exactly one row was claimed.
	DecrementRemaining(ctx context.Context, code string, orderAmount int64) (bool, error)
	CreateUsage(ctx context.Context, usage *DiscountUsage) error

	// Seeding helper
	Create(ctx context.Context, instrument *DiscountInstrument) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByCode(ctx context.Context, code string) (*DiscountInstrument, error) {
	var instrument DiscountInstrument
	err := txn.FromContext(ctx, r.db).
		Where("code = ?", code).
		First(&instrument).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &instrument, nil
}

func (r *repository) CountUsageByUser(ctx context.Context, instrumentID uuid.UUID, userID uuid.UUID) (int64, error) {
	var count int64
	err := txn.FromContext(ctx, r.db).
		Model(&DiscountUsage{}).
		Where("instrument_id = ? AND user_id = ?", instrumentID, userID).
		Count(&count).Error
	return count, err
}

// DecrementRemaining claims one unit of the instrument. Every constraint
// (active, inside validity window, quantity left, minimum order amount)
// lives in the WHERE clause so the decrement and the checks are one atomic
// statement; concurrent claims on the last unit leave exactly one winner.
func (r *repository) DecrementRemaining(ctx context.Context, code string, orderAmount int64) (bool, error) {
	res := txn.FromContext(ctx, r.db).Exec(`
		UPDATE discount_instruments
		SET remaining_quantity = remaining_quantity - 1,
		    used_quantity = used_quantity + 1,
		    updated_at = NOW()
		WHERE code = ?
		AND status = 'ACTIVE'
		AND remaining_quantity > 0
		AND valid_from <= NOW() AND valid_until >= NOW()
		AND min_order_amount <= ?`,
		code, orderAmount)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateUsage(ctx context.Context, usage *DiscountUsage) error {
	return txn.FromContext(ctx, r.db).Create(usage).Error
}

func (r *repository) Create(ctx context.Context, instrument *DiscountInstrument) error {
	return txn.FromContext(ctx, r.db).Create(instrument).Error
}
