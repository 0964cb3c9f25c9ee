package discounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Quote is the price preview produced by Validate
type Quote struct {
	Code           string `json:"code"`
	OriginalAmount int64  `json:"original_amount"`
	DiscountAmount int64  `json:"discount_amount"`
	FinalAmount    int64  `json:"final_amount"`
}

// Service is the discount redemption ledger
type Service interface {
	// Validate is a read-only pre-flight check used for price preview.
	// It mutates nothing; a quote is not a claim on the instrument.
	Validate(ctx context.Context, code string, orderAmount int64, userID *uuid.UUID) (*Quote, error)

	// Redeem claims one unit and records the usage. It must run inside the
	// same transaction as the booking confirmation: a booking never ends up
	// CONFIRMED with a requested discount that was not actually redeemed.
	Redeem(ctx context.Context, code string, userID *uuid.UUID, bookingID uuid.UUID, originalAmount int64) (*DiscountUsage, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new discount ledger instance
func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *service) Validate(ctx context.Context, code string, orderAmount int64, userID *uuid.UUID) (*Quote, error) {
	instrument, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load discount: %w", err)
	}
	if err := s.check(ctx, instrument, code, orderAmount, userID); err != nil {
		return nil, err
	}

	discountAmount := instrument.Amount(orderAmount)
	return &Quote{
		Code:           code,
		OriginalAmount: orderAmount,
		DiscountAmount: discountAmount,
		FinalAmount:    orderAmount - discountAmount,
	}, nil
}

func (s *service) Redeem(ctx context.Context, code string, userID *uuid.UUID, bookingID uuid.UUID, originalAmount int64) (*DiscountUsage, error) {
	instrument, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to load discount: %w", err)
	}
	if instrument == nil {
		return nil, &DiscountError{Code: code, Reason: ReasonNotFound}
	}

	if userID != nil {
		used, err := s.repo.CountUsageByUser(ctx, instrument.ID, *userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check prior usage: %w", err)
		}
		if used > 0 {
			return nil, &DiscountError{Code: code, Reason: ReasonAlreadyUsed}
		}
	}

	claimed, err := s.repo.DecrementRemaining(ctx, code, originalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to claim discount: %w", err)
	}
	if !claimed {
		// The decrement refused; re-read only to name the reason
		return nil, s.classifyRefusal(ctx, code, originalAmount, userID)
	}

	discountAmount := instrument.Amount(originalAmount)
	usage := &DiscountUsage{
		InstrumentID:   instrument.ID,
		UserID:         userID,
		BookingID:      bookingID,
		OriginalAmount: originalAmount,
		DiscountAmount: discountAmount,
		FinalAmount:    originalAmount - discountAmount,
	}
	if err := s.repo.CreateUsage(ctx, usage); err != nil {
		return nil, fmt.Errorf("failed to record discount usage: %w", err)
	}
	return usage, nil
}

// check classifies an instrument's state against a prospective order
func (s *service) check(ctx context.Context, instrument *DiscountInstrument, code string, orderAmount int64, userID *uuid.UUID) error {
	if instrument == nil {
		return &DiscountError{Code: code, Reason: ReasonNotFound}
	}
	if instrument.Status != StatusActive {
		return &DiscountError{Code: code, Reason: ReasonInactive}
	}
	if !instrument.WithinWindow(s.now()) {
		return &DiscountError{Code: code, Reason: ReasonExpired}
	}
	if instrument.RemainingQuantity <= 0 {
		return &DiscountError{Code: code, Reason: ReasonExhausted}
	}
	if orderAmount < instrument.MinOrderAmount {
		return &DiscountError{Code: code, Reason: ReasonBelowMinimum}
	}
	if userID != nil {
		used, err := s.repo.CountUsageByUser(ctx, instrument.ID, *userID)
		if err != nil {
			return fmt.Errorf("failed to check prior usage: %w", err)
		}
		if used > 0 {
			return &DiscountError{Code: code, Reason: ReasonAlreadyUsed}
		}
	}
	return nil
}

func (s *service) classifyRefusal(ctx context.Context, code string, orderAmount int64, userID *uuid.UUID) error {
	instrument, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to reload discount: %w", err)
	}
	if err := s.check(ctx, instrument, code, orderAmount, userID); err != nil {
		return err
	}
	// The instrument looks fine now; we lost a race for the last unit
	return &DiscountError{Code: code, Reason: ReasonExhausted}
}
