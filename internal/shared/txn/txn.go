// Package txn carries a GORM transaction through context so that the
// four-step booking confirmation (seat finalize, discount redeem, ticket
// issuance, status update) can span repositories from several packages
// while remaining a single atomic unit.
package txn

import (
	"context"

	"gorm.io/gorm"
)

type ctxKey struct{}

// WithTx returns a context carrying the given transaction handle
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, ctxKey{}, tx)
}

// FromContext returns the transaction carried by ctx, or fallback when the
// caller is not running inside a transaction
func FromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(ctxKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}

// Manager runs a function inside a database transaction
type Manager interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Transactor starts transactions and injects them into the context handed
// to fn. Nested calls reuse the surrounding transaction.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(ctxKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
