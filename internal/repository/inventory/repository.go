package inventory

import (
	"context"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
)

// Repository is the inventory ledger. LockForUpdate, Reserve and Release take
// the surrounding transaction's Querier: mutating reservation counts outside
// a transaction that holds the row lock invites the lost-update race where
// two checkouts both read stale availability and both succeed.
type Repository interface {
	// Get reads the record without locking. Advisory use only (UI display);
	// the value may be stale by the time it is acted on.
	Get(ctx context.Context, variantID string) (*domain.InventoryRecord, error)

	// LockForUpdate acquires the exclusive row lock for the rest of the
	// transaction and returns the now-current record.
	LockForUpdate(ctx context.Context, q db.Querier, variantID string) (*domain.InventoryRecord, error)

	// Reserve increments reserved by qty. The row must already be locked in
	// this transaction and availability checked; the SQL still refuses to
	// move reserved past stock as a second line of defence.
	Reserve(ctx context.Context, q db.Querier, variantID string, qty int64) error

	// Release decrements reserved by qty, never below zero. A shortfall means
	// reservation accounting is broken and surfaces as an invariant error,
	// not a user-facing one.
	Release(ctx context.Context, q db.Querier, variantID string, qty int64) error

	// SetStock upserts the physical stock level for a variant (seed/import).
	SetStock(ctx context.Context, variantID string, stock int64) error
}
