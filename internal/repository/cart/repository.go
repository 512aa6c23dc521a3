package cart

import (
	"context"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
)

type UpsertItemInput struct {
	CartID         string
	VariantID      string
	Quantity       int64
	UnitPriceCents int64
	DiscountBps    int64
}

type UpdateItemInput struct {
	ItemID         string
	Quantity       int64
	UnitPriceCents int64
	DiscountBps    int64
}

// Repository persists carts and their items. Methods taking a db.Querier are
// meant to run inside the caller's transaction; the service layer owns the
// transaction boundary and the inventory locks taken within it.
type Repository interface {
	// GetOrCreate returns the user's 1:1 cart, creating an empty one on
	// first touch.
	GetOrCreate(ctx context.Context, q db.Querier, userID string) (*domain.Cart, error)

	// GetByUser loads the cart with items joined against the catalog for
	// display. Returns domain.ErrNotFound when the user has no cart yet.
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)

	// LockByUser takes the cart row's exclusive lock, serialising concurrent
	// requests from the same user (double-submit checkout).
	LockByUser(ctx context.Context, q db.Querier, userID string) (*domain.Cart, error)

	// ListItems returns the cart's items with denormalised catalog fields.
	ListItems(ctx context.Context, q db.Querier, cartID string) ([]domain.CartItem, error)

	// GetItemForUser loads one item and verifies it belongs to the user's
	// cart; foreign items surface as domain.ErrNotFound.
	GetItemForUser(ctx context.Context, q db.Querier, userID, itemID string) (*domain.CartItem, error)

	// UpsertItem inserts the (cart, variant) row or adds to its quantity,
	// refreshing the price snapshot either way.
	UpsertItem(ctx context.Context, q db.Querier, in UpsertItemInput) error

	// UpdateItem sets quantity and refreshes the price snapshot.
	UpdateItem(ctx context.Context, q db.Querier, in UpdateItemInput) error

	// RefreshItemPrice rewrites only the snapshot fields, recomputing the
	// line total from the stored quantity.
	RefreshItemPrice(ctx context.Context, q db.Querier, itemID string, unitPriceCents, discountBps int64) error

	DeleteItem(ctx context.Context, q db.Querier, itemID string) error
	ClearItems(ctx context.Context, q db.Querier, cartID string) error

	// UpdateTotals persists the four derived aggregate fields.
	UpdateTotals(ctx context.Context, q db.Querier, cartID string, totals domain.CartTotals) error
}
