package order

import (
	"context"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
)

// StatusStat is one row of the admin stats report.
type StatusStat struct {
	Status       domain.OrderStatus `json:"status"`
	Count        int64              `json:"count"`
	RevenueCents int64              `json:"revenueCents"`
}

// Repository persists orders, their immutable item snapshots and the
// append-only status history.
type Repository interface {
	// Create inserts the order and all of its item snapshots inside the
	// caller's transaction.
	Create(ctx context.Context, q db.Querier, o *domain.Order) error

	// LockByID takes the order row's exclusive lock and returns it without
	// items. Status mutations must go through a locked read.
	LockByID(ctx context.Context, q db.Querier, orderID string) (*domain.Order, error)

	// GetForUser loads an order with items, scoped to its owner; foreign
	// orders surface as domain.ErrNotFound.
	GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)

	// ListItems returns the order's snapshots inside the caller's
	// transaction (used when releasing reservations on cancel).
	ListItems(ctx context.Context, q db.Querier, orderID string) ([]domain.OrderItem, error)

	// UpdateStatus writes the new status. It does not validate the
	// transition; that is the order service's job.
	UpdateStatus(ctx context.Context, q db.Querier, orderID string, status domain.OrderStatus) error

	// AppendHistory adds one audit row. History is never updated or deleted.
	AppendHistory(ctx context.Context, q db.Querier, h domain.OrderStatusHistory) error
	ListHistory(ctx context.Context, orderID string) ([]domain.OrderStatusHistory, error)

	// Admin reads.
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	List(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error)
	Stats(ctx context.Context) ([]StatusStat, error)
}
