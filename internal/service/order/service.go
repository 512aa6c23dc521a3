package order

import (
	"context"
	"encoding/json"
	"errors"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	cartrepo "storefront-api/internal/repository/cart"
	catalogrepo "storefront-api/internal/repository/catalog"
	inventoryrepo "storefront-api/internal/repository/inventory"
	orderrepo "storefront-api/internal/repository/order"

	"github.com/google/uuid"
)

// Service orchestrates cart-to-order conversion and the order status
// lifecycle. Each operation is one atomic transaction: a failure anywhere
// rolls back every reservation and row touched, so there are never partial
// orders or partial reservations.
type Service struct {
	tx        db.TxRunner
	orders    orderRepo
	carts     cartRepo
	catalog   catalogRepo
	inventory inventoryRepo
	currency  string
}

type orderRepo interface {
	Create(ctx context.Context, q db.Querier, o *domain.Order) error
	LockByID(ctx context.Context, q db.Querier, orderID string) (*domain.Order, error)
	GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ListItems(ctx context.Context, q db.Querier, orderID string) ([]domain.OrderItem, error)
	UpdateStatus(ctx context.Context, q db.Querier, orderID string, status domain.OrderStatus) error
	AppendHistory(ctx context.Context, q db.Querier, h domain.OrderStatusHistory) error
	ListHistory(ctx context.Context, orderID string) ([]domain.OrderStatusHistory, error)
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	List(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error)
	Stats(ctx context.Context) ([]orderrepo.StatusStat, error)
}

type cartRepo interface {
	LockByUser(ctx context.Context, q db.Querier, userID string) (*domain.Cart, error)
	ListItems(ctx context.Context, q db.Querier, cartID string) ([]domain.CartItem, error)
	ClearItems(ctx context.Context, q db.Querier, cartID string) error
	UpdateTotals(ctx context.Context, q db.Querier, cartID string, totals domain.CartTotals) error
}

type catalogRepo interface {
	GetVariant(ctx context.Context, q db.Querier, variantID string) (*domain.Variant, error)
}

type inventoryRepo interface {
	LockForUpdate(ctx context.Context, q db.Querier, variantID string) (*domain.InventoryRecord, error)
	Reserve(ctx context.Context, q db.Querier, variantID string, qty int64) error
	Release(ctx context.Context, q db.Querier, variantID string, qty int64) error
}

func New(tx db.TxRunner, orders orderrepo.Repository, carts cartrepo.Repository, catalog catalogrepo.Repository, inventory inventoryrepo.Repository, currency string) *Service {
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		tx:        tx,
		orders:    orders,
		carts:     carts,
		catalog:   catalog,
		inventory: inventory,
		currency:  currency,
	}
}

// CheckoutInput carries the opaque address payloads supplied by the client.
// They are stored verbatim on the order; the core does not interpret them.
type CheckoutInput struct {
	ShippingAddress json.RawMessage
	BillingAddress  json.RawMessage
}

// Checkout converts the user's cart into a PENDING order. In one transaction
// it locks the cart row (serialising double submits), then per item locks the
// variant's inventory row, verifies availability, reserves the quantity and
// snapshots the catalog state into an immutable order item. Any shortfall
// aborts the whole transaction: no partial order, no partial reservation.
// The cart is emptied on success; stock itself is not decremented here, only
// moved into reserved.
func (s *Service) Checkout(ctx context.Context, userID string, in CheckoutInput) (*domain.Order, error) {
	if len(in.ShippingAddress) == 0 || len(in.BillingAddress) == 0 {
		return nil, errors.New("shipping and billing addresses required")
	}

	orderID := uuid.NewString()

	err := s.tx.InTx(ctx, func(q db.Querier) error {
		cart, err := s.carts.LockByUser(ctx, q, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrEmptyCart
			}
			return err
		}

		items, err := s.carts.ListItems(ctx, q, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyCart
		}

		var subtotal int64
		orderItems := make([]domain.OrderItem, 0, len(items))

		for _, item := range items {
			variant, err := s.catalog.GetVariant(ctx, q, item.VariantID)
			if err != nil {
				return err
			}
			if !variant.Purchasable() {
				return &domain.ProductUnavailableError{VariantID: variant.ID, ProductName: variant.ProductName}
			}

			inv, err := s.inventory.LockForUpdate(ctx, q, item.VariantID)
			if err != nil {
				return err
			}
			if inv.Available() < item.Quantity {
				return &domain.InsufficientStockError{
					VariantID:   variant.ID,
					ProductName: variant.ProductName,
					Size:        variant.Size,
					Requested:   item.Quantity,
					Available:   inv.Available(),
				}
			}

			if err := s.inventory.Reserve(ctx, q, item.VariantID, item.Quantity); err != nil {
				return err
			}

			lineTotal := item.UnitPriceCents * item.Quantity
			subtotal += lineTotal

			orderItems = append(orderItems, domain.OrderItem{
				ProductID:           variant.ProductID,
				ProductName:         variant.ProductName,
				VariantID:           variant.ID,
				VariantSize:         variant.Size,
				VariantSKU:          variant.SKU,
				ImageURL:            variant.PrimaryImageURL,
				UnitPriceCents:      variant.PriceCents,
				DiscountBps:         item.DiscountBps,
				FinalUnitPriceCents: item.UnitPriceCents,
				Quantity:            item.Quantity,
				TotalCents:          lineTotal,
			})
		}

		// Tax, shipping and discount are zero placeholders at checkout;
		// plugging in real engines is an extension point.
		var tax, shipping, discount int64
		total := subtotal + tax + shipping - discount

		order := &domain.Order{
			ID:              orderID,
			UserID:          userID,
			Status:          domain.OrderPending,
			SubtotalCents:   subtotal,
			TaxCents:        tax,
			ShippingCents:   shipping,
			DiscountCents:   discount,
			TotalCents:      total,
			Currency:        s.currency,
			ShippingAddress: in.ShippingAddress,
			BillingAddress:  in.BillingAddress,
			Items:           orderItems,
		}
		if err := s.orders.Create(ctx, q, order); err != nil {
			return err
		}

		if err := s.carts.ClearItems(ctx, q, cart.ID); err != nil {
			return err
		}
		return s.carts.UpdateTotals(ctx, q, cart.ID, domain.CartTotals{})
	})
	if err != nil {
		return nil, err
	}

	return s.orders.GetForUser(ctx, userID, orderID)
}

// Cancel moves a PENDING or CONFIRMED order to CANCELLED and returns every
// reserved unit to the available pool. This is the only path by which
// reserved stock is released short of fulfilment.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	err := s.tx.InTx(ctx, func(q db.Querier) error {
		order, err := s.orders.LockByID(ctx, q, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			// Foreign orders look like missing orders.
			return domain.ErrNotFound
		}
		if !order.CanCancel() {
			return domain.ErrNotCancellable
		}

		items, err := s.orders.ListItems(ctx, q, orderID)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, err := s.inventory.LockForUpdate(ctx, q, item.VariantID); err != nil {
				return err
			}
			if err := s.inventory.Release(ctx, q, item.VariantID, item.Quantity); err != nil {
				return err
			}
		}

		return s.transition(ctx, q, order, domain.OrderCancelled, &userID)
	})
	if err != nil {
		return nil, err
	}

	return s.orders.GetForUser(ctx, userID, orderID)
}

// UpdateStatus applies an admin-driven transition after consulting the
// lifecycle graph. It is the only sanctioned way to change an order's status;
// every call appends one history row.
func (s *Service) UpdateStatus(ctx context.Context, actorID, orderID string, newStatus domain.OrderStatus) (*domain.Order, error) {
	if !newStatus.Valid() {
		return nil, &domain.InvalidTransitionError{To: newStatus}
	}

	err := s.tx.InTx(ctx, func(q db.Querier) error {
		order, err := s.orders.LockByID(ctx, q, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(newStatus) {
			return &domain.InvalidTransitionError{From: order.Status, To: newStatus}
		}
		return s.transition(ctx, q, order, newStatus, &actorID)
	})
	if err != nil {
		return nil, err
	}

	return s.orders.Get(ctx, orderID)
}

// transition writes the status change and its audit row. The order row must
// already be locked in this transaction.
func (s *Service) transition(ctx context.Context, q db.Querier, order *domain.Order, to domain.OrderStatus, actor *string) error {
	if err := s.orders.UpdateStatus(ctx, q, order.ID, to); err != nil {
		return err
	}
	return s.orders.AppendHistory(ctx, q, domain.OrderStatusHistory{
		OrderID:   order.ID,
		OldStatus: order.Status,
		NewStatus: to,
		ChangedBy: actor,
	})
}

// Get returns one of the user's orders with its item snapshots.
func (s *Service) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	return s.orders.GetForUser(ctx, userID, orderID)
}

// List returns the user's orders, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// AdminGet returns any order by id.
func (s *Service) AdminGet(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orders.Get(ctx, orderID)
}

// AdminList returns all orders, optionally filtered by status.
func (s *Service) AdminList(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	if status != nil && !status.Valid() {
		return nil, errors.New("unknown status filter")
	}
	return s.orders.List(ctx, status)
}

// History returns the order's append-only status audit trail.
func (s *Service) History(ctx context.Context, orderID string) ([]domain.OrderStatusHistory, error) {
	return s.orders.ListHistory(ctx, orderID)
}

// Stats returns order count and revenue grouped by status.
func (s *Service) Stats(ctx context.Context) ([]orderrepo.StatusStat, error) {
	return s.orders.Stats(ctx)
}
