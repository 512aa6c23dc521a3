package cart

import (
	"context"
	"errors"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	cartrepo "storefront-api/internal/repository/cart"
	catalogrepo "storefront-api/internal/repository/catalog"
	inventoryrepo "storefront-api/internal/repository/inventory"
)

// Service implements the cart snapshot operations. Every mutation runs as one
// transaction that locks the touched variant's inventory row before reading
// availability, so the stock check and the write it guards cannot be split by
// a concurrent checkout.
type Service struct {
	tx        db.TxRunner
	carts     cartRepo
	catalog   catalogRepo
	inventory inventoryRepo
}

type cartRepo interface {
	GetOrCreate(ctx context.Context, q db.Querier, userID string) (*domain.Cart, error)
	GetByUser(ctx context.Context, userID string) (*domain.Cart, error)
	ListItems(ctx context.Context, q db.Querier, cartID string) ([]domain.CartItem, error)
	GetItemForUser(ctx context.Context, q db.Querier, userID, itemID string) (*domain.CartItem, error)
	UpsertItem(ctx context.Context, q db.Querier, in cartrepo.UpsertItemInput) error
	UpdateItem(ctx context.Context, q db.Querier, in cartrepo.UpdateItemInput) error
	RefreshItemPrice(ctx context.Context, q db.Querier, itemID string, unitPriceCents, discountBps int64) error
	DeleteItem(ctx context.Context, q db.Querier, itemID string) error
	ClearItems(ctx context.Context, q db.Querier, cartID string) error
	UpdateTotals(ctx context.Context, q db.Querier, cartID string, totals domain.CartTotals) error
}

type catalogRepo interface {
	GetVariant(ctx context.Context, q db.Querier, variantID string) (*domain.Variant, error)
}

type inventoryRepo interface {
	LockForUpdate(ctx context.Context, q db.Querier, variantID string) (*domain.InventoryRecord, error)
}

func New(tx db.TxRunner, carts cartrepo.Repository, catalog catalogrepo.Repository, inventory inventoryrepo.Repository) *Service {
	return &Service{tx: tx, carts: carts, catalog: catalog, inventory: inventory}
}

// ItemError describes one problem found while validating a cart item.
type ItemError struct {
	ItemID      string `json:"itemId"`
	ProductName string `json:"productName,omitempty"`
	Error       string `json:"error"`
}

// ValidationResult is the outcome of Validate: either clean (possibly with
// repaired price snapshots) or a complete list of problems.
type ValidationResult struct {
	Valid        bool        `json:"valid"`
	PriceUpdated bool        `json:"priceUpdated"`
	Errors       []ItemError `json:"errors,omitempty"`
	Cart         *domain.Cart
}

// Get returns the user's cart, creating the empty 1:1 cart on first touch.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	err := s.tx.InTx(ctx, func(q db.Querier) error {
		_, err := s.carts.GetOrCreate(ctx, q, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.carts.GetByUser(ctx, userID)
}

// AddItem puts qty units of a variant into the user's cart, or adds to the
// existing line. The inventory row is locked before availability is compared
// against the requested total (existing cart quantity plus qty).
func (s *Service) AddItem(ctx context.Context, userID, variantID string, qty int64) (*domain.Cart, error) {
	if qty <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	err := s.tx.InTx(ctx, func(q db.Querier) error {
		variant, err := s.catalog.GetVariant(ctx, q, variantID)
		if err != nil {
			return err
		}
		if !variant.Purchasable() {
			return &domain.ProductUnavailableError{VariantID: variant.ID, ProductName: variant.ProductName}
		}

		cart, err := s.carts.GetOrCreate(ctx, q, userID)
		if err != nil {
			return err
		}

		inv, err := s.inventory.LockForUpdate(ctx, q, variantID)
		if err != nil {
			return err
		}

		var existing int64
		items, err := s.carts.ListItems(ctx, q, cart.ID)
		if err != nil {
			return err
		}
		for _, it := range items {
			if it.VariantID == variantID {
				existing = it.Quantity
				break
			}
		}

		if existing+qty > inv.Available() {
			return &domain.InsufficientStockError{
				VariantID:   variant.ID,
				ProductName: variant.ProductName,
				Size:        variant.Size,
				Requested:   existing + qty,
				Available:   inv.Available(),
			}
		}

		if err := s.carts.UpsertItem(ctx, q, cartrepo.UpsertItemInput{
			CartID:         cart.ID,
			VariantID:      variantID,
			Quantity:       qty,
			UnitPriceCents: variant.SellingPriceCents(),
			DiscountBps:    variant.DiscountBps,
		}); err != nil {
			return err
		}

		return s.recalculate(ctx, q, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.carts.GetByUser(ctx, userID)
}

// UpdateItemQuantity sets a line to qty. Zero deletes the line; any other
// value is revalidated against the catalog and the locked inventory row, and
// the price snapshot is refreshed to the current selling price (cart prices
// deliberately track the catalog until checkout).
func (s *Service) UpdateItemQuantity(ctx context.Context, userID, itemID string, qty int64) (*domain.Cart, error) {
	if qty < 0 {
		return nil, errors.New("quantity must not be negative")
	}

	err := s.tx.InTx(ctx, func(q db.Querier) error {
		item, err := s.carts.GetItemForUser(ctx, q, userID, itemID)
		if err != nil {
			return err
		}

		if qty == 0 {
			if err := s.carts.DeleteItem(ctx, q, item.ID); err != nil {
				return err
			}
			return s.recalculate(ctx, q, item.CartID)
		}

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
		if inv.Available() < qty {
			return &domain.InsufficientStockError{
				VariantID:   variant.ID,
				ProductName: variant.ProductName,
				Size:        variant.Size,
				Requested:   qty,
				Available:   inv.Available(),
			}
		}

		if err := s.carts.UpdateItem(ctx, q, cartrepo.UpdateItemInput{
			ItemID:         item.ID,
			Quantity:       qty,
			UnitPriceCents: variant.SellingPriceCents(),
			DiscountBps:    variant.DiscountBps,
		}); err != nil {
			return err
		}

		return s.recalculate(ctx, q, item.CartID)
	})
	if err != nil {
		return nil, err
	}

	return s.carts.GetByUser(ctx, userID)
}

// RemoveItem deletes one line from the user's cart.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string) (*domain.Cart, error) {
	err := s.tx.InTx(ctx, func(q db.Querier) error {
		item, err := s.carts.GetItemForUser(ctx, q, userID, itemID)
		if err != nil {
			return err
		}
		if err := s.carts.DeleteItem(ctx, q, item.ID); err != nil {
			return err
		}
		return s.recalculate(ctx, q, item.CartID)
	})
	if err != nil {
		return nil, err
	}

	return s.carts.GetByUser(ctx, userID)
}

// Clear removes every item and zeroes the stored totals.
func (s *Service) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	err := s.tx.InTx(ctx, func(q db.Querier) error {
		cart, err := s.carts.GetOrCreate(ctx, q, userID)
		if err != nil {
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

	return s.carts.GetByUser(ctx, userID)
}

// Validate walks every cart item under its inventory lock and collects ALL
// problems (inactive product, insufficient stock) instead of failing on the
// first, so the client can fix everything in one round trip. Stale price
// snapshots are repaired as a side effect and reported via PriceUpdated.
func (s *Service) Validate(ctx context.Context, userID string) (*ValidationResult, error) {
	result := &ValidationResult{}

	err := s.tx.InTx(ctx, func(q db.Querier) error {
		cart, err := s.carts.GetOrCreate(ctx, q, userID)
		if err != nil {
			return err
		}

		items, err := s.carts.ListItems(ctx, q, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyCart
		}

		for _, item := range items {
			variant, err := s.catalog.GetVariant(ctx, q, item.VariantID)
			if err != nil {
				return err
			}

			inv, err := s.inventory.LockForUpdate(ctx, q, item.VariantID)
			if err != nil {
				return err
			}

			if !variant.Purchasable() {
				result.Errors = append(result.Errors, ItemError{
					ItemID:      item.ID,
					ProductName: variant.ProductName,
					Error:       "product no longer available",
				})
				continue
			}

			if inv.Available() < item.Quantity {
				result.Errors = append(result.Errors, ItemError{
					ItemID:      item.ID,
					ProductName: variant.ProductName,
					Error:       "insufficient stock",
				})
				continue
			}

			current := variant.SellingPriceCents()
			if item.UnitPriceCents != current || item.DiscountBps != variant.DiscountBps {
				if err := s.carts.RefreshItemPrice(ctx, q, item.ID, current, variant.DiscountBps); err != nil {
					return err
				}
				result.PriceUpdated = true
			}
		}

		if len(result.Errors) > 0 {
			return nil
		}
		return s.recalculate(ctx, q, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	result.Valid = len(result.Errors) == 0
	if result.Valid {
		cart, err := s.carts.GetByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		result.Cart = cart
	}
	return result, nil
}

// recalculate rebuilds the cart's aggregate fields from the full item set.
// Always from scratch, never patched incrementally.
func (s *Service) recalculate(ctx context.Context, q db.Querier, cartID string) error {
	items, err := s.carts.ListItems(ctx, q, cartID)
	if err != nil {
		return err
	}
	return s.carts.UpdateTotals(ctx, q, cartID, domain.ComputeCartTotals(items))
}
