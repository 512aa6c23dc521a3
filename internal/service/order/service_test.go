package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	orderrepo "storefront-api/internal/repository/order"
)

type stubTx struct{}

func (stubTx) InTx(_ context.Context, fn func(q db.Querier) error) error {
	return fn(nil)
}

type stubOrderRepo struct {
	existing *domain.Order
	items    []domain.OrderItem

	created *domain.Order
	status  domain.OrderStatus
	history []domain.OrderStatusHistory
}

func (s *stubOrderRepo) Create(_ context.Context, _ db.Querier, o *domain.Order) error {
	cp := *o
	s.created = &cp
	return nil
}

func (s *stubOrderRepo) LockByID(_ context.Context, _ db.Querier, orderID string) (*domain.Order, error) {
	if s.existing == nil || s.existing.ID != orderID {
		return nil, domain.ErrNotFound
	}
	o := *s.existing
	return &o, nil
}

func (s *stubOrderRepo) GetForUser(_ context.Context, userID, orderID string) (*domain.Order, error) {
	if s.created != nil && s.created.ID == orderID && s.created.UserID == userID {
		o := *s.created
		return &o, nil
	}
	if s.existing != nil && s.existing.ID == orderID && s.existing.UserID == userID {
		o := *s.existing
		if s.status != "" {
			o.Status = s.status
		}
		return &o, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubOrderRepo) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	if s.existing != nil && s.existing.UserID == userID {
		out = append(out, *s.existing)
	}
	return out, nil
}

func (s *stubOrderRepo) ListItems(_ context.Context, _ db.Querier, _ string) ([]domain.OrderItem, error) {
	return s.items, nil
}

func (s *stubOrderRepo) UpdateStatus(_ context.Context, _ db.Querier, _ string, status domain.OrderStatus) error {
	s.status = status
	return nil
}

func (s *stubOrderRepo) AppendHistory(_ context.Context, _ db.Querier, h domain.OrderStatusHistory) error {
	s.history = append(s.history, h)
	return nil
}

func (s *stubOrderRepo) ListHistory(_ context.Context, _ string) ([]domain.OrderStatusHistory, error) {
	return s.history, nil
}

func (s *stubOrderRepo) Get(_ context.Context, orderID string) (*domain.Order, error) {
	if s.existing == nil || s.existing.ID != orderID {
		return nil, domain.ErrNotFound
	}
	o := *s.existing
	if s.status != "" {
		o.Status = s.status
	}
	return &o, nil
}

func (s *stubOrderRepo) List(_ context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	if s.existing == nil {
		return nil, nil
	}
	if status != nil && s.existing.Status != *status {
		return nil, nil
	}
	return []domain.Order{*s.existing}, nil
}

func (s *stubOrderRepo) Stats(_ context.Context) ([]orderrepo.StatusStat, error) {
	return nil, nil
}

type stubCartRepo struct {
	cart    *domain.Cart
	items   []domain.CartItem
	cleared bool
	totals  *domain.CartTotals
}

func (s *stubCartRepo) LockByUser(_ context.Context, _ db.Querier, userID string) (*domain.Cart, error) {
	if s.cart == nil || s.cart.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return s.cart, nil
}

func (s *stubCartRepo) ListItems(_ context.Context, _ db.Querier, _ string) ([]domain.CartItem, error) {
	return s.items, nil
}

func (s *stubCartRepo) ClearItems(_ context.Context, _ db.Querier, _ string) error {
	s.cleared = true
	return nil
}

func (s *stubCartRepo) UpdateTotals(_ context.Context, _ db.Querier, _ string, totals domain.CartTotals) error {
	s.totals = &totals
	return nil
}

type stubCatalogRepo struct {
	variants map[string]domain.Variant
}

func (s *stubCatalogRepo) GetVariant(_ context.Context, _ db.Querier, variantID string) (*domain.Variant, error) {
	v, ok := s.variants[variantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

type stubInventoryRepo struct {
	records  map[string]domain.InventoryRecord
	reserved map[string]int64
	released map[string]int64
}

func (s *stubInventoryRepo) LockForUpdate(_ context.Context, _ db.Querier, variantID string) (*domain.InventoryRecord, error) {
	rec, ok := s.records[variantID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (s *stubInventoryRepo) Reserve(_ context.Context, _ db.Querier, variantID string, qty int64) error {
	if s.reserved == nil {
		s.reserved = map[string]int64{}
	}
	s.reserved[variantID] += qty
	return nil
}

func (s *stubInventoryRepo) Release(_ context.Context, _ db.Querier, variantID string, qty int64) error {
	if s.released == nil {
		s.released = map[string]int64{}
	}
	s.released[variantID] += qty
	return nil
}

func newTestService(orders *stubOrderRepo, carts *stubCartRepo, catalog *stubCatalogRepo, inventory *stubInventoryRepo) *Service {
	return &Service{
		tx:        stubTx{},
		orders:    orders,
		carts:     carts,
		catalog:   catalog,
		inventory: inventory,
		currency:  "INR",
	}
}

var testAddr = json.RawMessage(`{"line1":"42 MG Road","city":"Bengaluru"}`)

func checkoutFixture() (*stubOrderRepo, *stubCartRepo, *stubCatalogRepo, *stubInventoryRepo) {
	orders := &stubOrderRepo{}
	carts := &stubCartRepo{
		cart: &domain.Cart{ID: "cart-1", UserID: "user-1"},
		items: []domain.CartItem{
			{ID: "item-1", CartID: "cart-1", VariantID: "var-1", Quantity: 2, UnitPriceCents: 8750, DiscountBps: 1250, TotalCents: 17500},
			{ID: "item-2", CartID: "cart-1", VariantID: "var-2", Quantity: 1, UnitPriceCents: 5000, TotalCents: 5000},
		},
	}
	catalog := &stubCatalogRepo{variants: map[string]domain.Variant{
		"var-1": {
			ID: "var-1", ProductID: "prod-1", Size: "M", SKU: "SHIRT-M",
			PriceCents: 10000, DiscountBps: 1250, IsActive: true,
			ProductName: "Linen Shirt", ProductActive: true,
			PrimaryImageURL: "https://cdn.example.com/shirt.jpg",
		},
		"var-2": {
			ID: "var-2", ProductID: "prod-2", Size: "OS", SKU: "CAP-OS",
			PriceCents: 5000, IsActive: true,
			ProductName: "Canvas Cap", ProductActive: true,
		},
	}}
	inventory := &stubInventoryRepo{records: map[string]domain.InventoryRecord{
		"var-1": {VariantID: "var-1", Stock: 10, Reserved: 2},
		"var-2": {VariantID: "var-2", Stock: 5, Reserved: 0},
	}}
	return orders, carts, catalog, inventory
}

func TestCheckoutCreatesPendingOrder(t *testing.T) {
	orders, carts, catalog, inventory := checkoutFixture()
	svc := newTestService(orders, carts, catalog, inventory)

	got, err := svc.Checkout(context.Background(), "user-1", CheckoutInput{
		ShippingAddress: testAddr,
		BillingAddress:  testAddr,
	})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	created := orders.created
	if created == nil {
		t.Fatal("no order was created")
	}
	if created.Status != domain.OrderPending {
		t.Errorf("status = %s, want PENDING", created.Status)
	}
	if created.SubtotalCents != 22500 {
		t.Errorf("subtotal = %d, want 22500", created.SubtotalCents)
	}
	if created.TotalCents != 22500 {
		t.Errorf("total = %d, want 22500", created.TotalCents)
	}
	if created.Currency != "INR" {
		t.Errorf("currency = %s, want INR", created.Currency)
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(created.Items))
	}

	first := created.Items[0]
	if first.UnitPriceCents != 10000 || first.FinalUnitPriceCents != 8750 {
		t.Errorf("price snapshot = %d/%d, want list 10000 / final 8750", first.UnitPriceCents, first.FinalUnitPriceCents)
	}
	if first.ProductName != "Linen Shirt" || first.VariantSKU != "SHIRT-M" {
		t.Errorf("catalog snapshot = %q/%q", first.ProductName, first.VariantSKU)
	}
	if first.ImageURL != "https://cdn.example.com/shirt.jpg" {
		t.Errorf("image snapshot = %q", first.ImageURL)
	}
	if first.TotalCents != 17500 {
		t.Errorf("line total = %d, want 17500", first.TotalCents)
	}

	if inventory.reserved["var-1"] != 2 || inventory.reserved["var-2"] != 1 {
		t.Errorf("reservations = %v, want var-1:2 var-2:1", inventory.reserved)
	}
	if !carts.cleared {
		t.Error("cart was not emptied after checkout")
	}
	if carts.totals == nil || *carts.totals != (domain.CartTotals{}) {
		t.Errorf("cart totals = %+v, want all zero", carts.totals)
	}
	if got.ID != created.ID {
		t.Errorf("returned order %s does not match created %s", got.ID, created.ID)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	orders, carts, catalog, inventory := checkoutFixture()
	carts.items = nil
	svc := newTestService(orders, carts, catalog, inventory)

	_, err := svc.Checkout(context.Background(), "user-1", CheckoutInput{ShippingAddress: testAddr, BillingAddress: testAddr})
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutNoCartRow(t *testing.T) {
	orders, carts, catalog, inventory := checkoutFixture()
	carts.cart = nil
	svc := newTestService(orders, carts, catalog, inventory)

	_, err := svc.Checkout(context.Background(), "user-1", CheckoutInput{ShippingAddress: testAddr, BillingAddress: testAddr})
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutInsufficientStockAborts(t *testing.T) {
	orders, carts, catalog, inventory := checkoutFixture()
	inventory.records["var-2"] = domain.InventoryRecord{VariantID: "var-2", Stock: 1, Reserved: 1}
	svc := newTestService(orders, carts, catalog, inventory)

	_, err := svc.Checkout(context.Background(), "user-1", CheckoutInput{ShippingAddress: testAddr, BillingAddress: testAddr})
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.VariantID != "var-2" || stockErr.Available != 0 {
		t.Errorf("error = %+v, want var-2 with available 0", stockErr)
	}
	if orders.created != nil {
		t.Error("order was created despite stock shortfall")
	}
	if carts.cleared {
		t.Error("cart was emptied despite failed checkout")
	}
}

func TestCheckoutInactiveProductAborts(t *testing.T) {
	orders, carts, catalog, inventory := checkoutFixture()
	v := catalog.variants["var-1"]
	v.IsActive = false
	catalog.variants["var-1"] = v
	svc := newTestService(orders, carts, catalog, inventory)

	_, err := svc.Checkout(context.Background(), "user-1", CheckoutInput{ShippingAddress: testAddr, BillingAddress: testAddr})
	var unavailable *domain.ProductUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ProductUnavailableError, got %v", err)
	}
	if orders.created != nil {
		t.Error("order was created for an unavailable product")
	}
}

func TestCheckoutRequiresAddresses(t *testing.T) {
	orders, carts, catalog, inventory := checkoutFixture()
	svc := newTestService(orders, carts, catalog, inventory)

	if _, err := svc.Checkout(context.Background(), "user-1", CheckoutInput{ShippingAddress: testAddr}); err == nil {
		t.Fatal("expected error for missing billing address")
	}
}

func cancellableOrder(status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:     "order-1",
		UserID: "user-1",
		Status: status,
	}
}

func TestCancelReleasesReservations(t *testing.T) {
	orders := &stubOrderRepo{
		existing: cancellableOrder(domain.OrderPending),
		items: []domain.OrderItem{
			{OrderID: "order-1", VariantID: "var-1", Quantity: 2},
			{OrderID: "order-1", VariantID: "var-2", Quantity: 1},
		},
	}
	inventory := &stubInventoryRepo{records: map[string]domain.InventoryRecord{
		"var-1": {VariantID: "var-1", Stock: 10, Reserved: 2},
		"var-2": {VariantID: "var-2", Stock: 5, Reserved: 1},
	}}
	svc := newTestService(orders, &stubCartRepo{}, &stubCatalogRepo{}, inventory)

	got, err := svc.Cancel(context.Background(), "user-1", "order-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != domain.OrderCancelled {
		t.Errorf("status = %s, want CANCELLED", got.Status)
	}
	if inventory.released["var-1"] != 2 || inventory.released["var-2"] != 1 {
		t.Errorf("released = %v, want var-1:2 var-2:1", inventory.released)
	}
	if len(orders.history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(orders.history))
	}
	h := orders.history[0]
	if h.OldStatus != domain.OrderPending || h.NewStatus != domain.OrderCancelled {
		t.Errorf("history = %s -> %s, want PENDING -> CANCELLED", h.OldStatus, h.NewStatus)
	}
	if h.ChangedBy == nil || *h.ChangedBy != "user-1" {
		t.Errorf("history actor = %v, want user-1", h.ChangedBy)
	}
}

func TestCancelForeignOrder(t *testing.T) {
	orders := &stubOrderRepo{existing: cancellableOrder(domain.OrderPending)}
	svc := newTestService(orders, &stubCartRepo{}, &stubCatalogRepo{}, &stubInventoryRepo{})

	_, err := svc.Cancel(context.Background(), "someone-else", "order-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(orders.history) != 0 {
		t.Error("history written for a rejected cancel")
	}
}

func TestCancelPastCancellableWindow(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.OrderProcessing,
		domain.OrderShipped,
		domain.OrderDelivered,
		domain.OrderCancelled,
	} {
		orders := &stubOrderRepo{existing: cancellableOrder(status)}
		inventory := &stubInventoryRepo{}
		svc := newTestService(orders, &stubCartRepo{}, &stubCatalogRepo{}, inventory)

		_, err := svc.Cancel(context.Background(), "user-1", "order-1")
		if !errors.Is(err, domain.ErrNotCancellable) {
			t.Errorf("status %s: expected ErrNotCancellable, got %v", status, err)
		}
		if len(inventory.released) != 0 {
			t.Errorf("status %s: stock released for a rejected cancel", status)
		}
	}
}

func TestUpdateStatusAppliesTransition(t *testing.T) {
	orders := &stubOrderRepo{existing: cancellableOrder(domain.OrderPending)}
	svc := newTestService(orders, &stubCartRepo{}, &stubCatalogRepo{}, &stubInventoryRepo{})

	got, err := svc.UpdateStatus(context.Background(), "admin-1", "order-1", domain.OrderConfirmed)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if got.Status != domain.OrderConfirmed {
		t.Errorf("status = %s, want CONFIRMED", got.Status)
	}
	if len(orders.history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(orders.history))
	}
	if h := orders.history[0]; h.ChangedBy == nil || *h.ChangedBy != "admin-1" {
		t.Errorf("history actor = %v, want admin-1", h.ChangedBy)
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	orders := &stubOrderRepo{existing: cancellableOrder(domain.OrderDelivered)}
	svc := newTestService(orders, &stubCartRepo{}, &stubCatalogRepo{}, &stubInventoryRepo{})

	_, err := svc.UpdateStatus(context.Background(), "admin-1", "order-1", domain.OrderShipped)
	var transErr *domain.InvalidTransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if transErr.From != domain.OrderDelivered || transErr.To != domain.OrderShipped {
		t.Errorf("error = %+v", transErr)
	}
	if orders.status != "" {
		t.Error("status written despite invalid transition")
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	orders := &stubOrderRepo{existing: cancellableOrder(domain.OrderPending)}
	svc := newTestService(orders, &stubCartRepo{}, &stubCatalogRepo{}, &stubInventoryRepo{})

	if _, err := svc.UpdateStatus(context.Background(), "admin-1", "order-1", "LOST"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestAdminListRejectsUnknownFilter(t *testing.T) {
	svc := newTestService(&stubOrderRepo{}, &stubCartRepo{}, &stubCatalogRepo{}, &stubInventoryRepo{})
	bad := domain.OrderStatus("LOST")
	if _, err := svc.AdminList(context.Background(), &bad); err == nil {
		t.Fatal("expected error for unknown status filter")
	}
}
