package domain

import (
	"encoding/json"
	"time"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderConfirmed  OrderStatus = "CONFIRMED"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderFailed     OrderStatus = "FAILED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

// allowedTransitions is the full order-lifecycle graph. A status missing a
// target here cannot reach it; terminal states have no outgoing edges.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderFailed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {},
	OrderCancelled:  {},
	OrderFailed:     {},
	OrderRefunded:   {},
}

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo reports whether the lifecycle graph permits moving from s
// to target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, t := range allowedTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are permitted from s.
func (s OrderStatus) Terminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

type Order struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	Status           OrderStatus     `json:"status"`
	SubtotalCents    int64           `json:"subtotalCents"`
	TaxCents         int64           `json:"taxCents"`
	ShippingCents    int64           `json:"shippingCents"`
	DiscountCents    int64           `json:"discountCents"`
	TotalCents       int64           `json:"totalCents"`
	Currency         string          `json:"currency"`
	ShippingAddress  json.RawMessage `json:"shippingAddress"`
	BillingAddress   json.RawMessage `json:"billingAddress"`
	PaymentReference *string         `json:"paymentReference,omitempty"`
	PlacedAt         time.Time       `json:"placedAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Items            []OrderItem     `json:"items,omitempty"`
}

// CanCancel reports whether the customer-facing cancel path is still open.
// Past CONFIRMED the reservation has entered fulfilment and only admin
// transitions apply.
func (o Order) CanCancel() bool {
	return o.Status == OrderPending || o.Status == OrderConfirmed
}

// OrderItem is the immutable per-line snapshot of product, variant, image and
// pricing data captured when the order was created. It is never updated, so
// historical orders stay stable when the catalog changes.
type OrderItem struct {
	ID                  string `json:"id"`
	OrderID             string `json:"orderId"`
	ProductID           string `json:"productId"`
	ProductName         string `json:"productName"`
	VariantID           string `json:"variantId"`
	VariantSize         string `json:"variantSize"`
	VariantSKU          string `json:"variantSku"`
	ImageURL            string `json:"imageUrl,omitempty"`
	UnitPriceCents      int64  `json:"unitPriceCents"`
	DiscountBps         int64  `json:"discountBps"`
	FinalUnitPriceCents int64  `json:"finalUnitPriceCents"`
	Quantity            int64  `json:"quantity"`
	TotalCents          int64  `json:"totalCents"`
}

// OrderStatusHistory is one row of the append-only transition audit log.
type OrderStatusHistory struct {
	ID        string      `json:"id"`
	OrderID   string      `json:"orderId"`
	OldStatus OrderStatus `json:"oldStatus"`
	NewStatus OrderStatus `json:"newStatus"`
	ChangedBy *string     `json:"changedBy,omitempty"`
	ChangedAt time.Time   `json:"changedAt"`
}
