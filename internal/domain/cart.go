package domain

import "time"

// TaxRateBps is the flat GST rate applied to cart subtotals, in basis points.
const TaxRateBps = 1800

type Cart struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	SubtotalCents int64      `json:"subtotalCents"`
	TaxCents      int64      `json:"taxCents"`
	ShippingCents int64      `json:"shippingCents"`
	TotalCents    int64      `json:"totalCents"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Items         []CartItem `json:"items,omitempty"`
}

// CartItem holds the selected quantity plus a price snapshot taken when the
// item was added or last revalidated. The snapshot tracks the catalog until
// checkout; it is not frozen at add time.
type CartItem struct {
	ID             string    `json:"id"`
	CartID         string    `json:"cartId"`
	VariantID      string    `json:"variantId"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	DiscountBps    int64     `json:"discountBps"`
	TotalCents     int64     `json:"totalCents"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Denormalised catalog fields for cart views.
	ProductName string `json:"productName,omitempty"`
	VariantSize string `json:"variantSize,omitempty"`
	VariantSKU  string `json:"variantSku,omitempty"`
}

// CartTotals are the four derived aggregate fields on a cart.
type CartTotals struct {
	SubtotalCents int64 `json:"subtotalCents"`
	TaxCents      int64 `json:"taxCents"`
	ShippingCents int64 `json:"shippingCents"`
	TotalCents    int64 `json:"totalCents"`
}

// ComputeCartTotals recomputes the aggregates from scratch over the current
// item set. Tax is a flat 18% of subtotal; shipping is a placeholder zero.
// Recomputing rather than patching incrementally keeps the stored totals
// from drifting.
func ComputeCartTotals(items []CartItem) CartTotals {
	var subtotal int64
	for _, it := range items {
		subtotal += it.TotalCents
	}
	tax := subtotal * TaxRateBps / 10000
	var shipping int64 = 0
	return CartTotals{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		ShippingCents: shipping,
		TotalCents:    subtotal + tax + shipping,
	}
}
