package domain

import "time"

type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	IsActive    bool           `json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	Images      []ProductImage `json:"images,omitempty"`
	Variants    []Variant      `json:"variants,omitempty"`
}

type ProductImage struct {
	ID        string `json:"id"`
	ProductID string `json:"-"`
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
	Position  int    `json:"position"`
}

// Variant is one purchasable configuration (size) of a product. Prices are
// integer minor units; DiscountBps is the discount in basis points, so 1250
// means 12.50%.
type Variant struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	Size        string `json:"size"`
	SKU         string `json:"sku"`
	PriceCents  int64  `json:"priceCents"`
	DiscountBps int64  `json:"discountBps"`
	IsActive    bool   `json:"isActive"`

	// Denormalised from the parent product on reads that join it.
	ProductName     string `json:"productName,omitempty"`
	ProductActive   bool   `json:"productActive,omitempty"`
	PrimaryImageURL string `json:"primaryImageUrl,omitempty"`
}

// SellingPriceCents is the discounted unit price, floored to whole cents.
func (v Variant) SellingPriceCents() int64 {
	if v.DiscountBps <= 0 {
		return v.PriceCents
	}
	return v.PriceCents - v.PriceCents*v.DiscountBps/10000
}

// Purchasable reports whether both the variant and its parent product are
// still active in the catalog.
func (v Variant) Purchasable() bool {
	return v.IsActive && v.ProductActive
}
