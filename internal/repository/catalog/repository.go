package catalog

import (
	"context"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
)

type UpsertProductInput struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
}

type UpsertVariantInput struct {
	ProductID   string
	Size        string
	SKU         string
	PriceCents  int64
	DiscountBps int64
	IsActive    bool
}

// Repository is the catalog read side the core depends on, plus the write
// operations the seeder and importer need.
type Repository interface {
	// ListProducts returns active products with variants and images for the
	// public listing. Availability figures are advisory (unlocked reads).
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// GetVariant loads a variant joined with its parent product's name,
	// active flag and primary image. Takes the caller's Querier so cart and
	// order transactions read through their own transaction.
	GetVariant(ctx context.Context, q db.Querier, variantID string) (*domain.Variant, error)

	UpsertProduct(ctx context.Context, in UpsertProductInput) (string, error)
	UpsertVariant(ctx context.Context, in UpsertVariantInput) (string, error)
	AddImage(ctx context.Context, productID, url string, isPrimary bool, position int) error
}
