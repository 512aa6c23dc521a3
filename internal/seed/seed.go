package seed

import (
	"context"
	"fmt"
	"io"
	"log"

	catalogrepo "storefront-api/internal/repository/catalog"
	inventoryrepo "storefront-api/internal/repository/inventory"

	"github.com/jackc/pgx/v5/pgxpool"
)

type variantSeed struct {
	Size        string
	SKU         string
	PriceCents  int64
	DiscountBps int64
	Stock       int64
}

type productSeed struct {
	Name        string
	Description string
	ImageURL    string
	Variants    []variantSeed
}

var products = []productSeed{
	{
		Name:        "Linen Shirt",
		Description: "Breathable linen shirt in off-white",
		ImageURL:    "https://cdn.example.com/products/linen-shirt.jpg",
		Variants: []variantSeed{
			{Size: "S", SKU: "SHIRT-LINEN-S", PriceCents: 249900, DiscountBps: 1000, Stock: 25},
			{Size: "M", SKU: "SHIRT-LINEN-M", PriceCents: 249900, DiscountBps: 1000, Stock: 40},
			{Size: "L", SKU: "SHIRT-LINEN-L", PriceCents: 249900, Stock: 30},
		},
	},
	{
		Name:        "Slim Denim Jeans",
		Description: "Mid-rise slim jeans, dark wash",
		ImageURL:    "https://cdn.example.com/products/denim-jeans.jpg",
		Variants: []variantSeed{
			{Size: "30", SKU: "JEANS-SLIM-30", PriceCents: 349900, Stock: 20},
			{Size: "32", SKU: "JEANS-SLIM-32", PriceCents: 349900, Stock: 35},
			{Size: "34", SKU: "JEANS-SLIM-34", PriceCents: 349900, DiscountBps: 1500, Stock: 15},
		},
	},
	{
		Name:        "Canvas Cap",
		Description: "One-size canvas cap",
		ImageURL:    "https://cdn.example.com/products/canvas-cap.jpg",
		Variants: []variantSeed{
			{Size: "OS", SKU: "CAP-CANVAS-OS", PriceCents: 79900, Stock: 100},
		},
	},
}

// Apply inserts a small catalog with variants, images and stock for manual
// testing. Reruns are safe: products dedupe by name, variants by SKU and
// stock levels are overwritten.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	discard := log.New(io.Discard, "", 0)
	catalog := catalogrepo.NewPostgres(pool, discard)
	inventory := inventoryrepo.NewPostgres(pool)

	for _, p := range products {
		productID, err := catalog.UpsertProduct(ctx, catalogrepo.UpsertProductInput{
			Name:        p.Name,
			Description: p.Description,
			IsActive:    true,
		})
		if err != nil {
			return fmt.Errorf("upsert product %q: %w", p.Name, err)
		}

		if p.ImageURL != "" {
			if err := catalog.AddImage(ctx, productID, p.ImageURL, true, 0); err != nil {
				return fmt.Errorf("add image for %q: %w", p.Name, err)
			}
		}

		for _, v := range p.Variants {
			variantID, err := catalog.UpsertVariant(ctx, catalogrepo.UpsertVariantInput{
				ProductID:   productID,
				Size:        v.Size,
				SKU:         v.SKU,
				PriceCents:  v.PriceCents,
				DiscountBps: v.DiscountBps,
				IsActive:    true,
			})
			if err != nil {
				return fmt.Errorf("upsert variant %s: %w", v.SKU, err)
			}
			if err := inventory.SetStock(ctx, variantID, v.Stock); err != nil {
				return fmt.Errorf("set stock for %s: %w", v.SKU, err)
			}
		}
	}

	return nil
}
