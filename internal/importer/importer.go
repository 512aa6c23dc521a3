package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	catalogrepo "storefront-api/internal/repository/catalog"
)

// CatalogWriter is the slice of the catalog repository the importer writes
// through.
type CatalogWriter interface {
	UpsertProduct(ctx context.Context, in catalogrepo.UpsertProductInput) (string, error)
	UpsertVariant(ctx context.Context, in catalogrepo.UpsertVariantInput) (string, error)
	AddImage(ctx context.Context, productID, url string, isPrimary bool, position int) error
}

// StockWriter sets the physical stock level for imported variants.
type StockWriter interface {
	SetStock(ctx context.Context, variantID string, stock int64) error
}

// CSVImporter loads a catalog export into products, variants and stock. One
// row per variant; consecutive rows with the same product name share one
// product, and the first row of a product may carry its primary image URL.
type CSVImporter struct {
	reader    *csv.Reader
	catalog   CatalogWriter
	inventory StockWriter
}

func NewCSVImporter(r io.Reader, catalog CatalogWriter, inventory StockWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:    csvr,
		catalog:   catalog,
		inventory: inventory,
	}
}

type csvRow struct {
	Name        string
	Description string
	Size        string
	SKU         string
	PriceCents  int64
	DiscountBps int64
	Stock       int64
	ImageURL    string
}

// Run parses the CSV and upserts every variant row. It returns the number of
// variants imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		imported       int
		currentName    string
		currentProduct string
	)

	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}

		if row.Name != currentName {
			productID, err := i.catalog.UpsertProduct(ctx, catalogrepo.UpsertProductInput{
				Name:        row.Name,
				Description: row.Description,
				IsActive:    true,
			})
			if err != nil {
				return imported, fmt.Errorf("row %d: upsert product %q: %w", line, row.Name, err)
			}
			if row.ImageURL != "" {
				if err := i.catalog.AddImage(ctx, productID, row.ImageURL, true, 0); err != nil {
					return imported, fmt.Errorf("row %d: add image for %q: %w", line, row.Name, err)
				}
			}
			currentName = row.Name
			currentProduct = productID
		}

		variantID, err := i.catalog.UpsertVariant(ctx, catalogrepo.UpsertVariantInput{
			ProductID:   currentProduct,
			Size:        row.Size,
			SKU:         row.SKU,
			PriceCents:  row.PriceCents,
			DiscountBps: row.DiscountBps,
			IsActive:    true,
		})
		if err != nil {
			return imported, fmt.Errorf("row %d: upsert variant %s: %w", line, row.SKU, err)
		}

		if err := i.inventory.SetStock(ctx, variantID, row.Stock); err != nil {
			return imported, fmt.Errorf("row %d: set stock for %s: %w", line, row.SKU, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	row := &csvRow{
		Name:        pick(record, index, "name"),
		Description: pick(record, index, "description"),
		Size:        pick(record, index, "size"),
		SKU:         pick(record, index, "sku"),
		ImageURL:    pick(record, index, "image_url"),
	}
	if row.Name == "" || row.SKU == "" || row.Size == "" {
		return nil, errors.New("name, size and sku are required")
	}

	var err error
	if row.PriceCents, err = pickInt(record, index, "price_cents"); err != nil {
		return nil, err
	}
	if row.PriceCents <= 0 {
		return nil, fmt.Errorf("invalid price_cents for sku %s", row.SKU)
	}
	if row.DiscountBps, err = pickInt(record, index, "discount_bps"); err != nil {
		return nil, err
	}
	if row.DiscountBps < 0 || row.DiscountBps > 10000 {
		return nil, fmt.Errorf("invalid discount_bps for sku %s", row.SKU)
	}
	if row.Stock, err = pickInt(record, index, "stock"); err != nil {
		return nil, err
	}
	if row.Stock < 0 {
		return nil, fmt.Errorf("invalid stock for sku %s", row.SKU)
	}
	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	i, ok := index[key]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func pickInt(record []string, index map[string]int, key string) (int64, error) {
	raw := pick(record, index, key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", key, raw)
	}
	return v, nil
}
