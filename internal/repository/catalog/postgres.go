package catalog

import (
	"context"
	"errors"
	"io"
	"log"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const q = `
SELECT id::text, name, COALESCE(description, ''), is_active, created_at
FROM products
WHERE is_active
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		r.logger.Printf("catalog repo: list products error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		if err := r.loadChildren(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *postgresRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	const q = `
SELECT id::text, name, COALESCE(description, ''), is_active, created_at
FROM products
WHERE id = $1
`
	var p domain.Product
	err := r.pool.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Description, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("catalog repo: get product id=%s error=%v", id, err)
		return nil, err
	}
	if err := r.loadChildren(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresRepo) loadChildren(ctx context.Context, p *domain.Product) error {
	const imagesQ = `
SELECT id::text, product_id::text, image_url, is_primary, position
FROM product_images
WHERE product_id = $1
ORDER BY position ASC
`
	rows, err := r.pool.Query(ctx, imagesQ, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL, &img.IsPrimary, &img.Position); err != nil {
			return err
		}
		p.Images = append(p.Images, img)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const variantsQ = `
SELECT id::text, product_id::text, size, sku, price_cents, discount_bps, is_active
FROM product_variants
WHERE product_id = $1
ORDER BY size ASC
`
	vrows, err := r.pool.Query(ctx, variantsQ, p.ID)
	if err != nil {
		return err
	}
	defer vrows.Close()
	for vrows.Next() {
		var v domain.Variant
		if err := vrows.Scan(&v.ID, &v.ProductID, &v.Size, &v.SKU, &v.PriceCents, &v.DiscountBps, &v.IsActive); err != nil {
			return err
		}
		v.ProductName = p.Name
		v.ProductActive = p.IsActive
		p.Variants = append(p.Variants, v)
	}
	return vrows.Err()
}

func (r *postgresRepo) GetVariant(ctx context.Context, q db.Querier, variantID string) (*domain.Variant, error) {
	const sql = `
SELECT v.id::text, v.product_id::text, v.size, v.sku, v.price_cents, v.discount_bps, v.is_active,
       p.name, p.is_active,
       COALESCE((
           SELECT image_url FROM product_images
           WHERE product_id = p.id
           ORDER BY is_primary DESC, position ASC
           LIMIT 1
       ), '')
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.id = $1
`
	var v domain.Variant
	err := q.QueryRow(ctx, sql, variantID).Scan(
		&v.ID,
		&v.ProductID,
		&v.Size,
		&v.SKU,
		&v.PriceCents,
		&v.DiscountBps,
		&v.IsActive,
		&v.ProductName,
		&v.ProductActive,
		&v.PrimaryImageURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *postgresRepo) UpsertProduct(ctx context.Context, in UpsertProductInput) (string, error) {
	var id string

	if in.ID == "" {
		// Products have no natural key; seed and import tooling dedupes by
		// name so reruns do not multiply the catalog.
		err := r.pool.QueryRow(ctx, `SELECT id::text FROM products WHERE name = $1`, in.Name).Scan(&id)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return "", err
		}
	} else {
		id = in.ID
	}

	if id == "" {
		err := r.pool.QueryRow(ctx, `
INSERT INTO products (name, description, is_active)
VALUES ($1, NULLIF($2, ''), $3)
RETURNING id::text
`, in.Name, in.Description, in.IsActive).Scan(&id)
		if err != nil {
			r.logger.Printf("catalog repo: insert product name=%q error=%v", in.Name, err)
			return "", err
		}
		return id, nil
	}

	_, err := r.pool.Exec(ctx, `
UPDATE products
SET name = $2, description = NULLIF($3, ''), is_active = $4
WHERE id = $1
`, id, in.Name, in.Description, in.IsActive)
	if err != nil {
		r.logger.Printf("catalog repo: update product id=%s error=%v", id, err)
		return "", err
	}
	return id, nil
}

func (r *postgresRepo) UpsertVariant(ctx context.Context, in UpsertVariantInput) (string, error) {
	const sql = `
INSERT INTO product_variants (product_id, size, sku, price_cents, discount_bps, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (sku) DO UPDATE SET
    price_cents = EXCLUDED.price_cents,
    discount_bps = EXCLUDED.discount_bps,
    is_active = EXCLUDED.is_active
RETURNING id::text
`
	var id string
	err := r.pool.QueryRow(ctx, sql, in.ProductID, in.Size, in.SKU, in.PriceCents, in.DiscountBps, in.IsActive).Scan(&id)
	if err != nil {
		r.logger.Printf("catalog repo: upsert variant sku=%s error=%v", in.SKU, err)
		return "", err
	}
	return id, nil
}

func (r *postgresRepo) AddImage(ctx context.Context, productID, url string, isPrimary bool, position int) error {
	const sql = `
INSERT INTO product_images (product_id, image_url, is_primary, position)
VALUES ($1, $2, $3, $4)
ON CONFLICT DO NOTHING
`
	_, err := r.pool.Exec(ctx, sql, productID, url, isPrimary, position)
	return err
}
