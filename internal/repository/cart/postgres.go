package cart

import (
	"context"
	"errors"

	"storefront-api/internal/db"
	"storefront-api/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const cartColumns = `id::text, user_id::text, subtotal_cents, tax_cents, shipping_cents, total_cents, created_at, updated_at`

func (r *postgresRepo) GetOrCreate(ctx context.Context, q db.Querier, userID string) (*domain.Cart, error) {
	const insert = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO NOTHING
`
	if _, err := q.Exec(ctx, insert, userID); err != nil {
		return nil, err
	}
	return scanCart(q.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1`, userID))
}

func (r *postgresRepo) GetByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := scanCart(r.pool.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1`, userID))
	if err != nil {
		return nil, err
	}
	items, err := r.ListItems(ctx, r.pool, cart.ID)
	if err != nil {
		return nil, err
	}
	cart.Items = items
	return cart, nil
}

func (r *postgresRepo) LockByUser(ctx context.Context, q db.Querier, userID string) (*domain.Cart, error) {
	return scanCart(q.QueryRow(ctx, `SELECT `+cartColumns+` FROM carts WHERE user_id = $1 FOR UPDATE`, userID))
}

func (r *postgresRepo) ListItems(ctx context.Context, q db.Querier, cartID string) ([]domain.CartItem, error) {
	const sql = `
SELECT i.id::text, i.cart_id::text, i.variant_id::text, i.quantity,
       i.unit_price_cents, i.discount_bps, i.total_cents, i.created_at, i.updated_at,
       p.name, v.size, v.sku
FROM cart_items i
JOIN product_variants v ON v.id = i.variant_id
JOIN products p ON p.id = v.product_id
WHERE i.cart_id = $1
ORDER BY i.created_at ASC
`
	rows, err := q.Query(ctx, sql, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(
			&it.ID,
			&it.CartID,
			&it.VariantID,
			&it.Quantity,
			&it.UnitPriceCents,
			&it.DiscountBps,
			&it.TotalCents,
			&it.CreatedAt,
			&it.UpdatedAt,
			&it.ProductName,
			&it.VariantSize,
			&it.VariantSKU,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) GetItemForUser(ctx context.Context, q db.Querier, userID, itemID string) (*domain.CartItem, error) {
	const sql = `
SELECT i.id::text, i.cart_id::text, i.variant_id::text, i.quantity,
       i.unit_price_cents, i.discount_bps, i.total_cents, i.created_at, i.updated_at,
       p.name, v.size, v.sku
FROM cart_items i
JOIN carts c ON c.id = i.cart_id
JOIN product_variants v ON v.id = i.variant_id
JOIN products p ON p.id = v.product_id
WHERE i.id = $1 AND c.user_id = $2
`
	var it domain.CartItem
	err := q.QueryRow(ctx, sql, itemID, userID).Scan(
		&it.ID,
		&it.CartID,
		&it.VariantID,
		&it.Quantity,
		&it.UnitPriceCents,
		&it.DiscountBps,
		&it.TotalCents,
		&it.CreatedAt,
		&it.UpdatedAt,
		&it.ProductName,
		&it.VariantSize,
		&it.VariantSKU,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *postgresRepo) UpsertItem(ctx context.Context, q db.Querier, in UpsertItemInput) error {
	const sql = `
INSERT INTO cart_items (cart_id, variant_id, quantity, unit_price_cents, discount_bps, total_cents)
VALUES ($1, $2, $3, $4, $5, $3 * $4)
ON CONFLICT (cart_id, variant_id) DO UPDATE SET
    quantity = cart_items.quantity + EXCLUDED.quantity,
    unit_price_cents = EXCLUDED.unit_price_cents,
    discount_bps = EXCLUDED.discount_bps,
    total_cents = (cart_items.quantity + EXCLUDED.quantity) * EXCLUDED.unit_price_cents,
    updated_at = now()
`
	_, err := q.Exec(ctx, sql, in.CartID, in.VariantID, in.Quantity, in.UnitPriceCents, in.DiscountBps)
	return err
}

func (r *postgresRepo) UpdateItem(ctx context.Context, q db.Querier, in UpdateItemInput) error {
	const sql = `
UPDATE cart_items
SET quantity = $2,
    unit_price_cents = $3,
    discount_bps = $4,
    total_cents = $2 * $3,
    updated_at = now()
WHERE id = $1
`
	cmd, err := q.Exec(ctx, sql, in.ItemID, in.Quantity, in.UnitPriceCents, in.DiscountBps)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) RefreshItemPrice(ctx context.Context, q db.Querier, itemID string, unitPriceCents, discountBps int64) error {
	const sql = `
UPDATE cart_items
SET unit_price_cents = $2,
    discount_bps = $3,
    total_cents = quantity * $2,
    updated_at = now()
WHERE id = $1
`
	cmd, err := q.Exec(ctx, sql, itemID, unitPriceCents, discountBps)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) DeleteItem(ctx context.Context, q db.Querier, itemID string) error {
	cmd, err := q.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) ClearItems(ctx context.Context, q db.Querier, cartID string) error {
	_, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

func (r *postgresRepo) UpdateTotals(ctx context.Context, q db.Querier, cartID string, totals domain.CartTotals) error {
	const sql = `
UPDATE carts
SET subtotal_cents = $2,
    tax_cents = $3,
    shipping_cents = $4,
    total_cents = $5,
    updated_at = now()
WHERE id = $1
`
	_, err := q.Exec(ctx, sql, cartID, totals.SubtotalCents, totals.TaxCents, totals.ShippingCents, totals.TotalCents)
	return err
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var c domain.Cart
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.SubtotalCents,
		&c.TaxCents,
		&c.ShippingCents,
		&c.TotalCents,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
