package order

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

const orderColumns = `id::text, user_id::text, status, subtotal_cents, tax_cents, shipping_cents, discount_cents, total_cents, currency, shipping_address, billing_address, payment_reference, placed_at, updated_at`

func (r *postgresRepo) Create(ctx context.Context, q db.Querier, o *domain.Order) error {
	const insertOrder = `
INSERT INTO orders (id, user_id, status, subtotal_cents, tax_cents, shipping_cents, discount_cents, total_cents, currency, shipping_address, billing_address)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING placed_at, updated_at
`
	err := q.QueryRow(ctx, insertOrder,
		o.ID,
		o.UserID,
		o.Status,
		o.SubtotalCents,
		o.TaxCents,
		o.ShippingCents,
		o.DiscountCents,
		o.TotalCents,
		o.Currency,
		o.ShippingAddress,
		o.BillingAddress,
	).Scan(&o.PlacedAt, &o.UpdatedAt)
	if err != nil {
		r.logger.Printf("order repo: insert order user=%s error=%v", o.UserID, err)
		return err
	}

	const insertItem = `
INSERT INTO order_items (order_id, product_id, product_name, variant_id, variant_size, variant_sku, image_url, unit_price_cents, discount_bps, final_unit_price_cents, quantity, total_cents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id::text
`
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if err := q.QueryRow(ctx, insertItem,
			o.ID,
			it.ProductID,
			it.ProductName,
			it.VariantID,
			it.VariantSize,
			it.VariantSKU,
			it.ImageURL,
			it.UnitPriceCents,
			it.DiscountBps,
			it.FinalUnitPriceCents,
			it.Quantity,
			it.TotalCents,
		).Scan(&it.ID); err != nil {
			r.logger.Printf("order repo: insert item order=%s variant=%s error=%v", o.ID, it.VariantID, err)
			return err
		}
	}
	return nil
}

func (r *postgresRepo) LockByID(ctx context.Context, q db.Querier, orderID string) (*domain.Order, error) {
	return scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, orderID))
}

func (r *postgresRepo) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID))
	if err != nil {
		return nil, err
	}
	items, err := r.ListItems(ctx, r.pool, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`, orderID, userID))
	if err != nil {
		return nil, err
	}
	items, err := r.ListItems(ctx, r.pool, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY placed_at DESC`, userID)
}

func (r *postgresRepo) List(ctx context.Context, status *domain.OrderStatus) ([]domain.Order, error) {
	if status != nil {
		return r.listOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY placed_at DESC`, *status)
	}
	return r.listOrders(ctx, `SELECT ` + orderColumns + ` FROM orders ORDER BY placed_at DESC`)
}

func (r *postgresRepo) listOrders(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.ListItems(ctx, r.pool, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *postgresRepo) ListItems(ctx context.Context, q db.Querier, orderID string) ([]domain.OrderItem, error) {
	const sql = `
SELECT id::text, order_id::text, product_id::text, product_name, variant_id::text, variant_size, variant_sku, image_url, unit_price_cents, discount_bps, final_unit_price_cents, quantity, total_cents
FROM order_items
WHERE order_id = $1
ORDER BY product_name ASC, variant_size ASC
`
	rows, err := q.Query(ctx, sql, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(
			&it.ID,
			&it.OrderID,
			&it.ProductID,
			&it.ProductName,
			&it.VariantID,
			&it.VariantSize,
			&it.VariantSKU,
			&it.ImageURL,
			&it.UnitPriceCents,
			&it.DiscountBps,
			&it.FinalUnitPriceCents,
			&it.Quantity,
			&it.TotalCents,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, q db.Querier, orderID string, status domain.OrderStatus) error {
	cmd, err := q.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, orderID, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) AppendHistory(ctx context.Context, q db.Querier, h domain.OrderStatusHistory) error {
	const sql = `
INSERT INTO order_status_history (order_id, old_status, new_status, changed_by)
VALUES ($1, $2, $3, $4)
`
	_, err := q.Exec(ctx, sql, h.OrderID, h.OldStatus, h.NewStatus, h.ChangedBy)
	return err
}

func (r *postgresRepo) ListHistory(ctx context.Context, orderID string) ([]domain.OrderStatusHistory, error) {
	const sql = `
SELECT id::text, order_id::text, old_status, new_status, changed_by::text, changed_at
FROM order_status_history
WHERE order_id = $1
ORDER BY changed_at ASC
`
	rows, err := r.pool.Query(ctx, sql, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.OrderStatusHistory
	for rows.Next() {
		var h domain.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.OldStatus, &h.NewStatus, &h.ChangedBy, &h.ChangedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *postgresRepo) Stats(ctx context.Context) ([]StatusStat, error) {
	const sql = `
SELECT status, COUNT(*), COALESCE(SUM(total_cents), 0)
FROM orders
GROUP BY status
ORDER BY status
`
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []StatusStat
	for rows.Next() {
		var s StatusStat
		if err := rows.Scan(&s.Status, &s.Count, &s.RevenueCents); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.SubtotalCents,
		&o.TaxCents,
		&o.ShippingCents,
		&o.DiscountCents,
		&o.TotalCents,
		&o.Currency,
		&o.ShippingAddress,
		&o.BillingAddress,
		&o.PaymentReference,
		&o.PlacedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}
