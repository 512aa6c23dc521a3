package inventory

import (
	"context"
	"errors"
	"fmt"

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

func (r *postgresRepo) Get(ctx context.Context, variantID string) (*domain.InventoryRecord, error) {
	const q = `
SELECT variant_id::text, stock, reserved
FROM inventory
WHERE variant_id = $1
`
	return scanRecord(r.pool.QueryRow(ctx, q, variantID))
}

func (r *postgresRepo) LockForUpdate(ctx context.Context, q db.Querier, variantID string) (*domain.InventoryRecord, error) {
	const sql = `
SELECT variant_id::text, stock, reserved
FROM inventory
WHERE variant_id = $1
FOR UPDATE
`
	return scanRecord(q.QueryRow(ctx, sql, variantID))
}

func (r *postgresRepo) Reserve(ctx context.Context, q db.Querier, variantID string, qty int64) error {
	const sql = `
UPDATE inventory
SET reserved = reserved + $2
WHERE variant_id = $1 AND reserved + $2 <= stock
`
	cmd, err := q.Exec(ctx, sql, variantID, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return &domain.InsufficientStockError{VariantID: variantID, Requested: qty}
	}
	return nil
}

func (r *postgresRepo) Release(ctx context.Context, q db.Querier, variantID string, qty int64) error {
	const sql = `
UPDATE inventory
SET reserved = reserved - $2
WHERE variant_id = $1 AND reserved >= $2
`
	cmd, err := q.Exec(ctx, sql, variantID, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("inventory: release of %d for variant %s exceeds reserved quantity", qty, variantID)
	}
	return nil
}

func (r *postgresRepo) SetStock(ctx context.Context, variantID string, stock int64) error {
	const sql = `
INSERT INTO inventory (variant_id, stock, reserved)
VALUES ($1, $2, 0)
ON CONFLICT (variant_id) DO UPDATE SET stock = EXCLUDED.stock
`
	_, err := r.pool.Exec(ctx, sql, variantID, stock)
	return err
}

func scanRecord(row pgx.Row) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	if err := row.Scan(&rec.VariantID, &rec.Stock, &rec.Reserved); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
