package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TxRunner executes a function inside one database transaction. An error
// return rolls everything back, so row locks taken inside fn are released
// and no partial state survives.
type TxRunner interface {
	InTx(ctx context.Context, fn func(q Querier) error) error
}

type poolRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner wraps a pool as a TxRunner.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &poolRunner{pool: pool}
}

func (r *poolRunner) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
