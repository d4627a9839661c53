package db

import (
	"context"

	"backend-travelapp/internal/shared/logging"

	"github.com/jackc/pgx/v5"
)

// WithTx runs fn inside a transaction. The transaction is rolled back when fn
// fails and committed otherwise; fn's error is returned unchanged.
func WithTx(ctx context.Context, q Querier, fn func(tx pgx.Tx) error) error {
	tx, err := q.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logging.Warn.Printf("rollback failed: %v", rbErr)
		}
		return err
	}
	return tx.Commit(ctx)
}
