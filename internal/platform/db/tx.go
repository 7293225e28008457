package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTxConflict indicates the transaction lost a serialization or deadlock
// race with a concurrent writer. Safe to retry.
var ErrTxConflict = errors.New("platform/db: transaction conflict")

// WithTx executes a function within a transaction using the RepeatableRead
// isolation level. Serialization failures and deadlocks surface as
// ErrTxConflict so callers can retry.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return mapConflict(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return mapConflict(fmt.Errorf("platform/db: commit tx: %w", err))
	}

	return nil
}

// mapConflict converts Postgres serialization_failure (40001) and
// deadlock_detected (40P01) into ErrTxConflict.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %s", ErrTxConflict, pgErr.Message)
		}
	}
	return err
}
