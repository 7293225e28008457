package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestMapConflict(t *testing.T) {
	serialization := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	require.ErrorIs(t, mapConflict(serialization), ErrTxConflict)

	deadlock := &pgconn.PgError{Code: "40P01", Message: "deadlock detected"}
	require.ErrorIs(t, mapConflict(deadlock), ErrTxConflict)

	wrapped := fmt.Errorf("platform/db: commit tx: %w", serialization)
	require.ErrorIs(t, mapConflict(wrapped), ErrTxConflict)
}

func TestMapConflictPassesThroughOtherErrors(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", Message: "duplicate key"}
	require.NotErrorIs(t, mapConflict(unique), ErrTxConflict)

	plain := errors.New("boom")
	require.Equal(t, plain, mapConflict(plain))
}
