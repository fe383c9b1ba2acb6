package store

import (
	"context"
	"database/sql"
)

// DBTX is the querying surface the stores run against. Both *sql.DB and
// *sql.Tx satisfy it, so the same store methods serve standalone calls
// and calls inside a caller-managed transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
