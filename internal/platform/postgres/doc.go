// Package postgres contains the PostgreSQL-backed implementations of the
// store interfaces. It maps driver-level errors (pgconn error codes,
// sql.ErrNoRows) onto the shared store error vocabulary.
package postgres
