// Package repository holds the Postgres persistence layer. Each repo wraps
// the shared pgx pool; all queries are owner-scoped where user data is
// involved so one user can never read or delete another's rows.
package repository

import "errors"

// ErrNotFound is returned when a lookup or delete matches no row.
var ErrNotFound = errors.New("not found")

type scannable interface {
	Scan(dest ...any) error
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}
