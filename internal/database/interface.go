package database

import "context"

// DB is a live, reusable handle to one database.
// Layers above this package talk only to this interface and never import
// the postgres, mysql or sqlite packages directly.
//
// A DB is owned by a single session; callers that share one across
// goroutines must serialise access themselves.
type DB interface {
	// Kind reports which engine the handle talks to.
	Kind() Kind

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the handle.
	Close()

	// Query executes a statement and returns its result set. Statements
	// that produce no columns (INSERT, DDL, …) return an empty set.
	Query(ctx context.Context, sql string, args ...any) (Rows, error)

	// Exec executes a statement and returns the number of rows affected.
	Exec(ctx context.Context, sql string, args ...any) (int64, error)

	// ExecScript executes a sequence of statements verbatim.
	ExecScript(ctx context.Context, script string) error
}

// Rows is an abstraction over a database result set.
// Callers must always call Close() when done, even on error.
type Rows interface {
	// Next advances to the next row.
	// Returns false when no more rows exist or on error.
	Next() bool

	// Scan copies the current row's columns into the provided destinations.
	Scan(dest ...any) error

	// Columns returns the column names of the result set.
	Columns() ([]string, error)

	// RowsAffected reports rows changed by a mutation once iteration is
	// done, or -1 when the driver cannot tell.
	RowsAffected() int64

	// Close releases resources held by the result set.
	Close()

	// Err returns any error encountered during iteration.
	Err() error
}
