// Package sqlite provides a SQLite implementation of database.DB backed by
// database/sql and the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// busy_timeout keeps a setup script and a query on the same file from
// failing immediately with SQLITE_BUSY.
const dsnParams = "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// total_changes() grows by the rows each statement modifies; DDL leaves it
// unchanged.
var totalChanges = database.CounterQuery("SELECT total_changes()")

// Driver is a SQLite implementation of database.DB.
type Driver struct {
	db *sql.DB
}

// New opens the SQLite file at cfg.Path. The file is created on first use;
// nothing is read until the first statement runs.
func New(_ context.Context, cfg *database.Config) (*Driver, error) {
	if cfg.Path == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "sqlite file path is not configured")
	}

	db, err := sql.Open("sqlite", cfg.Path+dsnParams)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid sqlite path", err)
	}
	// A single writer avoids "database is locked" between pooled connections.
	db.SetMaxOpenConns(1)

	return &Driver{db: db}, nil
}

// --- database.DB implementation ---

func (d *Driver) Kind() database.Kind { return database.KindSQLite }

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	_ = d.db.Close()
}

func (d *Driver) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	rows, err := database.QueryCounted(ctx, d.db, totalChanges, totalChanges, query, args...)
	if err != nil {
		return nil, mapError(err, "query failed")
	}
	return rows, nil
}

func (d *Driver) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, "exec failed")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError(err, "rows affected unavailable")
	}
	return n, nil
}

// ExecScript runs every statement in script in order. The driver executes
// the whole text when no arguments are bound; it stops at the first
// failing statement and earlier statements stay applied.
func (d *Driver) ExecScript(ctx context.Context, script string) error {
	if _, err := d.db.ExecContext(ctx, script); err != nil {
		return mapError(err, "setup script failed")
	}
	return nil
}
