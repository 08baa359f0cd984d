// Package mysql provides a MySQL implementation of database.DB backed by
// database/sql and go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver
)

// ROW_COUNT() reports the previous statement's changed rows on the same
// connection, 0 after DDL.
var rowCount = database.CounterQuery("SELECT ROW_COUNT()")

// Driver is a MySQL implementation of database.DB backed by database/sql.
type Driver struct {
	db *sql.DB
}

// New opens a MySQL connection pool for cfg. sql.Open does not dial, so
// reachability and credentials are only checked by the first statement.
func New(_ context.Context, cfg *database.Config) (*Driver, error) {
	db, err := sql.Open("mysql", buildDSN(cfg))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid mysql connection parameters", err)
	}
	applyPool(db, cfg)

	return wrap(db), nil
}

func wrap(db *sql.DB) *Driver {
	return &Driver{db: db}
}

// --- database.DB implementation ---

func (d *Driver) Kind() database.Kind { return database.KindMySQL }

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
	rows, err := database.QueryCounted(ctx, d.db, nil, rowCount, query, args...)
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

// ExecScript is rejected: the DSN never enables multiStatements, and bulk
// setup is a SQLite-only feature.
func (d *Driver) ExecScript(_ context.Context, _ string) error {
	return errs.New(errs.ErrKindInvalidInput, "setup scripts are only supported for SQLite")
}
