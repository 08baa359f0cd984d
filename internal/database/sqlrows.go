package database

import (
	"context"
	"database/sql"
)

// ChangeCounter reads a connection-scoped count of modified rows, such as
// SQLite's total_changes() or MySQL's ROW_COUNT().
type ChangeCounter func(ctx context.Context, conn *sql.Conn) (int64, error)

// CounterQuery builds a ChangeCounter from a single-value SELECT.
func CounterQuery(query string) ChangeCounter {
	return func(ctx context.Context, conn *sql.Conn) (int64, error) {
		var n int64
		err := conn.QueryRowContext(ctx, query).Scan(&n)
		return n, err
	}
}

// SQLRows adapts *sql.Rows to Rows for drivers built on database/sql.
type SQLRows struct {
	rows *sql.Rows

	// Set by QueryCounted; the pinned connection lets the change counter
	// observe the statement that produced rows.
	ctx      context.Context
	conn     *sql.Conn
	counter  ChangeCounter
	baseline int64
}

// WrapSQLRows wraps rows returned by (*sql.DB).QueryContext.
func WrapSQLRows(rows *sql.Rows) *SQLRows {
	return &SQLRows{rows: rows}
}

// QueryCounted runs query on a connection pinned from db so that
// RowsAffected can read counter on the same connection afterwards. When
// baseline is set it is read before the query and subtracted from the
// counter; otherwise the counter is taken as the statement's own count.
// The connection goes back to the pool on Close.
func QueryCounted(ctx context.Context, db *sql.DB, baseline, counter ChangeCounter, query string, args ...any) (*SQLRows, error) {
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, err
	}

	r := &SQLRows{ctx: ctx, conn: conn, counter: counter}
	if baseline != nil {
		if r.baseline, err = baseline(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	r.rows, err = conn.QueryContext(ctx, query, args...)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLRows) Next() bool                 { return r.rows.Next() }
func (r *SQLRows) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *SQLRows) Columns() ([]string, error) { return r.rows.Columns() }
func (r *SQLRows) Err() error                 { return r.rows.Err() }

func (r *SQLRows) Close() {
	_ = r.rows.Close()
	if r.conn != nil {
		_ = r.conn.Close()
		r.conn = nil
	}
}

// RowsAffected reads the change counter once the result set is drained.
// It is -1 for plain wrapped rows or when the counter cannot be read.
func (r *SQLRows) RowsAffected() int64 {
	if r.conn == nil || r.counter == nil {
		return -1
	}
	// The connection is busy until the result set is closed.
	_ = r.rows.Close()
	n, err := r.counter(r.ctx, r.conn)
	if err != nil {
		return -1
	}
	return n - r.baseline
}
