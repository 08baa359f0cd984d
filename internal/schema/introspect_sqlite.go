package schema

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
)

// sqliteColumns reads the table_info pragma as a table-valued function so
// the table name can be bound instead of spliced into the statement.
const sqliteColumns = `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`

// sqliteReader implements Reader for SQLite using sqlite_master.
type sqliteReader struct {
	db database.DB
}

func newSQLiteReader(db database.DB) *sqliteReader {
	return &sqliteReader{db: db}
}

// ListTables returns user tables ordered by name, skipping SQLite's own
// sqlite_* bookkeeping tables.
func (r *sqliteReader) ListTables(ctx context.Context) ([]string, error) {
	q, args, err := sq.Select("name").
		From("sqlite_master").
		Where(sq.Eq{"type": "table"}).
		Where(sq.NotLike{"name": "sqlite_%"}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "build table listing", err)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "scan table name", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "list tables", err)
	}
	return tables, nil
}

// InspectTable returns column details for a single table
func (r *sqliteReader) InspectTable(ctx context.Context, table string) (*Table, error) {
	rows, err := r.db.Query(ctx, sqliteColumns, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := &Table{Name: table, Columns: make([]Column, 0)}
	for rows.Next() {
		var (
			col         Column
			notNull, pk int64
		)
		if err := rows.Scan(&col.Name, &col.DataType, &notNull, &pk); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "scan column of "+table, err)
		}
		// pk is the 1-based position within the key, 0 otherwise.
		col.Nullable = notNull == 0 && pk == 0
		col.IsPrimary = pk > 0
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "inspect table "+table, err)
	}
	return t, nil
}
