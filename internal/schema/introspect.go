package schema

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
)

// catalogReader implements Reader over information_schema, shared by
// PostgreSQL and MySQL. The dialects differ only in placeholder style,
// how the current schema is named and where primary keys are recorded.
type catalogReader struct {
	db          database.DB
	sb          sq.StatementBuilderType
	schemaExpr  string
	typeColumn  string
	primaryCol  string
	primaryJoin string
}

// pgPrimaryKeys flags primary key columns; information_schema.columns has
// no key marker in PostgreSQL.
const pgPrimaryKeys = `(
	SELECT kcu.table_schema, kcu.table_name, kcu.column_name, true AS is_pk
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
		AND tc.table_name = kcu.table_name
	WHERE tc.constraint_type = 'PRIMARY KEY'
) pk ON pk.table_schema = c.table_schema
	AND pk.table_name = c.table_name
	AND pk.column_name = c.column_name`

func newPostgresReader(db database.DB) *catalogReader {
	return &catalogReader{
		db:          db,
		sb:          sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		schemaExpr:  "current_schema()",
		typeColumn:  "c.data_type",
		primaryCol:  "COALESCE(pk.is_pk, false)",
		primaryJoin: pgPrimaryKeys,
	}
}

// MySQL treats the schema as the database, and column_type keeps lengths
// such as varchar(50).
func newMySQLReader(db database.DB) *catalogReader {
	return &catalogReader{
		db:         db,
		sb:         sq.StatementBuilder.PlaceholderFormat(sq.Question),
		schemaExpr: "DATABASE()",
		typeColumn: "c.column_type",
		primaryCol: "c.column_key = 'PRI'",
	}
}

func (r *catalogReader) listTablesQuery() (string, []any, error) {
	return r.sb.
		Select("t.table_name").
		From("information_schema.tables t").
		Where("t.table_schema = " + r.schemaExpr).
		Where(sq.Eq{"t.table_type": "BASE TABLE"}).
		OrderBy("t.table_name").
		ToSql()
}

func (r *catalogReader) columnsQuery(table string) (string, []any, error) {
	qb := r.sb.
		Select(
			"c.column_name",
			r.typeColumn,
			"c.is_nullable = 'YES'",
			r.primaryCol,
		).
		From("information_schema.columns c")
	if r.primaryJoin != "" {
		qb = qb.LeftJoin(r.primaryJoin)
	}
	return qb.
		Where("c.table_schema = " + r.schemaExpr).
		Where(sq.Eq{"c.table_name": table}).
		OrderBy("c.ordinal_position").
		ToSql()
}

// ListTables returns all base tables in the current schema ordered by name
func (r *catalogReader) ListTables(ctx context.Context) ([]string, error) {
	q, args, err := r.listTablesQuery()
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
func (r *catalogReader) InspectTable(ctx context.Context, table string) (*Table, error) {
	q, args, err := r.columnsQuery(table)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "build column listing", err)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := &Table{Name: table, Columns: make([]Column, 0)}
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &col.IsPrimary); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "scan column of "+table, err)
		}
		t.Columns = append(t.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "inspect table "+table, err)
	}
	return t, nil
}
