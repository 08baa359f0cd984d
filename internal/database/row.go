package database

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/koustreak/sqlgenius/internal/errs"
)

// Table is a fully materialised result set: ordered named columns and
// ordered rows, each row holding one value per column.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`

	// RowsAffected is set for statements that return no columns, -1 when unknown.
	RowsAffected int64 `json:"rows_affected"`

	// Truncated is true when a row cap stopped materialisation early.
	Truncated bool `json:"truncated,omitempty"`
}

// ScanTable reads every row from the result set into a Table.
// maxRows <= 0 means no cap; otherwise at most maxRows rows are kept and
// Truncated reports whether more were available.
//
// The returned Rows slice is always non-nil (empty slice on zero rows).
// ScanTable always closes rows.
func ScanTable(rows Rows, maxRows int) (*Table, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to read column names", err)
	}

	t := &Table{Columns: columns, Rows: make([][]any, 0)}

	for rows.Next() {
		if maxRows > 0 && len(t.Rows) >= maxRows {
			t.Truncated = true
			break
		}

		// Allocate scan targets as *any so the driver can write any type.
		dest := make([]any, len(columns))
		destPtrs := make([]any, len(columns))
		for i := range dest {
			destPtrs[i] = &dest[i]
		}

		if err := rows.Scan(destPtrs...); err != nil {
			return nil, errs.Wrap(errs.ErrKindQueryFailed, "failed to scan row", err)
		}
		for i := range dest {
			dest[i] = normalize(dest[i])
		}
		t.Rows = append(t.Rows, dest)
	}

	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindQueryFailed, "error during row iteration", err)
	}

	t.RowsAffected = -1
	if len(columns) == 0 {
		t.RowsAffected = rows.RowsAffected()
	}
	return t, nil
}

// normalize turns driver-specific values into plain Go values that render
// and marshal cleanly.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case driver.Valuer:
		val, err := x.Value()
		if err != nil {
			return fmt.Sprint(x)
		}
		return normalize(val)
	default:
		return v
	}
}
