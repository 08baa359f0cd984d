package cli

import (
	"fmt"
	"io"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/pterm/pterm"
)

// renderTable prints a result set, or the affected-row count for
// statements that return no columns.
func renderTable(out io.Writer, t *database.Table) error {
	if len(t.Columns) == 0 {
		fmt.Fprintf(out, "%d row(s) affected\n", t.RowsAffected)
		return nil
	}

	text, err := pterm.DefaultTable.WithHasHeader().WithData(tableData(t)).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	if t.Truncated {
		fmt.Fprintf(out, "(showing first %d rows)\n", len(t.Rows))
	}
	return nil
}

func tableData(t *database.Table) [][]string {
	data := make([][]string, 0, len(t.Rows)+1)
	data = append(data, t.Columns)
	for _, row := range t.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "NULL"
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		data = append(data, cells)
	}
	return data
}
