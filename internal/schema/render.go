package schema

import "strings"

// Compact renders one "table(col1, col2)" line per table, joined by
// newlines. This is the form embedded in model prompts.
func (s *Schema) Compact() string {
	if s.Failed() {
		return s.Diagnostic
	}
	lines := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		lines = append(lines, t.Name+"("+strings.Join(t.ColumnNames(), ", ")+")")
	}
	return strings.Join(lines, "\n")
}

// Detailed renders one "table(col1 TYPE, col2 TYPE)" line per table for
// display after connecting.
func (s *Schema) Detailed() string {
	if s.Failed() {
		return s.Diagnostic
	}
	lines := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		defs := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			defs[i] = c.Name
			if c.DataType != "" {
				defs[i] += " " + strings.ToUpper(c.DataType)
			}
		}
		lines = append(lines, t.Name+"("+strings.Join(defs, ", ")+")")
	}
	return strings.Join(lines, "\n")
}
