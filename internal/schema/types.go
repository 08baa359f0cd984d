package schema

// Column describes a single column in a table.
type Column struct {
	Name      string `json:"name"`
	DataType  string `json:"data_type"`
	Nullable  bool   `json:"nullable"`
	IsPrimary bool   `json:"is_primary"`
}

// Table describes a table and its columns in ordinal order.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is the introspected structure of one database.
//
// When extraction failed, Tables is empty and Diagnostic carries the
// failure line instead.
type Schema struct {
	Tables     []Table `json:"tables"`
	Diagnostic string  `json:"diagnostic,omitempty"`
}

// Failed reports whether the schema holds a diagnostic instead of tables.
func (s *Schema) Failed() bool {
	return s.Diagnostic != ""
}

// ColumnNames returns the table's column names in order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}
