package nl2sql

import "strings"

// Sentinel is returned in place of SQL when the model produced nothing
// usable. It is a comment, so executing it is harmless.
const Sentinel = "-- Error: No valid SQL statement found."

// Clean removes every ```sql and ``` fence marker, wherever it appears,
// and trims surrounding whitespace.
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, "```sql", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
