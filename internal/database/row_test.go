package database

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRows struct {
	columns  []string
	data     [][]any
	pos      int
	affected int64
	iterErr  error
	closed   bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	for i := range dest {
		*(dest[i].(*any)) = row[i]
	}
	return nil
}

func (r *fakeRows) Columns() ([]string, error) { return r.columns, nil }
func (r *fakeRows) RowsAffected() int64        { return r.affected }
func (r *fakeRows) Close()                     { r.closed = true }
func (r *fakeRows) Err() error                 { return r.iterErr }

func TestScanTable(t *testing.T) {
	rows := &fakeRows{
		columns: []string{"id", "name"},
		data:    [][]any{{int64(1), []byte("ana")}, {int64(2), nil}},
	}

	table, err := ScanTable(rows, 0)
	require.NoError(t, err)
	assert.True(t, rows.closed)
	assert.Equal(t, []string{"id", "name"}, table.Columns)
	assert.Equal(t, [][]any{{int64(1), "ana"}, {int64(2), nil}}, table.Rows)
	assert.Equal(t, int64(-1), table.RowsAffected)
	assert.False(t, table.Truncated)
}

func TestScanTable_EmptyResultIsNonNil(t *testing.T) {
	table, err := ScanTable(&fakeRows{columns: []string{"id"}}, 0)
	require.NoError(t, err)
	assert.NotNil(t, table.Rows)
	assert.Empty(t, table.Rows)
}

func TestScanTable_MaxRows(t *testing.T) {
	rows := &fakeRows{
		columns: []string{"n"},
		data:    [][]any{{1}, {2}, {3}},
	}

	table, err := ScanTable(rows, 2)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)
	assert.True(t, table.Truncated)
}

func TestScanTable_NoColumnsReportsRowsAffected(t *testing.T) {
	table, err := ScanTable(&fakeRows{affected: 3}, 0)
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Equal(t, int64(3), table.RowsAffected)
}

func TestScanTable_IterationError(t *testing.T) {
	rows := &fakeRows{columns: []string{"id"}, iterErr: errors.New("connection reset")}

	_, err := ScanTable(rows, 0)
	require.Error(t, err)
	assert.True(t, rows.closed)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNormalize_UUID(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	assert.Equal(t, id.String(), normalize([16]byte(id)))
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Kind: KindPostgres, User: "postgres", Database: "shop"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)

	bad := &Config{Kind: KindMySQL, Port: "abc", User: "root", Database: "shop"}
	assert.Error(t, bad.Validate())

	noPath := &Config{Kind: KindSQLite}
	assert.Error(t, noPath.Validate())
}

func TestConfig_StringHidesPassword(t *testing.T) {
	cfg := Config{Kind: KindMySQL, Host: "db", Port: "3306", User: "root", Password: "s3cret", Database: "shop"}
	assert.Equal(t, "mysql://root@db:3306/shop", cfg.String())
	assert.NotContains(t, cfg.String(), "s3cret")
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"SQLite":     KindSQLite,
		"PostgreSQL": KindPostgres,
		"postgres":   KindPostgres,
		" MySQL ":    KindMySQL,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseKind("oracle")
	assert.Error(t, err)
}
