package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Driver {
	t.Helper()
	d, err := New(context.Background(), &database.Config{
		Kind: database.KindSQLite,
		Path: filepath.Join(t.TempDir(), "sample.db"),
	})
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(context.Background(), &database.Config{Kind: database.KindSQLite})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestDriver_ExecScriptThenQuery(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	require.NoError(t, d.Ping(ctx))
	require.NoError(t, d.ExecScript(ctx, `
		CREATE TABLE t (id INTEGER, label TEXT);
		INSERT INTO t VALUES (1, 'one');
		INSERT INTO t VALUES (2, 'two');
	`))

	rows, err := d.Query(ctx, "SELECT id, label FROM t ORDER BY id")
	require.NoError(t, err)
	table, err := database.ScanTable(rows, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "label"}, table.Columns)
	assert.Equal(t, [][]any{{int64(1), "one"}, {int64(2), "two"}}, table.Rows)
}

func TestDriver_Exec(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	require.NoError(t, d.ExecScript(ctx, "CREATE TABLE t (id INTEGER); INSERT INTO t VALUES (1), (2), (3);"))

	n, err := d.Exec(ctx, "DELETE FROM t WHERE id > ?", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDriver_QueryErrorKeepsHandleUsable(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	_, err := d.Query(ctx, "SELECT * FROM missing_table")
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
	assert.Contains(t, err.Error(), "no such table")

	rows, err := d.Query(ctx, "SELECT 1")
	require.NoError(t, err)
	table, err := database.ScanTable(rows, 0)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

func TestDriver_ExecScriptStopsAtFirstError(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	err := d.ExecScript(ctx, "CREATE TABLE a (id INTEGER); CREATE TABLE a (id INTEGER); CREATE TABLE b (id INTEGER);")
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))

	rows, err := d.Query(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	require.NoError(t, err)
	table, err := database.ScanTable(rows, 0)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a"}}, table.Rows)
}
