package executor

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.New(ctx, &database.Config{
		Kind: database.KindSQLite,
		Path: filepath.Join(t.TempDir(), "sample.db"),
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.ExecScript(ctx, `
		CREATE TABLE t (id INTEGER, label TEXT);
		INSERT INTO t VALUES (1, 'a'), (2, 'b'), (3, 'c');
	`))
	return db
}

func TestRun_Select(t *testing.T) {
	res := New(0).Run(context.Background(), openSQLite(t), "SELECT id, label FROM t ORDER BY id")

	require.True(t, res.OK())
	assert.Equal(t, []string{"id", "label"}, res.Table.Columns)
	assert.Equal(t, [][]any{{int64(1), "a"}, {int64(2), "b"}, {int64(3), "c"}}, res.Table.Rows)
	assert.False(t, res.Table.Truncated)
}

func TestRun_MaxRows(t *testing.T) {
	res := New(2).Run(context.Background(), openSQLite(t), "SELECT id FROM t ORDER BY id")

	require.True(t, res.OK())
	assert.Len(t, res.Table.Rows, 2)
	assert.True(t, res.Table.Truncated)
}

func TestRun_InvalidStatementLeavesHandleUsable(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	ex := New(0)

	res := ex.Run(ctx, db, "SELEC nonsense FROM")
	require.False(t, res.OK())
	assert.Nil(t, res.Table)
	assert.Equal(t, "query_failed", res.Failure.Kind)
	assert.Contains(t, res.Failure.Message, "syntax error")

	res = ex.Run(ctx, db, "SELECT COUNT(*) AS n FROM t")
	require.True(t, res.OK())
	assert.Equal(t, [][]any{{int64(3)}}, res.Table.Rows)
}

func TestRun_MutationCommits(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	ex := New(0)

	res := ex.Run(ctx, db, "DELETE FROM t WHERE id = 1")
	require.True(t, res.OK())
	assert.Empty(t, res.Table.Columns)
	assert.Empty(t, res.Table.Rows)
	assert.Equal(t, int64(1), res.Table.RowsAffected)

	res = ex.Run(ctx, db, "SELECT id FROM t ORDER BY id")
	require.True(t, res.OK())
	assert.Equal(t, [][]any{{int64(2)}, {int64(3)}}, res.Table.Rows)
}

func TestRun_RowsAffected(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)
	ex := New(0)

	res := ex.Run(ctx, db, "UPDATE t SET label = 'z' WHERE id > 1")
	require.True(t, res.OK())
	assert.Equal(t, int64(2), res.Table.RowsAffected)

	res = ex.Run(ctx, db, "CREATE TABLE u (id INTEGER)")
	require.True(t, res.OK())
	assert.Equal(t, int64(0), res.Table.RowsAffected)

	res = ex.Run(ctx, db, "SELECT id FROM t")
	require.True(t, res.OK())
	assert.Equal(t, int64(-1), res.Table.RowsAffected)
}

func TestRun_EmptyQuery(t *testing.T) {
	res := New(0).Run(context.Background(), openSQLite(t), "   ")
	require.False(t, res.OK())
	assert.Equal(t, "invalid_input", res.Failure.Kind)
}
