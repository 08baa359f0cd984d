package mysql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	gomysql "github.com/go-sql-driver/mysql"
	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDriver(t *testing.T) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	return newMockDriverWith(t, sqlmock.New)
}

// newMockDriverWith infers sqlmock's unexported option type from newMock.
func newMockDriverWith[O any](t *testing.T, newMock func(...O) (*sql.DB, sqlmock.Sqlmock, error), opts ...O) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := newMock(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return wrap(db), mock
}

func TestBuildDSN_RoundTripsReservedCharacters(t *testing.T) {
	dsn := buildDSN(&database.Config{
		Kind:     database.KindMySQL,
		Host:     "localhost",
		Port:     "3306",
		User:     "root",
		Password: "p@ss:w/rd",
		Database: "shop",
	})

	parsed, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", parsed.User)
	assert.Equal(t, "p@ss:w/rd", parsed.Passwd)
	assert.Equal(t, "localhost:3306", parsed.Addr)
	assert.Equal(t, "shop", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.False(t, parsed.MultiStatements)
}

func TestDriver_Query(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(1), []byte("ana")).
			AddRow(int64(2), []byte("bo")))

	rows, err := d.Query(context.Background(), "SELECT id, name FROM users")
	require.NoError(t, err)

	table, err := database.ScanTable(rows, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, table.Columns)
	assert.Equal(t, [][]any{{int64(1), "ana"}, {int64(2), "bo"}}, table.Rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriver_QueryMutationReportsRowCount(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM users WHERE id = 1")).
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT ROW_COUNT()")).
		WillReturnRows(sqlmock.NewRows([]string{"ROW_COUNT()"}).AddRow(int64(1)))

	rows, err := d.Query(context.Background(), "DELETE FROM users WHERE id = 1")
	require.NoError(t, err)

	table, err := database.ScanTable(rows, 0)
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Equal(t, int64(1), table.RowsAffected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriver_QuerySyntaxError(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectQuery("SELEC").
		WillReturnError(&gomysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"})

	_, err := d.Query(context.Background(), "SELEC 1")
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
	assert.Contains(t, err.Error(), "You have an error in your SQL syntax")
}

func TestDriver_Exec(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET name = ? WHERE id = ?")).
		WithArgs("cy", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := d.Exec(context.Background(), "UPDATE users SET name = ? WHERE id = ?", "cy", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDriver_PingAccessDenied(t *testing.T) {
	d, mock := newMockDriverWith(t, sqlmock.New, sqlmock.MonitorPingsOption(true))

	mock.ExpectPing().WillReturnError(&gomysql.MySQLError{Number: 1045, Message: "Access denied for user 'root'@'localhost'"})

	err := d.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsConnectionFailed(err))
}

func TestDriver_ExecScriptUnsupported(t *testing.T) {
	d, _ := newMockDriver(t)
	err := d.ExecScript(context.Background(), "CREATE TABLE t (id INT);")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestClassifyMySQLCode(t *testing.T) {
	assert.Equal(t, errs.ErrKindConnectionFailed, classifyMySQLCode(1049))
	assert.Equal(t, errs.ErrKindPermissionDenied, classifyMySQLCode(1142))
	assert.Equal(t, errs.ErrKindTimeout, classifyMySQLCode(1317))
	assert.Equal(t, errs.ErrKindQueryFailed, classifyMySQLCode(1146))
}
