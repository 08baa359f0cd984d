package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/koustreak/sqlgenius/internal/connector"
	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/executor"
	"github.com/koustreak/sqlgenius/internal/nl2sql"
	"github.com/koustreak/sqlgenius/internal/session"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedModel string

func (m cannedModel) ID() string { return "canned" }

func (m cannedModel) Complete(context.Context, string) (string, error) {
	return string(m), nil
}

func newCLISession(t *testing.T, reply string) *session.Session {
	t.Helper()
	s := session.New("cli", &session.Deps{
		Connector: connector.New(filepath.Join(t.TempDir(), "sample.db")),
		Executor:  executor.New(0),
		Models: func(nl2sql.Credentials) (nl2sql.Model, error) {
			return cannedModel(reply), nil
		},
		DefaultModelID: nl2sql.DefaultModelID,
	})
	t.Cleanup(s.Close)
	return s
}

func TestRunAsk_SetupGenerateExecute(t *testing.T) {
	pterm.DisableStyling()
	t.Setenv(envAPIKey, "key")

	script := filepath.Join(t.TempDir(), "seed.sql")
	require.NoError(t, os.WriteFile(script, []byte("CREATE TABLE t(id INTEGER); INSERT INTO t VALUES (1);"), 0o600))

	o := &askOptions{
		kind:      "sqlite",
		setupFile: script,
		projectID: "p",
		baseURL:   "https://example.invalid",
		yes:       true,
	}
	var out bytes.Buffer
	sess := newCLISession(t, "```sql\nSELECT * FROM t;\n```")

	err := runAsk(context.Background(), sess, o, "show all rows in t", strings.NewReader(""), &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Database setup completed from SQL file.")
	assert.Contains(t, text, "Connection successful!")
	assert.Contains(t, text, "t(id INTEGER)")
	assert.Contains(t, text, "SELECT * FROM t;")
	assert.Contains(t, text, "id")
}

func TestRunAsk_MissingCredentials(t *testing.T) {
	t.Setenv(envAPIKey, "")
	sess := newCLISession(t, "SELECT 1;")

	err := runAsk(context.Background(), sess, &askOptions{kind: "sqlite"}, "anything", strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), session.WarnCredentials)
}

func TestRunAsk_Declined(t *testing.T) {
	pterm.DisableStyling()
	t.Setenv(envAPIKey, "key")
	sess := newCLISession(t, "SELECT 1;")

	o := &askOptions{kind: "sqlite", projectID: "p", baseURL: "https://example.invalid"}
	var out bytes.Buffer
	require.NoError(t, runAsk(context.Background(), sess, o, "anything", strings.NewReader("n\n"), &out))
	assert.Contains(t, out.String(), "Cancelled.")
	assert.Nil(t, sess.LastResult())
}

func TestRunAsk_BadKind(t *testing.T) {
	sess := newCLISession(t, "")
	err := runAsk(context.Background(), sess, &askOptions{kind: "oracle"}, "x", strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestReview(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"yes", "y\n", "SELECT 1"},
		{"yes word", "YES\n", "SELECT 1"},
		{"default no", "\n", ""},
		{"eof", "", ""},
		{"edit", "e\nSELECT 2\nFROM t\n\n", "SELECT 2\nFROM t"},
		{"edit until eof", "edit\nSELECT 3", "SELECT 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := review(strings.NewReader(tt.input), &bytes.Buffer{}, "SELECT 1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTableData(t *testing.T) {
	data := tableData(&database.Table{
		Columns: []string{"id", "name"},
		Rows:    [][]any{{int64(1), "ana"}, {int64(2), nil}},
	})
	assert.Equal(t, [][]string{{"id", "name"}, {"1", "ana"}, {"2", "NULL"}}, data)
}

func TestRenderTable_NoColumns(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderTable(&out, &database.Table{RowsAffected: 3}))
	assert.Equal(t, "3 row(s) affected\n", out.String())
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "sqlgenius "+Version+"\n", out.String())
}
