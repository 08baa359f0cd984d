package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/koustreak/sqlgenius/internal/nl2sql"
	"github.com/koustreak/sqlgenius/internal/session"
	"github.com/koustreak/sqlgenius/internal/setup"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Secrets are read from the environment only, never from flags.
const (
	envAPIKey     = "SQLGENIUS_API_KEY"
	envDBPassword = "SQLGENIUS_DB_PASSWORD"
)

type askOptions struct {
	kind      string
	host      string
	port      string
	user      string
	database  string
	setupFile string

	provider  string
	projectID string
	baseURL   string
	modelID   string

	yes bool
}

func newAskCommand() *cobra.Command {
	var o askOptions
	cmd := &cobra.Command{
		Use:   "ask [request]",
		Short: "Generate SQL for a request, review it, then run it",
		Long: `ask connects to a database, generates a query for the request and shows
it for review. The query runs only after it is confirmed or edited.

The model API key is read from ` + envAPIKey + ` and the database password
from ` + envDBPassword + `.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.Log.Output = cmd.ErrOrStderr()
			ctx := logger.New(&cfg.Log).WithContext(cmd.Context())

			sess := session.New("cli", newDeps(cfg))
			defer sess.Close()
			return runAsk(ctx, sess, &o, strings.Join(args, " "), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.kind, "kind", "sqlite", "database kind: sqlite, postgres or mysql")
	f.StringVar(&o.host, "host", "localhost", "database host")
	f.StringVar(&o.port, "port", "", "database port (default depends on kind)")
	f.StringVar(&o.user, "user", "", "database user (default depends on kind)")
	f.StringVar(&o.database, "database", "", "database name")
	f.StringVar(&o.setupFile, "setup", "", "SQL script to run against the local SQLite file first")
	f.StringVar(&o.provider, "provider", "", "model provider: watsonx or openai")
	f.StringVar(&o.projectID, "project-id", "", "model project id")
	f.StringVar(&o.baseURL, "url", "", "model API base URL")
	f.StringVar(&o.modelID, "model", "", "model id")
	f.BoolVarP(&o.yes, "yes", "y", false, "run the generated query without asking")
	return cmd
}

func runAsk(ctx context.Context, sess *session.Session, o *askOptions, request string, in io.Reader, out io.Writer) error {
	kind, err := database.ParseKind(o.kind)
	if err != nil {
		return err
	}
	provider, err := nl2sql.ParseProvider(o.provider)
	if err != nil {
		return err
	}

	if o.setupFile != "" {
		script, err := os.ReadFile(o.setupFile)
		if err != nil {
			return errs.Wrap(errs.ErrKindInvalidInput, "read setup script", err)
		}
		st := sess.RunSetup(ctx, string(script), setup.SourceUpload)
		if !st.OK {
			return errs.New(errs.ErrKindQueryFailed, st.Message)
		}
		fmt.Fprintln(out, pterm.Success.Sprint(st.Message))
	}

	user := o.user
	if user == "" {
		user = kind.DefaultUser()
	}
	conn := sess.Connect(ctx, database.Config{
		Kind:     kind,
		Host:     o.host,
		Port:     o.port,
		User:     user,
		Password: os.Getenv(envDBPassword),
		Database: o.database,
	})
	if !conn.Status.OK {
		return errs.New(errs.ErrKindConnectionFailed, conn.Status.Message)
	}
	fmt.Fprintln(out, pterm.Success.Sprint(conn.Status.Message))
	if len(conn.Schema.Tables) > 0 || conn.Schema.Failed() {
		fmt.Fprintln(out, pterm.DefaultBox.WithTitle("Schema").Sprint(conn.Schema.Detailed()))
	}

	sess.SetCredentials(nl2sql.Credentials{
		Provider:  provider,
		APIKey:    os.Getenv(envAPIKey),
		ProjectID: o.projectID,
		BaseURL:   o.baseURL,
		ModelID:   o.modelID,
	})

	gen := sess.Generate(ctx, request)
	switch {
	case gen.Warning != "":
		return errs.New(errs.ErrKindPreconditionFailed, gen.Warning)
	case gen.Error != nil:
		return errs.New(errs.ErrKindGenerationFailed, gen.Error.Message)
	case gen.Generation.Sentinel:
		fmt.Fprintln(out, pterm.Warning.Sprint(gen.Generation.SQL))
		return nil
	}

	query := gen.Generation.SQL
	fmt.Fprintln(out, pterm.DefaultBox.WithTitle("Generated SQL").Sprint(query))
	if !o.yes {
		query, err = review(in, out, query)
		if err != nil {
			return err
		}
		if query == "" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	ex := sess.Execute(ctx, query)
	if ex.Warning != "" {
		return errs.New(errs.ErrKindPreconditionFailed, ex.Warning)
	}
	if !ex.Result.OK() {
		fmt.Fprintln(out, pterm.Error.Sprint(ex.Result.Failure.Message))
		return nil
	}
	return renderTable(out, ex.Result.Table)
}

// review asks whether to run query. It returns the query to run, an edited
// replacement, or "" when the user declines.
func review(in io.Reader, out io.Writer, query string) (string, error) {
	r := bufio.NewReader(in)
	fmt.Fprint(out, "Run this query? [y]es / [e]dit / [N]o: ")
	answer, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return query, nil
	case "e", "edit":
		fmt.Fprintln(out, "Enter the query, finish with an empty line:")
		var lines []string
		for {
			line, err := r.ReadString('\n')
			line = strings.TrimRight(line, "\r\n")
			if line == "" {
				break
			}
			lines = append(lines, line)
			if err != nil {
				break
			}
		}
		return strings.TrimSpace(strings.Join(lines, "\n")), nil
	default:
		return "", nil
	}
}
