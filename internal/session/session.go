// Package session sequences connect, setup, generate and execute for one
// user. Each Session owns its handle; nothing is shared across users.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/sqlgenius/internal/connector"
	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/executor"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/koustreak/sqlgenius/internal/nl2sql"
	"github.com/koustreak/sqlgenius/internal/schema"
	"github.com/koustreak/sqlgenius/internal/setup"
)

// User-facing warnings for actions attempted before their inputs exist.
const (
	WarnCredentials  = "Please enter your WatsonX API Key, Project ID, URL, and select a model."
	WarnRequest      = "Please enter a business requirement."
	WarnNotConnected = "Please connect to a database first."
	WarnQuery        = "Please enter a SQL query."
)

const (
	msgSetupDone   = "Database setup completed from SQL file."
	msgSetupFailed = "Error executing SQL script: "
)

// errClosed is reported by every action on a session that was closed while
// a caller still held it.
var errClosed = errs.New(errs.ErrKindNotFound, "session is closed")

// Deps are the collaborators shared by every session.
type Deps struct {
	Connector *connector.Provider
	Executor  *executor.Executor
	Models    nl2sql.Factory

	// DefaultModelID fills Credentials.ModelID when the user leaves it blank.
	DefaultModelID string

	// Per-action bounds; zero means no extra deadline.
	ModelTimeout time.Duration
	ExecTimeout  time.Duration
}

// ConnectOutcome reports a connection attempt and, on success, the schema
// discovered on the new handle.
type ConnectOutcome struct {
	Status connector.Status `json:"status"`
	Schema *schema.Schema   `json:"schema,omitempty"`
}

type SetupOutcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// GenerateOutcome holds exactly one of Generation, Warning or Error.
type GenerateOutcome struct {
	Generation *nl2sql.Generation `json:"generation,omitempty"`
	Warning    string             `json:"warning,omitempty"`
	Error      *executor.Failure  `json:"error,omitempty"`
}

// ExecuteOutcome holds exactly one of Result or Warning.
type ExecuteOutcome struct {
	Result  *executor.Result `json:"result,omitempty"`
	Warning string           `json:"warning,omitempty"`
}

// Session is one user's state: at most one handle, its schema, the last
// generated query and the last result. Replacing any of them discards the
// previous value. Actions are serialised by mu.
type Session struct {
	id   string
	deps *Deps

	mu         sync.Mutex
	creds      nl2sql.Credentials
	db         database.DB
	target     string
	schema     *schema.Schema
	lastQuery  string
	lastResult *executor.Result
	lastUsed   time.Time
	closed     bool
}

func New(id string, deps *Deps) *Session {
	return &Session{id: id, deps: deps, lastUsed: time.Now()}
}

func (s *Session) ID() string { return s.id }

// SetCredentials replaces the model credentials for this session.
func (s *Session) SetCredentials(c nl2sql.Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.touch()

	if strings.TrimSpace(c.ModelID) == "" {
		c.ModelID = s.deps.DefaultModelID
	}
	s.creds = c
}

// Credentials returns the stored credentials with the API key removed.
func (s *Session) Credentials() nl2sql.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.creds
	c.APIKey = ""
	return c
}

// CredentialsComplete reports whether generation can be attempted.
func (s *Session) CredentialsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Complete()
}

// Connect opens and probes a handle for cfg. On success it replaces the
// previous handle and schema; on failure both are left untouched.
func (s *Session) Connect(ctx context.Context, cfg database.Config) ConnectOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ConnectOutcome{Status: connector.Status{Message: errs.Describe(errClosed)}}
	}
	s.touch()

	log := s.logger(ctx)
	db, st := s.deps.Connector.Connect(ctx, cfg)
	if !st.OK {
		log.WarnWith("connect failed", map[string]any{"kind": string(cfg.Kind), "status": st.Message})
		return ConnectOutcome{Status: st}
	}

	if s.db != nil {
		s.db.Close()
	}
	s.db = db
	if cfg.Kind == database.KindSQLite {
		s.target = "sqlite:" + s.deps.Connector.SQLitePath()
	} else {
		s.target = cfg.String()
	}
	s.schema = schema.Extract(ctx, db)
	s.lastResult = nil

	log.InfoWith("connected", map[string]any{"target": s.target, "tables": len(s.schema.Tables)})
	return ConnectOutcome{Status: st, Schema: s.schema}
}

// RunSetup executes script against the local SQLite file. The session's
// own handle is reused when it is SQLite, and its schema is refreshed.
func (s *Session) RunSetup(ctx context.Context, script, source string) SetupOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return SetupOutcome{Message: msgSetupFailed + errs.Describe(errClosed)}
	}
	s.touch()

	db := s.db
	if db == nil || db.Kind() != database.KindSQLite {
		tmp, err := s.deps.Connector.Open(ctx, database.Config{Kind: database.KindSQLite})
		if err != nil {
			return SetupOutcome{Message: msgSetupFailed + errs.Describe(err)}
		}
		defer tmp.Close()
		db = tmp
	}

	if err := setup.Run(ctx, db, script, source); err != nil {
		return SetupOutcome{Message: msgSetupFailed + errs.Describe(err)}
	}
	if db == s.db {
		s.refreshSchema(ctx)
	}
	return SetupOutcome{OK: true, Message: msgSetupDone}
}

// Schema returns the schema of the current handle, or nil when none.
func (s *Session) Schema() *schema.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schema
}

// Connected reports whether the session holds a handle.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db != nil
}

// Generate asks the model for SQL. The schema is re-read from the handle
// first, so the prompt reflects the database as it is now.
func (s *Session) Generate(ctx context.Context, request string) GenerateOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return GenerateOutcome{Error: failure(errClosed)}
	}
	s.touch()

	if !s.creds.Complete() {
		return GenerateOutcome{Warning: WarnCredentials}
	}
	if strings.TrimSpace(request) == "" {
		return GenerateOutcome{Warning: WarnRequest}
	}

	model, err := s.deps.Models(s.creds)
	if err != nil {
		return GenerateOutcome{Error: failure(err)}
	}

	schemaText := nl2sql.NoSchemaText
	if s.db != nil {
		schemaText = s.refreshSchema(ctx).Compact()
	}

	if s.deps.ModelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.ModelTimeout)
		defer cancel()
	}

	gen, err := nl2sql.NewSynthesizer(model).Generate(ctx, request, schemaText)
	if err != nil {
		return GenerateOutcome{Error: failure(err)}
	}
	s.lastQuery = gen.SQL
	return GenerateOutcome{Generation: &gen}
}

// LastQuery is the most recent generated statement.
func (s *Session) LastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery
}

// Execute runs the user-approved query against the session's handle.
func (s *Session) Execute(ctx context.Context, query string) ExecuteOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ExecuteOutcome{Result: &executor.Result{Failure: failure(errClosed)}}
	}
	s.touch()

	if s.db == nil {
		return ExecuteOutcome{Warning: WarnNotConnected}
	}
	if strings.TrimSpace(query) == "" {
		return ExecuteOutcome{Warning: WarnQuery}
	}

	if s.deps.ExecTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.ExecTimeout)
		defer cancel()
	}

	res := s.deps.Executor.Run(ctx, s.db, query)
	s.lastResult = &res
	return ExecuteOutcome{Result: &res}
}

// LastResult is the result of the most recent execution, nil if none.
func (s *Session) LastResult() *executor.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult
}

// Close releases the handle. The session is unusable afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	s.creds = nl2sql.Credentials{}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// refreshSchema re-reads the schema from the handle. A failed read is
// returned for the caller to show but does not replace the stored schema.
// Must be called with mu held and a handle open.
func (s *Session) refreshSchema(ctx context.Context) *schema.Schema {
	fresh := schema.Extract(ctx, s.db)
	if !fresh.Failed() {
		s.schema = fresh
	}
	return fresh
}

// touch must be called with mu held.
func (s *Session) touch() {
	s.lastUsed = time.Now()
}

func (s *Session) logger(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx).With().Str("session", s.id).Logger()
}

func failure(err error) *executor.Failure {
	return &executor.Failure{
		Kind:    errs.KindOf(err).String(),
		Message: logger.Mask(errs.Describe(err)),
	}
}
