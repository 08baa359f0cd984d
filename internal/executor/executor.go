// Package executor runs user-approved SQL against a session's handle and
// reports the outcome as a value rather than an error.
package executor

import (
	"context"
	"strings"
	"time"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/koustreak/sqlgenius/internal/observability"
)

// Failure describes a statement the database rejected.
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is exactly one of Table or Failure.
type Result struct {
	Table   *database.Table `json:"table,omitempty"`
	Failure *Failure        `json:"failure,omitempty"`
}

// OK reports whether the statement ran.
func (r Result) OK() bool { return r.Failure == nil }

// Executor runs statements with an optional row cap.
type Executor struct {
	// MaxRows caps materialised rows; 0 keeps every row.
	MaxRows int
}

func New(maxRows int) *Executor {
	return &Executor{MaxRows: maxRows}
}

// Run executes query and materialises its result. Statements without
// result columns commit under the driver's autocommit and report
// RowsAffected. Database errors become a Failure; the handle stays usable.
func (e *Executor) Run(ctx context.Context, db database.DB, query string) Result {
	if strings.TrimSpace(query) == "" {
		return fail(errs.New(errs.ErrKindInvalidInput, "query is empty"))
	}

	log := logger.FromContext(ctx).With().Str("kind", string(db.Kind())).Logger()
	start := time.Now()

	table, err := e.run(ctx, db, query)
	observability.ObserveExecution(string(db.Kind()), err == nil, time.Since(start))
	if err != nil {
		log.WarnWith("query failed", map[string]any{"error": logger.Mask(err.Error())})
		return fail(err)
	}

	log.Debugf("query returned %d rows in %s", len(table.Rows), time.Since(start))
	return Result{Table: table}
}

func (e *Executor) run(ctx context.Context, db database.DB, query string) (*database.Table, error) {
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return database.ScanTable(rows, e.MaxRows)
}

func fail(err error) Result {
	return Result{Failure: &Failure{
		Kind:    errs.KindOf(err).String(),
		Message: errs.Describe(err),
	}}
}
