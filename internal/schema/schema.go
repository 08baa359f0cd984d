// Package schema discovers the tables and columns of a connected database
// and renders them as text for prompts and display.
package schema

import (
	"context"
	"fmt"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/logger"
)

// FailurePrefix starts the single diagnostic line of a failed extraction.
const FailurePrefix = "-- Failed to extract schema: "

// Reader is the interface for introspecting a database schema
type Reader interface {
	// ListTables returns all user tables in catalog order
	ListTables(ctx context.Context) ([]string, error)

	// InspectTable returns the columns of one table in ordinal order
	InspectTable(ctx context.Context, table string) (*Table, error)
}

// NewReader returns the catalog reader for the handle's engine.
func NewReader(db database.DB) (Reader, error) {
	switch db.Kind() {
	case database.KindPostgres:
		return newPostgresReader(db), nil
	case database.KindMySQL:
		return newMySQLReader(db), nil
	case database.KindSQLite:
		return newSQLiteReader(db), nil
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("no schema reader for kind %q", db.Kind()))
	}
}

// Inspect reads every table through r. Any failure aborts the whole read.
func Inspect(ctx context.Context, r Reader) (*Schema, error) {
	names, err := r.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	s := &Schema{Tables: make([]Table, 0, len(names))}
	for _, name := range names {
		t, err := r.InspectTable(ctx, name)
		if err != nil {
			return nil, err
		}
		s.Tables = append(s.Tables, *t)
	}
	return s, nil
}

// Extract never fails: a read error is folded into the returned schema's
// Diagnostic so callers can still render and embed it.
func Extract(ctx context.Context, db database.DB) *Schema {
	r, err := NewReader(db)
	if err == nil {
		var s *Schema
		if s, err = Inspect(ctx, r); err == nil {
			logger.FromContext(ctx).Debugf("extracted schema with %d tables", len(s.Tables))
			return s
		}
	}

	msg := logger.Mask(err.Error())
	logger.FromContext(ctx).WarnWith("schema extraction failed", map[string]any{"error": msg})
	return &Schema{Tables: []Table{}, Diagnostic: FailurePrefix + msg}
}
