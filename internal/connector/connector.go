// Package connector turns user-supplied connection parameters into a live
// database.DB and checks that it can actually run a statement.
package connector

import (
	"context"
	"fmt"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/database/mysql"
	"github.com/koustreak/sqlgenius/internal/database/postgres"
	"github.com/koustreak/sqlgenius/internal/database/sqlite"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/koustreak/sqlgenius/internal/observability"
)

// Opener creates a handle for one engine without contacting the server.
type Opener func(ctx context.Context, cfg *database.Config) (database.DB, error)

// Provider opens handles. SQLite always targets the provider's fixed local
// file; the caller's connection fields are ignored for it.
type Provider struct {
	sqlitePath string
	openers    map[database.Kind]Opener
}

// New returns a Provider wired to the built-in drivers.
func New(sqlitePath string) *Provider {
	p := &Provider{
		sqlitePath: sqlitePath,
		openers:    make(map[database.Kind]Opener, len(database.Kinds)),
	}
	p.Register(database.KindPostgres, func(ctx context.Context, cfg *database.Config) (database.DB, error) {
		d, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
	p.Register(database.KindMySQL, func(ctx context.Context, cfg *database.Config) (database.DB, error) {
		d, err := mysql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
	p.Register(database.KindSQLite, func(ctx context.Context, cfg *database.Config) (database.DB, error) {
		d, err := sqlite.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
	return p
}

// Register replaces the opener for kind.
func (p *Provider) Register(kind database.Kind, open Opener) {
	p.openers[kind] = open
}

// SQLitePath is the file every SQLite handle opens.
func (p *Provider) SQLitePath() string {
	return p.sqlitePath
}

// Open validates cfg and creates a handle. No statement is run; use Probe
// or Connect to check reachability.
func (p *Provider) Open(ctx context.Context, cfg database.Config) (database.DB, error) {
	if cfg.Kind == database.KindSQLite {
		cfg = database.Config{Kind: database.KindSQLite, Path: p.sqlitePath}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.PoolDefaults()

	open, ok := p.openers[cfg.Kind]
	if !ok {
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported database kind %q", cfg.Kind))
	}

	logger.FromContext(ctx).With().Str("target", cfg.String()).Logger().Debug("opening database handle")
	return open(ctx, &cfg)
}

// Connect opens a handle and probes it. The handle is returned only when
// the probe succeeded; otherwise it has already been closed.
func (p *Provider) Connect(ctx context.Context, cfg database.Config) (database.DB, Status) {
	db, err := p.Open(ctx, cfg)
	if err != nil {
		observability.ObserveConnect(string(cfg.Kind), false)
		return nil, failed(err)
	}

	st := Probe(ctx, db)
	observability.ObserveConnect(string(cfg.Kind), st.OK)
	if !st.OK {
		db.Close()
		return nil, st
	}
	return db, st
}
