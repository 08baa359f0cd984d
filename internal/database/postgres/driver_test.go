package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN_EscapesReservedCharacters(t *testing.T) {
	cfg := &database.Config{
		Kind:     database.KindPostgres,
		Host:     "db.internal",
		Port:     "6543",
		User:     "ana@corp",
		Password: "p@ss:w/rd",
		Database: "shop",
	}

	poolCfg, err := buildPoolConfig(cfg)
	require.NoError(t, err)

	conn := poolCfg.ConnConfig
	assert.Equal(t, "db.internal", conn.Host)
	assert.Equal(t, uint16(6543), conn.Port)
	assert.Equal(t, "ana@corp", conn.User)
	assert.Equal(t, "p@ss:w/rd", conn.Password)
	assert.Equal(t, "shop", conn.Database)
}

func TestBuildPoolConfig_AppliesPoolSettings(t *testing.T) {
	cfg := &database.Config{
		Kind:           database.KindPostgres,
		Host:           "localhost",
		Port:           "5432",
		User:           "postgres",
		Database:       "shop",
		MaxConns:       3,
		ConnectTimeout: 2 * time.Second,
	}

	poolCfg, err := buildPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(3), poolCfg.MaxConns)
	assert.Equal(t, 2*time.Second, poolCfg.ConnConfig.ConnectTimeout)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"syntax error", &pgconn.PgError{Code: "42601", Message: "syntax error at or near \"SELEC\""}, errs.ErrKindQueryFailed},
		{"undefined table", &pgconn.PgError{Code: "42P01", Message: "relation \"nope\" does not exist"}, errs.ErrKindQueryFailed},
		{"bad password", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}, errs.ErrKindConnectionFailed},
		{"unknown database", &pgconn.PgError{Code: "3D000", Message: "database \"x\" does not exist"}, errs.ErrKindConnectionFailed},
		{"no privilege", &pgconn.PgError{Code: "42501", Message: "permission denied for table t"}, errs.ErrKindPermissionDenied},
		{"statement timeout", &pgconn.PgError{Code: "57014", Message: "canceling statement"}, errs.ErrKindTimeout},
		{"network", errors.New("dial tcp 10.0.0.1:5432: connect: connection refused"), errs.ErrKindConnectionFailed},
		{"wrapped pg error", fmt.Errorf("outer: %w", &pgconn.PgError{Code: "08006"}), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "query failed")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMapError_KeepsServerMessage(t *testing.T) {
	got := mapError(&pgconn.PgError{Code: "42P01", Message: `relation "nope" does not exist`}, "query failed")
	assert.Equal(t, `query failed: relation "nope" does not exist`, got.Message)
}

func TestMapError_Nil(t *testing.T) {
	assert.Nil(t, mapError(nil, "unused"))
}
