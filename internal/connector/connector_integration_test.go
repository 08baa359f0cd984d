//go:build integration

package connector

import (
	"context"
	"testing"
	"time"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestConnect_PostgresContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx, "postgres:16",
		postgres.WithDatabase("shop"),
		postgres.WithUsername("app"),
		postgres.WithPassword("p@ss:w/rd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	defer func() { _ = pgContainer.Terminate(ctx) }()

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	p := New("unused.db")
	cfg := database.Config{
		Kind:     database.KindPostgres,
		Host:     host,
		Port:     port.Port(),
		User:     "app",
		Password: "p@ss:w/rd",
		Database: "shop",
	}

	db, st := p.Connect(ctx, cfg)
	require.True(t, st.OK, st.Message)
	defer db.Close()

	_, err = db.Exec(ctx, `CREATE TABLE users (id SERIAL PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(ctx, `CREATE TABLE orders (id SERIAL PRIMARY KEY, user_id INT NOT NULL)`)
	require.NoError(t, err)

	s := schema.Extract(ctx, db)
	require.False(t, s.Failed(), s.Diagnostic)
	assert.Equal(t, "orders(id, user_id)\nusers(id, name)", s.Compact())
	assert.True(t, s.Tables[0].Columns[0].IsPrimary)
	assert.False(t, s.Tables[0].Columns[1].Nullable)

	cfg.Password = "wrong"
	_, st = p.Connect(ctx, cfg)
	assert.False(t, st.OK)
	assert.Contains(t, st.Message, "password authentication failed")
}
