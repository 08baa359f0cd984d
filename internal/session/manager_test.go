package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/koustreak/sqlgenius/internal/connector"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m := NewManager(&Deps{
		Connector: connector.New(filepath.Join(t.TempDir(), "sample.db")),
		Executor:  executor.New(0),
	}, ttl)
	t.Cleanup(m.Close)
	return m
}

func TestManager_CreateGetDelete(t *testing.T) {
	m := newTestManager(t, 0)

	s := m.Create()
	require.NotEmpty(t, s.ID())
	assert.NotEqual(t, s.ID(), m.Create().ID())
	assert.Equal(t, 2, m.Len())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Delete(s.ID()))
	_, err = m.Get(s.ID())
	assert.True(t, errs.IsNotFound(err))
	assert.True(t, errs.IsNotFound(m.Delete(s.ID())))
	assert.Equal(t, 1, m.Len())
}

func TestManager_Sweep(t *testing.T) {
	m := newTestManager(t, time.Minute)
	idle := m.Create()
	fresh := m.Create()

	now := time.Now()
	idle.mu.Lock()
	idle.lastUsed = now.Add(-2 * time.Minute)
	idle.mu.Unlock()

	assert.Equal(t, 1, m.Sweep(now))
	_, err := m.Get(idle.ID())
	assert.Error(t, err)
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)
}

func TestManager_SweepDisabled(t *testing.T) {
	m := newTestManager(t, 0)
	m.Create()
	assert.Equal(t, 0, m.Sweep(time.Now().Add(time.Hour)))
}

func TestManager_RunStopsOnCancel(t *testing.T) {
	m := newTestManager(t, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx, 10*time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
