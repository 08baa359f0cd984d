package observability

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", Output: &buf})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(LoggingMiddleware(log))
	r.Get("/x", func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusAccepted)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var inner, access map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &inner))
	require.NoError(t, json.Unmarshal(lines[1], &access))

	assert.Equal(t, "inside handler", inner["message"])
	assert.NotEmpty(t, inner["request_id"])
	assert.Equal(t, "http_request", access["message"])
	assert.Equal(t, float64(http.StatusAccepted), access["status"])
	assert.Equal(t, inner["request_id"], access["request_id"])
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(MetricsMiddleware)
	r.Get("/api/sessions/{id}/schema", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/sessions/{id}/schema", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sessions/abc/schema", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/sessions/def/schema", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/api/sessions/{id}/schema", "200"))

	assert.Equal(t, float64(2), after-before)
}

func TestDomainMetrics(t *testing.T) {
	before := testutil.ToFloat64(generationsTotal.WithLabelValues("m", OutcomeSentinel))
	ObserveGeneration("m", OutcomeSentinel, 10*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(generationsTotal.WithLabelValues("m", OutcomeSentinel))-before)

	before = testutil.ToFloat64(executionsTotal.WithLabelValues("sqlite", OutcomeFailed))
	ObserveExecution("sqlite", false, time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(executionsTotal.WithLabelValues("sqlite", OutcomeFailed))-before)

	SetActiveSessions(-3)
	assert.Equal(t, float64(0), testutil.ToFloat64(activeSessions))
	SetActiveSessions(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(activeSessions))
}
