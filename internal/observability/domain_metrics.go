package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the domain collectors.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeSentinel = "sentinel"
)

var (
	connectAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlgenius_connect_attempts_total",
			Help: "Database connection attempts by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlgenius_generations_total",
			Help: "SQL generation requests by model and outcome.",
		},
		[]string{"model", "outcome"},
	)
	generationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sqlgenius_generation_duration_seconds",
			Help:    "Latency of language model calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
	)
	executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlgenius_executions_total",
			Help: "Query executions by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	executionDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sqlgenius_execution_duration_seconds",
			Help:    "Query execution latency by kind.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	setupScriptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlgenius_setup_scripts_total",
			Help: "Setup script runs by source and outcome.",
		},
		[]string{"source", "outcome"},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sqlgenius_active_sessions",
			Help: "Sessions currently held in memory.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		connectAttemptsTotal,
		generationsTotal,
		generationDurationSeconds,
		executionsTotal,
		executionDurationSeconds,
		setupScriptsTotal,
		activeSessions,
	)
}

func outcome(ok bool) string {
	if ok {
		return OutcomeOK
	}
	return OutcomeFailed
}

func ObserveConnect(kind string, ok bool) {
	connectAttemptsTotal.WithLabelValues(kind, outcome(ok)).Inc()
}

// ObserveGeneration records one model call; result is one of the Outcome
// constants.
func ObserveGeneration(model, result string, elapsed time.Duration) {
	generationsTotal.WithLabelValues(model, result).Inc()
	generationDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveExecution(kind string, ok bool, elapsed time.Duration) {
	executionsTotal.WithLabelValues(kind, outcome(ok)).Inc()
	executionDurationSeconds.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func ObserveSetup(source string, ok bool) {
	setupScriptsTotal.WithLabelValues(source, outcome(ok)).Inc()
}

func SetActiveSessions(n int) {
	if n < 0 {
		n = 0
	}
	activeSessions.Set(float64(n))
}
