// Package server exposes sessions over a JSON HTTP API.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/koustreak/sqlgenius/internal/observability"
	"github.com/koustreak/sqlgenius/internal/session"
	"github.com/koustreak/sqlgenius/internal/setup"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the handler. Library may be nil when no object store
// is configured.
type Options struct {
	Sessions *session.Manager
	Library  *setup.Library
	Logger   *logger.Logger

	MaxBodyBytes int64

	// Applied to every connect request.
	MaxConns       int32
	ConnectTimeout time.Duration
}

type Server struct {
	opts Options
}

// New builds the HTTP handler with request id, recovery, logging and
// metrics middleware.
func New(opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	s := &Server{opts: opts}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(observability.LoggingMiddleware(opts.Logger))
	r.Use(observability.MetricsMiddleware)
	if opts.MaxBodyBytes > 0 {
		r.Use(limitBody(opts.MaxBodyBytes))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errs.New(errs.ErrKindNotFound, "no such route"))
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/kinds", s.handleKinds)
		r.Get("/scripts", s.handleListScripts)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteSession)
			r.Put("/credentials", s.withSession(s.handleCredentials))
			r.Post("/connect", s.withSession(s.handleConnect))
			r.Post("/setup", s.withSession(s.handleSetup))
			r.Get("/schema", s.withSession(s.handleSchema))
			r.Post("/generate", s.withSession(s.handleGenerate))
			r.Post("/execute", s.withSession(s.handleExecute))
		})
	})
	return r
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

func (s *Server) withSession(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.opts.Sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		h(w, r, sess)
	}
}

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
