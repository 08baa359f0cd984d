package server

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/nl2sql"
	"github.com/koustreak/sqlgenius/internal/schema"
	"github.com/koustreak/sqlgenius/internal/session"
	"github.com/koustreak/sqlgenius/internal/setup"
)

type kindInfo struct {
	Kind        database.Kind `json:"kind"`
	DisplayName string        `json:"display_name"`
	DefaultPort string        `json:"default_port,omitempty"`
	DefaultUser string        `json:"default_user,omitempty"`
	Networked   bool          `json:"networked"`
}

func (s *Server) handleKinds(w http.ResponseWriter, _ *http.Request) {
	kinds := make([]kindInfo, 0, len(database.Kinds))
	for _, k := range database.Kinds {
		kinds = append(kinds, kindInfo{
			Kind:        k,
			DisplayName: k.DisplayName(),
			DefaultPort: k.DefaultPort(),
			DefaultUser: k.DefaultUser(),
			Networked:   k.Networked(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"kinds": kinds})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.opts.Sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]any{"id": sess.ID()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type credentialsRequest struct {
	Provider  string `json:"provider"`
	APIKey    string `json:"api_key"`
	ProjectID string `json:"project_id"`
	BaseURL   string `json:"base_url"`
	ModelID   string `json:"model_id"`
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	provider, err := nl2sql.ParseProvider(req.Provider)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sess.SetCredentials(nl2sql.Credentials{
		Provider:  provider,
		APIKey:    req.APIKey,
		ProjectID: req.ProjectID,
		BaseURL:   req.BaseURL,
		ModelID:   req.ModelID,
	})
	c := sess.Credentials()
	writeJSON(w, http.StatusOK, map[string]any{
		"provider":   c.Provider,
		"project_id": c.ProjectID,
		"base_url":   c.BaseURL,
		"model_id":   c.ModelID,
		"complete":   sess.CredentialsComplete(),
	})
}

type connectRequest struct {
	Kind     string `json:"kind"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

type connectResponse struct {
	session.ConnectOutcome
	SchemaText string `json:"schema_text,omitempty"`
}

// handleConnect answers 200 with a status object even when the database
// refused the connection; only malformed requests are HTTP errors.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req connectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	kind, err := database.ParseKind(req.Kind)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := sess.Connect(r.Context(), database.Config{
		Kind:           kind,
		Host:           req.Host,
		Port:           req.Port,
		User:           req.User,
		Password:       req.Password,
		Database:       req.Database,
		MaxConns:       s.opts.MaxConns,
		ConnectTimeout: s.opts.ConnectTimeout,
	})
	resp := connectResponse{ConnectOutcome: out}
	if out.Schema != nil {
		resp.SchemaText = out.Schema.Detailed()
	}
	writeJSON(w, http.StatusOK, resp)
}

type objectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// handleSetup takes either a raw script body or, for application/json, a
// reference to a script in the object store.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	script, source, err := s.readScript(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.RunSetup(r.Context(), script, source))
}

func (s *Server) readScript(w http.ResponseWriter, r *http.Request) (string, string, error) {
	limit := int64(setup.MaxScriptBytes)
	if s.opts.MaxBodyBytes > 0 && s.opts.MaxBodyBytes < limit {
		limit = s.opts.MaxBodyBytes
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if s.opts.Library == nil {
			return "", "", errs.New(errs.ErrKindPreconditionFailed, "object store is not configured")
		}
		var ref objectRef
		if err := decodeJSON(r, &ref); err != nil {
			return "", "", err
		}
		script, err := s.opts.Library.Fetch(r.Context(), ref.Bucket, ref.Key)
		return script, setup.SourceObject, err
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return "", "", errs.Wrap(errs.ErrKindInvalidInput, "read script body", err)
	}
	return string(body), setup.SourceUpload, nil
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	sc := sess.Schema()
	format := r.URL.Query().Get("format")

	var text string
	switch {
	case sc == nil:
		text = nl2sql.NoSchemaText
	case format == "compact":
		text = sc.Compact()
	case format == "" || format == "detailed":
		text = sc.Detailed()
	default:
		writeError(w, r, errs.New(errs.ErrKindInvalidInput, "format must be compact or detailed"))
		return
	}

	if sc == nil {
		sc = &schema.Schema{Tables: []schema.Table{}}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"connected": sess.Connected(),
		"schema":    sc,
		"text":      text,
	})
}

type generateRequest struct {
	Request string `json:"request"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Generate(r.Context(), req.Request))
}

// executeRequest.Query is optional; when absent the last generated query
// runs as is.
type executeRequest struct {
	Query *string `json:"query"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req executeRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, err)
		return
	}
	query := sess.LastQuery()
	if req.Query != nil {
		query = *req.Query
	}
	writeJSON(w, http.StatusOK, sess.Execute(r.Context(), query))
}

func (s *Server) handleListScripts(w http.ResponseWriter, r *http.Request) {
	if s.opts.Library == nil {
		writeError(w, r, errs.New(errs.ErrKindPreconditionFailed, "object store is not configured"))
		return
	}
	q := r.URL.Query()
	objs, err := s.opts.Library.List(r.Context(), q.Get("bucket"), q.Get("prefix"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scripts": objs})
}
