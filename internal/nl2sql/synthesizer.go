package nl2sql

import (
	"context"
	"strings"
	"time"

	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/logger"
	"github.com/koustreak/sqlgenius/internal/observability"
)

// Generation is the outcome of one successful model call. When the cleaned
// reply was empty, Sentinel is true and SQL holds the Sentinel comment.
type Generation struct {
	SQL      string `json:"sql"`
	Sentinel bool   `json:"sentinel"`
	ModelID  string `json:"model_id"`
}

// Synthesizer builds the prompt, calls the model and cleans its reply.
type Synthesizer struct {
	model Model
}

func NewSynthesizer(m Model) *Synthesizer {
	return &Synthesizer{model: m}
}

// Generate asks the model for SQL answering request against schemaText.
// A blank reply is not an error; it yields the sentinel. Only a failed
// remote call returns an error.
func (s *Synthesizer) Generate(ctx context.Context, request, schemaText string) (Generation, error) {
	if strings.TrimSpace(request) == "" {
		return Generation{}, errs.New(errs.ErrKindInvalidInput, "request is empty")
	}

	log := logger.FromContext(ctx).With().Str("model", s.model.ID()).Logger()
	prompt := BuildPrompt(schemaText, request)
	log.Debugf("sending prompt of %d bytes", len(prompt))

	start := time.Now()
	raw, err := s.model.Complete(ctx, prompt)
	if err != nil {
		observability.ObserveGeneration(s.model.ID(), observability.OutcomeFailed, time.Since(start))
		log.ErrorWith("model call failed", err, nil)
		if errs.KindOf(err) == errs.ErrKindUnknown {
			err = errs.Wrap(errs.ErrKindGenerationFailed, "model call failed", err)
		}
		return Generation{}, err
	}

	sql := Clean(raw)
	if sql == "" {
		observability.ObserveGeneration(s.model.ID(), observability.OutcomeSentinel, time.Since(start))
		log.Warn("model returned no SQL")
		return Generation{SQL: Sentinel, Sentinel: true, ModelID: s.model.ID()}, nil
	}

	observability.ObserveGeneration(s.model.ID(), observability.OutcomeOK, time.Since(start))
	return Generation{SQL: sql, ModelID: s.model.ID()}, nil
}
