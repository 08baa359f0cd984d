// Package nl2sql turns a natural-language request plus a schema description
// into SQL by calling a hosted language model.
package nl2sql

import (
	"context"
	"net/http"
	"time"

	"github.com/koustreak/sqlgenius/internal/errs"
)

// Model sends one prompt to a hosted language model and returns its raw
// text reply.
type Model interface {
	Complete(ctx context.Context, prompt string) (string, error)
	// ID is the model identifier used for metrics and logs.
	ID() string
}

// Options tune the HTTP clients behind NewModel.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
	// IAMURL overrides the IBM Cloud token endpoint.
	IAMURL string
}

// Factory builds a Model from credentials. Sessions hold one so tests can
// substitute a stub.
type Factory func(creds Credentials) (Model, error)

// NewFactory returns the default Factory using opts for every client.
func NewFactory(opts Options) Factory {
	return func(creds Credentials) (Model, error) {
		return NewModel(creds, opts)
	}
}

// NewModel builds the client for creds.Provider.
func NewModel(creds Credentials, opts Options) (Model, error) {
	if !creds.Complete() {
		return nil, errs.New(errs.ErrKindPreconditionFailed, "model credentials are incomplete")
	}
	provider := creds.Provider
	if provider == "" {
		provider = ProviderWatsonX
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	switch provider {
	case ProviderWatsonX:
		return newWatsonX(creds, client, opts.IAMURL), nil
	case ProviderOpenAI:
		return newOpenAI(creds, client), nil
	default:
		_, err := ParseProvider(string(provider))
		return nil, err
	}
}
