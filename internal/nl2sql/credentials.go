package nl2sql

import (
	"fmt"
	"strings"

	"github.com/koustreak/sqlgenius/internal/errs"
)

// DefaultModelID is the model preselected for every session.
const DefaultModelID = "ibm/granite-3-3-8b-instruct"

// Provider names the hosted model API.
type Provider string

const (
	ProviderWatsonX Provider = "watsonx"
	ProviderOpenAI  Provider = "openai"
)

// ParseProvider defaults to watsonx when s is blank.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "watsonx", "wx":
		return ProviderWatsonX, nil
	case "openai", "openai-compatible":
		return ProviderOpenAI, nil
	default:
		return "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported model provider %q", s))
	}
}

// Credentials are the per-session model API settings. They live only in
// memory and are never written to configuration or logs.
type Credentials struct {
	Provider  Provider `json:"provider,omitempty"`
	APIKey    string   `json:"api_key"`
	ProjectID string   `json:"project_id"`
	BaseURL   string   `json:"base_url"`
	ModelID   string   `json:"model_id"`
}

// Complete reports whether every field generation needs is present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.APIKey) != "" &&
		strings.TrimSpace(c.ProjectID) != "" &&
		strings.TrimSpace(c.BaseURL) != "" &&
		strings.TrimSpace(c.ModelID) != ""
}

// String never includes the API key.
func (c Credentials) String() string {
	key := "<unset>"
	if c.APIKey != "" {
		key = "***"
	}
	return fmt.Sprintf("provider=%s url=%s project=%s model=%s key=%s",
		c.Provider, c.BaseURL, c.ProjectID, c.ModelID, key)
}
