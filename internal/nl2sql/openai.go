package nl2sql

import (
	"context"
	"net/http"
	"strings"
)

// OpenAI calls an OpenAI-compatible chat completions endpoint. ProjectID is
// sent as the OpenAI-Project header.
type OpenAI struct {
	creds   Credentials
	client  *http.Client
	baseURL string
}

func newOpenAI(creds Credentials, client *http.Client) *OpenAI {
	return &OpenAI{
		creds:   creds,
		client:  client,
		baseURL: strings.TrimRight(strings.TrimSpace(creds.BaseURL), "/"),
	}
}

func (o *OpenAI) ID() string { return o.creds.ModelID }

func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	req, err := newJSONRequest(ctx, o.baseURL+"/v1/chat/completions", map[string]any{
		"model":    o.creds.ModelID,
		"messages": []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(o.creds.APIKey))
	req.Header.Set("OpenAI-Project", o.creds.ProjectID)

	var out chatResponse
	if err := doJSON(o.client, req, "chat completion", &out); err != nil {
		return "", err
	}
	return out.text(), nil
}
