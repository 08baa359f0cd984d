package nl2sql

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/koustreak/sqlgenius/internal/errs"
)

const (
	defaultIAMURL     = "https://iam.cloud.ibm.com/identity/token"
	watsonxAPIVersion = "2024-10-08"
)

// tokenSkew refreshes the bearer token this long before IAM expiry.
const tokenSkew = time.Minute

// WatsonX calls the watsonx.ai chat endpoint, exchanging the API key for an
// IAM bearer token first.
type WatsonX struct {
	creds   Credentials
	client  *http.Client
	iamURL  string
	baseURL string

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newWatsonX(creds Credentials, client *http.Client, iamURL string) *WatsonX {
	if iamURL == "" {
		iamURL = defaultIAMURL
	}
	return &WatsonX{
		creds:   creds,
		client:  client,
		iamURL:  iamURL,
		baseURL: strings.TrimRight(strings.TrimSpace(creds.BaseURL), "/"),
	}
}

func (w *WatsonX) ID() string { return w.creds.ModelID }

func (w *WatsonX) Complete(ctx context.Context, prompt string) (string, error) {
	token, err := w.bearer(ctx)
	if err != nil {
		return "", err
	}

	req, err := newJSONRequest(ctx, w.baseURL+"/ml/v1/text/chat?version="+watsonxAPIVersion, map[string]any{
		"model_id":   w.creds.ModelID,
		"project_id": w.creds.ProjectID,
		"messages":   []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var out chatResponse
	if err := doJSON(w.client, req, "watsonx chat", &out); err != nil {
		return "", err
	}
	return out.text(), nil
}

// bearer returns a cached IAM token or fetches a new one.
func (w *WatsonX) bearer(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.token != "" && time.Now().Add(tokenSkew).Before(w.expires) {
		return w.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "urn:ibm:params:oauth:grant-type:apikey")
	form.Set("apikey", w.creds.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.iamURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errs.Wrap(errs.ErrKindInvalidInput, "invalid IAM URL", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := doJSON(w.client, req, "IAM token", &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errs.New(errs.ErrKindGenerationFailed, "IAM token response had no access_token")
	}

	w.token = out.AccessToken
	w.expires = time.Now().Add(time.Duration(out.ExpiresIn) * time.Second)
	return w.token, nil
}
