package nl2sql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/logger"
)

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 512

// doJSON sends req and decodes a 2xx JSON body into out. Transport errors,
// non-2xx statuses and undecodable bodies all become generation_failed.
func doJSON(client *http.Client, req *http.Request, what string, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
			(errors.As(err, &netErr) && netErr.Timeout()) {
			return errs.Wrap(errs.ErrKindTimeout, what+" timed out", err)
		}
		return errs.Wrap(errs.ErrKindGenerationFailed, "request "+what, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrap(errs.ErrKindGenerationFailed, "read "+what+" response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := body
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return errs.New(errs.ErrKindGenerationFailed,
			fmt.Sprintf("%s failed: status=%d body=%s", what, resp.StatusCode, logger.Mask(string(snippet))))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errs.Wrap(errs.ErrKindGenerationFailed, "decode "+what+" response", err)
	}
	return nil
}

func newJSONRequest(ctx context.Context, url string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindGenerationFailed, "marshal request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid model URL", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the subset shared by watsonx.ai text/chat and OpenAI
// chat completions.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// text returns the first choice's content. An empty choice list yields ""
// so the caller falls through to the sentinel.
func (r *chatResponse) text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}
