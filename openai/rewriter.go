// Package openai implements clipnote.Rewriter against any
// OpenAI-compatible chat completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/clipnote"
)

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 120 * time.Second

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 4 << 10

var _ clipnote.Rewriter = (*Rewriter)(nil)

// Rewriter sends prompts to a chat completions endpoint and parses the
// answer into an AIDocument.
type Rewriter struct {
	URL    string
	APIKey string
	Model  string

	client *http.Client
}

// NewRewriter creates a Rewriter for the endpoint at url.
func NewRewriter(url, apiKey, model string) *Rewriter {
	return &Rewriter{
		URL:    url,
		APIKey: apiKey,
		Model:  model,
		client: &http.Client{Timeout: DefaultTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Rewrite turns page into an AIDocument using the summary or full-text prompt.
func (r *Rewriter) Rewrite(ctx context.Context, page *clipnote.Page, opts clipnote.RewriteOptions) (*clipnote.AIDocument, error) {
	prompt := clipnote.BuildPrompt(page, opts)
	content, err := r.complete(ctx, chatRequest{
		Model: r.Model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: clipnote.Temperature,
		MaxTokens:   opts.MaxTokens(),
	})
	if err != nil {
		return nil, err
	}

	doc, err := clipnote.ParseAIDocument(content)
	if err != nil {
		return nil, err
	}
	doc.SourceURL = page.URL
	return doc, nil
}

func (r *Rewriter) complete(ctx context.Context, body chatRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(payload))
	if err != nil {
		return "", clipnote.Errorf(clipnote.EINVALID, "AI API URL %q is malformed", r.URL)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.APIKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", clipnote.Errorf(clipnote.EUNAVAILABLE, "AI service is unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", statusError(resp.StatusCode, detail)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", clipnote.Errorf(clipnote.EMALFORMED, "AI returned an unreadable response")
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", clipnote.Errorf(clipnote.EMALFORMED, "AI returned an empty response")
	}
	return out.Choices[0].Message.Content, nil
}

// statusError maps a non-2xx response to a user-facing error.
func statusError(code int, body []byte) error {
	switch {
	case code == http.StatusUnauthorized:
		return clipnote.Errorf(clipnote.EUNAUTHORIZED, "AI API key is invalid or expired")
	case code == http.StatusForbidden:
		return clipnote.Errorf(clipnote.EFORBIDDEN, "AI API key does not have access to this model")
	case code == http.StatusNotFound:
		return clipnote.Errorf(clipnote.ENOTFOUND, "AI API endpoint or model not found; check the URL and model name")
	case code == http.StatusTooManyRequests:
		return clipnote.Errorf(clipnote.ERATELIMIT, "AI API rate limit exceeded; try again later")
	case code >= 500:
		return clipnote.Errorf(clipnote.EUNAVAILABLE, "AI service is temporarily unavailable (HTTP %d)", code)
	default:
		return clipnote.Errorf(clipnote.EINTERNAL, "AI request failed (HTTP %d): %s", code, summarize(body))
	}
}

func summarize(body []byte) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		return fmt.Sprintf("%d bytes", len(body))
	}
	return s
}
