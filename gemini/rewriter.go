// Package gemini implements clipnote.Rewriter and clipnote.TokenCounter
// using Google Gemini.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fwojciec/clipnote"
	"google.golang.org/genai"
)

// DefaultModel is used when the configuration names no model.
const DefaultModel = "gemini-2.5-flash"

var _ clipnote.Rewriter = (*Rewriter)(nil)

// Rewriter implements clipnote.Rewriter using the Gemini API.
type Rewriter struct {
	client *genai.Client
	model  string
}

// NewRewriter creates a new Rewriter.
func NewRewriter(client *genai.Client, model string) *Rewriter {
	if model == "" {
		model = DefaultModel
	}
	return &Rewriter{client: client, model: model}
}

// NewClient creates a Gemini API client for apiKey.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// Rewrite turns page into an AIDocument. The model is asked for a JSON
// response, which is still passed through the fence-tolerant parser.
func (r *Rewriter) Rewrite(ctx context.Context, page *clipnote.Page, opts clipnote.RewriteOptions) (*clipnote.AIDocument, error) {
	prompt := clipnote.BuildPrompt(page, opts)

	result, err := r.client.Models.GenerateContent(ctx, r.model,
		[]*genai.Content{genai.NewContentFromText(prompt.User, genai.RoleUser)},
		BuildConfig(prompt, opts),
	)
	if err != nil {
		return nil, apiError(err)
	}
	if result == nil || result.Text() == "" {
		return nil, clipnote.Errorf(clipnote.EMALFORMED, "AI returned an empty response")
	}

	doc, err := clipnote.ParseAIDocument(result.Text())
	if err != nil {
		return nil, err
	}
	doc.SourceURL = page.URL
	return doc, nil
}

// BuildConfig returns the GenerateContentConfig for a rewrite prompt.
func BuildConfig(prompt clipnote.Prompt, opts clipnote.RewriteOptions) *genai.GenerateContentConfig {
	temp := float32(clipnote.Temperature)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		},
		Temperature:      &temp,
		MaxOutputTokens:  int32(opts.MaxTokens()),
		ResponseMIMEType: "application/json",
	}
}

// apiError maps Gemini API failures onto the same codes as the
// OpenAI-compatible client.
func apiError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return clipnote.Errorf(clipnote.EUNAVAILABLE, "AI service is unreachable: %v", err)
	}
	switch {
	case apiErr.Code == http.StatusUnauthorized:
		return clipnote.Errorf(clipnote.EUNAUTHORIZED, "AI API key is invalid or expired")
	case apiErr.Code == http.StatusBadRequest && apiErr.Status == "INVALID_ARGUMENT" && isKeyError(apiErr.Message):
		return clipnote.Errorf(clipnote.EUNAUTHORIZED, "AI API key is invalid or expired")
	case apiErr.Code == http.StatusForbidden:
		return clipnote.Errorf(clipnote.EFORBIDDEN, "AI API key does not have access to this model")
	case apiErr.Code == http.StatusNotFound:
		return clipnote.Errorf(clipnote.ENOTFOUND, "AI model not found; check the model name")
	case apiErr.Code == http.StatusTooManyRequests:
		return clipnote.Errorf(clipnote.ERATELIMIT, "AI API rate limit exceeded; try again later")
	case apiErr.Code >= 500:
		return clipnote.Errorf(clipnote.EUNAVAILABLE, "AI service is temporarily unavailable (HTTP %d)", apiErr.Code)
	default:
		return clipnote.Errorf(clipnote.EINTERNAL, "AI request failed (HTTP %d): %s", apiErr.Code, apiErr.Message)
	}
}

// isKeyError reports whether a 400 message is Gemini's invalid-key response.
func isKeyError(msg string) bool {
	return strings.Contains(msg, "API key not valid") || strings.Contains(msg, "API_KEY_INVALID")
}
