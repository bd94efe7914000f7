package gemini

import (
	"context"

	"github.com/fwojciec/clipnote"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ clipnote.TokenCounter = (*TokenCounter)(nil)

// TokenCounter estimates prompt sizes offline with the local Gemini
// tokenizer. Counts are exact for Gemini models and a rough guide for
// OpenAI-compatible ones.
type TokenCounter struct {
	model string
	tok   *tokenizer.LocalTokenizer
}

// NewTokenCounter loads the tokenizer for model, or DefaultModel if model
// is empty. Models without a published tokenizer return EINVALID.
func NewTokenCounter(model string) (*TokenCounter, error) {
	if model == "" {
		model = DefaultModel
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, clipnote.Errorf(clipnote.EINVALID, "no local tokenizer for model %q: %v", model, err)
	}
	return &TokenCounter{model: model, tok: tok}, nil
}

// Model returns the model whose tokenizer is used.
func (tc *TokenCounter) Model() string {
	return tc.model
}

// CountTokens counts the tokens of text sent as a single user message.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, nil)
	if err != nil {
		return 0, clipnote.Errorf(clipnote.EINTERNAL, "count tokens: %v", err)
	}
	return int(result.TotalTokens), nil
}
