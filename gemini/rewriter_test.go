package gemini

import (
	"errors"
	"testing"

	"github.com/fwojciec/clipnote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	prompt := clipnote.Prompt{System: "system text", User: "user text"}

	t.Run("requests JSON with summary budget", func(t *testing.T) {
		t.Parallel()

		cfg := BuildConfig(prompt, clipnote.RewriteOptions{})

		require.NotNil(t, cfg.SystemInstruction)
		assert.Equal(t, "system text", cfg.SystemInstruction.Parts[0].Text)
		assert.Equal(t, "application/json", cfg.ResponseMIMEType)
		assert.Equal(t, int32(clipnote.SummaryMaxTokens), cfg.MaxOutputTokens)
		require.NotNil(t, cfg.Temperature)
		assert.InDelta(t, clipnote.Temperature, *cfg.Temperature, 1e-6)
	})

	t.Run("uses full-text budget", func(t *testing.T) {
		t.Parallel()

		cfg := BuildConfig(prompt, clipnote.RewriteOptions{FullText: true})

		assert.Equal(t, int32(clipnote.FullTextMaxTokens), cfg.MaxOutputTokens)
	})
}

func TestAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{"unauthorized", genai.APIError{Code: 401}, clipnote.EUNAUTHORIZED, "AI API key is invalid or expired"},
		{"invalid key as bad request", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, clipnote.EUNAUTHORIZED, "AI API key is invalid or expired"},
		{"other bad request", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "bad schema"}, clipnote.EINTERNAL, "AI request failed (HTTP 400): bad schema"},
		{"forbidden", genai.APIError{Code: 403}, clipnote.EFORBIDDEN, ""},
		{"model not found", genai.APIError{Code: 404}, clipnote.ENOTFOUND, ""},
		{"rate limited", genai.APIError{Code: 429}, clipnote.ERATELIMIT, ""},
		{"server error", genai.APIError{Code: 503}, clipnote.EUNAVAILABLE, ""},
		{"transport failure", errors.New("dial tcp: connection refused"), clipnote.EUNAVAILABLE, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := apiError(tt.err)

			assert.Equal(t, tt.code, clipnote.ErrorCode(err))
			if tt.message != "" {
				assert.Equal(t, tt.message, clipnote.ErrorMessage(err))
			}
		})
	}
}

func TestNewRewriter_DefaultsModel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultModel, NewRewriter(nil, "").model)
	assert.Equal(t, "gemini-2.0-flash", NewRewriter(nil, "gemini-2.0-flash").model)
}
