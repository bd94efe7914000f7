//go:build integration

package gemini_test

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriter_Integration_ReturnsDocument(t *testing.T) {
	t.Parallel()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := gemini.NewClient(ctx, apiKey)
	require.NoError(t, err)

	page := &clipnote.Page{
		Title:   "Go 1.22 loop variables",
		URL:     "https://go.dev/blog/loopvar-preview",
		Content: strings.Repeat("Go 1.22 changes for-loop variables to be per-iteration instead of per-loop. ", 5),
	}

	doc, err := gemini.NewRewriter(client, "").Rewrite(ctx, page, clipnote.RewriteOptions{GenerateTags: true})

	require.NoError(t, err)
	assert.NotEmpty(t, doc.Paragraphs)
	assert.Equal(t, page.URL, doc.SourceURL)
}
