package readability_test

import (
	"testing"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogPost = `<!DOCTYPE html>
<html>
<head>
<title>Why Tabs Are Fine</title>
<meta name="description" content="A short defense of tab characters.">
</head>
<body>
<nav><a href="/">Home Nav Link</a><a href="/about">About Nav Link</a></nav>
<article>
<h1>Why Tabs Are Fine</h1>
<p>Indentation debates have outlived most of the editors that started them, and the arguments have not changed much since.</p>
<p>Tabs let every reader choose their own width while keeping the file itself small and consistent across the whole project.</p>
</article>
<footer>Copyright Footer Text</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts article content and metadata", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(blogPost)

		require.NoError(t, err)
		assert.Equal(t, "Why Tabs Are Fine", result.Title)
		assert.Equal(t, "A short defense of tab characters.", result.Description)
		assert.Contains(t, result.ContentHTML, "Tabs let every reader choose")
	})

	t.Run("drops navigation and footer", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(blogPost)

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "Home Nav Link")
		assert.NotContains(t, result.ContentHTML, "Copyright Footer Text")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewExtractor().Extract("  ")

		assert.Equal(t, clipnote.EINVALID, clipnote.ErrorCode(err))
	})
}
