package clipnote

import "context"

// Fetcher opens web pages for extraction.
// Implementations may use browser automation to handle JavaScript-rendered content.
type Fetcher interface {
	// Open navigates to the URL and returns a source for its HTML.
	// The caller must close the returned source.
	Open(ctx context.Context, url string) (PageSource, error)

	// Close releases fetcher resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
