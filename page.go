package clipnote

import (
	"context"
	"time"
	"unicode/utf8"
)

// MinContentLength is the shortest page content, in characters, that is
// worth sending to the AI. Shorter extractions are reported as insufficient.
const MinContentLength = 50

// Page represents the readable content extracted from a web page.
// A Page is produced once per extraction and never mutated afterwards.
type Page struct {
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Len returns the content length in characters.
func (p *Page) Len() int {
	return utf8.RuneCountInString(p.Content)
}

// Sufficient reports whether the page has enough content to be processed.
func (p *Page) Sufficient() bool {
	return p.Len() >= MinContentLength
}

// Validate returns an error if the page cannot be processed.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	if !p.Sufficient() {
		return Errorf(EINVALID, "insufficient content: the page has too little readable text (%d characters)", p.Len())
	}
	return nil
}

// PageSource provides HTML snapshots of a single page.
type PageSource interface {
	// HTML returns the current HTML of the page.
	HTML(ctx context.Context) (string, error)

	// URL returns the address of the page.
	URL() string

	// Dynamic reports whether later snapshots may differ from earlier ones,
	// e.g. because the page is rendered client-side in a live browser.
	Dynamic() bool

	// Close releases resources held by the source.
	Close() error
}

// ContentExtractor locates the main content of a page.
type ContentExtractor interface {
	// ExtractPage reads the page and returns its best-effort content.
	// Short content is not an error; callers check Page.Sufficient.
	ExtractPage(ctx context.Context, src PageSource) (*Page, error)
}
