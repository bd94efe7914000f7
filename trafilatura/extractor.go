// Package trafilatura adapts markusmobius/go-trafilatura as the primary
// readable-content extractor.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/clipnote"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ clipnote.Extractor = (*Extractor)(nil)

// Extractor extracts article content with trafilatura, falling back to its
// bundled readability and dom-distiller passes.
type Extractor struct {
	// IncludeLinks keeps anchors in the extracted content.
	IncludeLinks bool
}

// NewExtractor creates a new Extractor that keeps links.
func NewExtractor() *Extractor {
	return &Extractor{IncludeLinks: true}
}

// Extract returns the article content with title and description metadata.
func (e *Extractor) Extract(rawHTML string) (*clipnote.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, clipnote.Errorf(clipnote.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeLinks:   e.IncludeLinks,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		contentHTML = buf.String()
	}

	return &clipnote.ExtractResult{
		Title:       result.Metadata.Title,
		Description: result.Metadata.Description,
		ContentHTML: contentHTML,
	}, nil
}
