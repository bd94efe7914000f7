// Package readability adapts go-shiori/go-readability as a fallback
// readable-content extractor.
package readability

import (
	"strings"

	"github.com/fwojciec/clipnote"
	"github.com/go-shiori/go-readability"
)

var _ clipnote.Extractor = (*Extractor)(nil)

// Extractor runs Mozilla's Readability algorithm over raw HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the article content, title and excerpt.
func (e *Extractor) Extract(rawHTML string) (*clipnote.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, clipnote.Errorf(clipnote.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &clipnote.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		Description: strings.TrimSpace(article.Excerpt),
		ContentHTML: article.Content,
	}, nil
}
