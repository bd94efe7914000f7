package mock

import (
	"context"

	"github.com/fwojciec/clipnote"
)

var _ clipnote.PageSource = (*PageSource)(nil)

// PageSource is a mock implementation of clipnote.PageSource.
type PageSource struct {
	HTMLFn    func(ctx context.Context) (string, error)
	URLFn     func() string
	DynamicFn func() bool
	CloseFn   func() error
}

func (s *PageSource) HTML(ctx context.Context) (string, error) {
	return s.HTMLFn(ctx)
}

func (s *PageSource) URL() string {
	return s.URLFn()
}

func (s *PageSource) Dynamic() bool {
	return s.DynamicFn()
}

func (s *PageSource) Close() error {
	return s.CloseFn()
}

var _ clipnote.ContentExtractor = (*ContentExtractor)(nil)

// ContentExtractor is a mock implementation of clipnote.ContentExtractor.
type ContentExtractor struct {
	ExtractPageFn func(ctx context.Context, src clipnote.PageSource) (*clipnote.Page, error)
}

func (e *ContentExtractor) ExtractPage(ctx context.Context, src clipnote.PageSource) (*clipnote.Page, error) {
	return e.ExtractPageFn(ctx, src)
}
