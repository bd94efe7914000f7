package mock

import (
	"context"

	"github.com/fwojciec/clipnote"
)

var _ clipnote.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of clipnote.Fetcher.
type Fetcher struct {
	OpenFn  func(ctx context.Context, url string) (clipnote.PageSource, error)
	CloseFn func() error
}

func (f *Fetcher) Open(ctx context.Context, url string) (clipnote.PageSource, error) {
	return f.OpenFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
