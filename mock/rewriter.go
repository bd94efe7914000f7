package mock

import (
	"context"

	"github.com/fwojciec/clipnote"
)

var _ clipnote.Rewriter = (*Rewriter)(nil)

// Rewriter is a mock implementation of clipnote.Rewriter.
type Rewriter struct {
	RewriteFn func(ctx context.Context, page *clipnote.Page, opts clipnote.RewriteOptions) (*clipnote.AIDocument, error)
}

func (r *Rewriter) Rewrite(ctx context.Context, page *clipnote.Page, opts clipnote.RewriteOptions) (*clipnote.AIDocument, error) {
	return r.RewriteFn(ctx, page, opts)
}

var _ clipnote.Publisher = (*Publisher)(nil)

// Publisher is a mock implementation of clipnote.Publisher.
type Publisher struct {
	PublishFn func(ctx context.Context, doc *clipnote.NoteNode, settings clipnote.NoteSettings) (*clipnote.PublishResult, error)
}

func (p *Publisher) Publish(ctx context.Context, doc *clipnote.NoteNode, settings clipnote.NoteSettings) (*clipnote.PublishResult, error) {
	return p.PublishFn(ctx, doc, settings)
}

var _ clipnote.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of clipnote.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (c *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return c.CountTokensFn(ctx, text)
}
