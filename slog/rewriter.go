package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/clipnote"
)

// Ensure LoggingRewriter implements clipnote.Rewriter.
var _ clipnote.Rewriter = (*LoggingRewriter)(nil)

// LoggingRewriter wraps a Rewriter with logging.
type LoggingRewriter struct {
	next   clipnote.Rewriter
	logger *slog.Logger
}

// NewLoggingRewriter creates a new LoggingRewriter.
func NewLoggingRewriter(next clipnote.Rewriter, logger *slog.Logger) *LoggingRewriter {
	return &LoggingRewriter{next: next, logger: logger}
}

// Rewrite delegates to the wrapped rewriter and logs the operation.
func (r *LoggingRewriter) Rewrite(ctx context.Context, page *clipnote.Page, opts clipnote.RewriteOptions) (doc *clipnote.AIDocument, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", page.URL,
			"chars", page.Len(),
			"full_text", opts.FullText,
			"duration", time.Since(begin),
			"err", err,
		}
		if doc != nil {
			attrs = append(attrs, "paragraphs", len(doc.Paragraphs), "tags", len(doc.Tags))
		}
		r.logger.Info("rewrite", attrs...)
	}(time.Now())
	return r.next.Rewrite(ctx, page, opts)
}

// Ensure LoggingPublisher implements clipnote.Publisher.
var _ clipnote.Publisher = (*LoggingPublisher)(nil)

// LoggingPublisher wraps a Publisher with logging.
type LoggingPublisher struct {
	next   clipnote.Publisher
	logger *slog.Logger
}

// NewLoggingPublisher creates a new LoggingPublisher.
func NewLoggingPublisher(next clipnote.Publisher, logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{next: next, logger: logger}
}

// Publish delegates to the wrapped publisher and logs the operation.
func (p *LoggingPublisher) Publish(ctx context.Context, doc *clipnote.NoteNode, settings clipnote.NoteSettings) (res *clipnote.PublishResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"paragraphs", len(doc.Paragraphs()),
			"auto_publish", settings.AutoPublish,
			"duration", time.Since(begin),
			"err", err,
		}
		if res != nil {
			attrs = append(attrs, "note", res.NoteID)
		}
		p.logger.Info("publish", attrs...)
	}(time.Now())
	return p.next.Publish(ctx, doc, settings)
}
