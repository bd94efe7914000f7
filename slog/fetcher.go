// Package slog provides logging decorators for clipnote services.
// Each decorator wraps a service and logs one structured record per call
// with the operation's key attributes, its duration and its error.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/clipnote"
)

// Ensure LoggingFetcher implements clipnote.Fetcher.
var _ clipnote.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   clipnote.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next clipnote.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Open delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Open(ctx context.Context, url string) (src clipnote.PageSource, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", url, "duration", time.Since(begin), "err", err}
		if src != nil {
			attrs = append(attrs, "dynamic", src.Dynamic())
		}
		f.logger.Info("open", attrs...)
	}(time.Now())
	return f.next.Open(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
