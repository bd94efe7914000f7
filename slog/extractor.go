package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/clipnote"
)

// Ensure LoggingContentExtractor implements clipnote.ContentExtractor.
var _ clipnote.ContentExtractor = (*LoggingContentExtractor)(nil)

// LoggingContentExtractor wraps a ContentExtractor with logging.
type LoggingContentExtractor struct {
	next   clipnote.ContentExtractor
	logger *slog.Logger
}

// NewLoggingContentExtractor creates a new LoggingContentExtractor.
func NewLoggingContentExtractor(next clipnote.ContentExtractor, logger *slog.Logger) *LoggingContentExtractor {
	return &LoggingContentExtractor{next: next, logger: logger}
}

// ExtractPage delegates to the wrapped extractor and logs the content length.
func (e *LoggingContentExtractor) ExtractPage(ctx context.Context, src clipnote.PageSource) (page *clipnote.Page, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", src.URL(), "duration", time.Since(begin), "err", err}
		if page != nil {
			attrs = append(attrs, "title", page.Title, "chars", page.Len(), "sufficient", page.Sufficient())
		}
		e.logger.Info("extract", attrs...)
	}(time.Now())
	return e.next.ExtractPage(ctx, src)
}

// Ensure LoggingSiteDetector implements clipnote.SiteDetector.
var _ clipnote.SiteDetector = (*LoggingSiteDetector)(nil)

// LoggingSiteDetector wraps a SiteDetector with debug logging.
type LoggingSiteDetector struct {
	next   clipnote.SiteDetector
	logger *slog.Logger
}

// NewLoggingSiteDetector creates a new LoggingSiteDetector.
func NewLoggingSiteDetector(next clipnote.SiteDetector, logger *slog.Logger) *LoggingSiteDetector {
	return &LoggingSiteDetector{next: next, logger: logger}
}

// Detect delegates to the wrapped detector and logs the detected site.
func (d *LoggingSiteDetector) Detect(pageURL, html string) clipnote.Site {
	begin := time.Now()
	site := d.next.Detect(pageURL, html)
	name := string(site)
	if site == clipnote.SiteUnknown {
		name = "(unknown)"
	}
	d.logger.Info("site detection",
		"url", pageURL,
		"site", name,
		"duration", time.Since(begin),
	)
	return site
}
