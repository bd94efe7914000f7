package mock

import (
	"context"

	"github.com/fwojciec/clipnote"
)

var _ clipnote.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of clipnote.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*clipnote.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*clipnote.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ clipnote.Converter = (*Converter)(nil)

// Converter is a mock implementation of clipnote.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ clipnote.SiteDetector = (*SiteDetector)(nil)

// SiteDetector is a mock implementation of clipnote.SiteDetector.
type SiteDetector struct {
	DetectFn func(pageURL, html string) clipnote.Site
}

func (d *SiteDetector) Detect(pageURL, html string) clipnote.Site {
	return d.DetectFn(pageURL, html)
}

var _ clipnote.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of clipnote.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
