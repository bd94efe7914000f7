// Package goquery implements heuristic content extraction and site
// detection using goquery CSS selectors.
package goquery

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/clipnote"
)

var _ clipnote.ContentExtractor = (*ContentExtractor)(nil)

// SiteFallbackLength is the content length below which site-specific
// selectors are tried.
const SiteFallbackLength = 100

// DefaultPollDelays returns the delays between live DOM snapshots of a
// dynamic page, about three seconds in total.
func DefaultPollDelays() []time.Duration {
	return []time.Duration{
		1000 * time.Millisecond,
		800 * time.Millisecond,
		600 * time.Millisecond,
		400 * time.Millisecond,
		200 * time.Millisecond,
	}
}

// ContentExtractor produces a best-effort Page from a PageSource.
//
// Extraction never fails for short content. The returned Page may be
// shorter than clipnote.MinContentLength; the caller decides whether that
// is enough.
type ContentExtractor struct {
	// Sites chooses selectors for the site-specific pass.
	Sites *Registry

	// Readers are readability-style extractors tried in order when the
	// selector passes find too little text. Their HTML output is turned
	// into text with Converter.
	Readers   []clipnote.Extractor
	Converter clipnote.Converter

	// PollDelays are waited between snapshots of dynamic sources.
	PollDelays []time.Duration

	// Now returns the extraction timestamp. Defaults to time.Now.
	Now func() time.Time
}

// NewContentExtractor creates a ContentExtractor with the default site
// registry and poll delays.
func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{
		Sites:      NewDefaultRegistry(),
		PollDelays: DefaultPollDelays(),
		Now:        time.Now,
	}
}

// ExtractPage extracts the readable content of the page behind src.
func (e *ContentExtractor) ExtractPage(ctx context.Context, src clipnote.PageSource) (*clipnote.Page, error) {
	raw, err := src.HTML(ctx)
	if err != nil {
		return nil, err
	}
	page, err := e.ExtractHTML(raw, src.URL())
	if err != nil {
		return nil, err
	}

	if !page.Sufficient() && src.Dynamic() {
		page, raw = e.poll(ctx, src, page, raw)
	}

	if !page.Sufficient() {
		e.readable(page, raw)
	}

	page.Timestamp = e.now()
	return page, nil
}

// ExtractHTML runs the selector passes over a static HTML snapshot.
func (e *ContentExtractor) ExtractHTML(raw, pageURL string) (*clipnote.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, clipnote.Errorf(clipnote.EINVALID, "failed to parse HTML: %v", err)
	}

	page := &clipnote.Page{
		Title:       pageTitle(doc),
		Description: pageDescription(doc),
		URL:         pageURL,
		Content:     selectContent(doc, MainSelectors),
	}

	if page.Len() < SiteFallbackLength && e.Sites != nil {
		if text := selectContent(doc, e.Sites.SelectorsFor(pageURL, raw)); utf8.RuneCountInString(text) > page.Len() {
			page.Content = text
		}
	}

	return page, nil
}

// poll re-reads a dynamic source until it yields enough content or the
// delays run out, keeping the longest snapshot.
func (e *ContentExtractor) poll(ctx context.Context, src clipnote.PageSource, best *clipnote.Page, bestRaw string) (*clipnote.Page, string) {
	for _, d := range e.PollDelays {
		select {
		case <-ctx.Done():
			return best, bestRaw
		case <-time.After(d):
		}

		raw, err := src.HTML(ctx)
		if err != nil {
			continue
		}
		page, err := e.ExtractHTML(raw, src.URL())
		if err != nil {
			continue
		}
		if page.Len() > best.Len() {
			best, bestRaw = page, raw
		}
		if best.Sufficient() {
			break
		}
	}
	return best, bestRaw
}

// readable tries each reader on raw and keeps the longest converted text.
func (e *ContentExtractor) readable(page *clipnote.Page, raw string) {
	if e.Converter == nil {
		return
	}
	for _, r := range e.Readers {
		res, err := r.Extract(raw)
		if err != nil || res.ContentHTML == "" {
			continue
		}
		text, err := e.Converter.Convert(res.ContentHTML)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if utf8.RuneCountInString(text) <= page.Len() {
			continue
		}
		page.Content = text
		if page.Title == "" {
			page.Title = res.Title
		}
		if page.Description == "" {
			page.Description = res.Description
		}
		if page.Sufficient() {
			return
		}
	}
}

func (e *ContentExtractor) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}
