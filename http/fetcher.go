// Package http provides the HTTP surfaces of clipnote: a static page
// fetcher and the chi/WebSocket gateway.
package http

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/clipnote"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// MaxPageSize bounds the number of bytes read from a page.
const MaxPageSize = 8 << 20

// DefaultUserAgent is sent unless overridden with WithUserAgent.
const DefaultUserAgent = "Mozilla/5.0 (compatible; clipnote/1.0; +https://github.com/fwojciec/clipnote)"

var _ clipnote.Fetcher = (*Fetcher)(nil)

// Fetcher downloads pages over plain HTTP. It does not execute JavaScript,
// so the sources it returns never change after Open.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Open downloads the page and returns it as a static source. The body is
// decoded to UTF-8 using the declared or sniffed charset.
func (f *Fetcher) Open(ctx context.Context, url string) (clipnote.PageSource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, clipnote.Errorf(clipnote.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode, url); err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && !isHTML(mt) {
		return nil, clipnote.Errorf(clipnote.EINVALID, "%s is not an HTML page (%s)", url, mt)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, MaxPageSize), contentType)
	if err != nil {
		return nil, err
	}
	html, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	return &staticSource{url: resp.Request.URL.String(), html: string(html)}, nil
}

// Close releases resources. The HTTP client needs no explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

func statusError(code int, url string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return clipnote.Errorf(clipnote.ENOTFOUND, "page not found: %s", url)
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return clipnote.Errorf(clipnote.EFORBIDDEN, "access to %s was denied (HTTP %d)", url, code)
	case code == http.StatusTooManyRequests:
		return clipnote.Errorf(clipnote.ERATELIMIT, "rate limited by %s", url)
	case code >= 500:
		return clipnote.Errorf(clipnote.EUNAVAILABLE, "HTTP %d for %s", code, url)
	default:
		return clipnote.Errorf(clipnote.EINTERNAL, "HTTP %d for %s", code, url)
	}
}

func isHTML(mediaType string) bool {
	return mediaType == "text/html" || mediaType == "application/xhtml+xml" || strings.HasPrefix(mediaType, "text/plain")
}

// staticSource is a fixed HTML snapshot.
type staticSource struct {
	url  string
	html string
}

func (s *staticSource) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.html, nil
}

func (s *staticSource) URL() string { return s.url }

func (s *staticSource) Dynamic() bool { return false }

func (s *staticSource) Close() error { return nil }
