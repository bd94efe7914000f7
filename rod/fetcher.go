// Package rod provides a dynamic page source backed by headless Chrome,
// for pages that render their content client-side.
package rod

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fwojciec/clipnote"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultFetchTimeout bounds navigation and initial page load.
const DefaultFetchTimeout = 10 * time.Second

var _ clipnote.Fetcher = (*Fetcher)(nil)

// Fetcher opens pages in a managed headless browser. The returned sources
// stay attached to the live tab, so later snapshots see content rendered
// after load. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	stealth bool
	closed  atomic.Bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the navigation timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithStealth opens tabs with go-rod/stealth evasions applied, for sites
// that block obvious headless browsers.
func WithStealth(enabled bool) Option {
	return func(f *Fetcher) {
		f.stealth = enabled
	}
}

// NewFetcher launches a browser and returns a Fetcher using it.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	manager, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}
	return NewFetcherWithManager(manager, opts...), nil
}

// NewFetcherWithManager returns a Fetcher using an existing BrowserManager.
// The Fetcher takes ownership of the manager.
func NewFetcherWithManager(manager *BrowserManager, opts ...Option) *Fetcher {
	f := &Fetcher{
		manager: manager,
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open navigates a new tab to url and waits for the load event.
func (f *Fetcher) Open(ctx context.Context, url string) (clipnote.PageSource, error) {
	if f.closed.Load() {
		return nil, clipnote.Errorf(clipnote.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser := f.manager.Acquire()
	page, err := f.newPage(browser)
	if err != nil {
		f.manager.Release()
		return nil, fmt.Errorf("opening tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		_ = page.Close()
		f.manager.Release()
		return nil, fmt.Errorf("navigating to %s: %w", url, navigationErr(err))
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		_ = page.Close()
		f.manager.Release()
		return nil, fmt.Errorf("loading %s: %w", url, navigationErr(err))
	}

	return &liveSource{page: page, url: url, release: f.manager.Release}, nil
}

func (f *Fetcher) newPage(browser *rod.Browser) (*rod.Page, error) {
	if f.stealth {
		return stealth.Page(browser)
	}
	return browser.Page(proto.TargetCreateTarget{})
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// navigationErr surfaces context errors wrapped by rod.
func navigationErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return context.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return context.Canceled
	}
	return err
}

// liveSource reads snapshots from an open browser tab.
type liveSource struct {
	page    *rod.Page
	url     string
	release func()
	closed  atomic.Bool
}

// HTML returns the current document, including open shadow roots.
func (s *liveSource) HTML(ctx context.Context) (string, error) {
	res, err := s.page.Context(ctx).Eval(serializeDOM)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (s *liveSource) URL() string { return s.url }

func (s *liveSource) Dynamic() bool { return true }

func (s *liveSource) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	defer s.release()
	return s.page.Close()
}

// serializeDOM returns outerHTML with open shadow roots inlined, so content
// rendered by web components is visible to extraction.
const serializeDOM = `() => {
	const serialize = (root) => {
		const clone = root.cloneNode(true);
		const src = root.querySelectorAll('*');
		const dst = clone.querySelectorAll('*');
		for (let i = 0; i < src.length; i++) {
			if (src[i].shadowRoot) {
				dst[i].insertAdjacentHTML('beforeend', src[i].shadowRoot.innerHTML);
			}
		}
		return clone.outerHTML;
	};
	return serialize(document.documentElement);
}`
