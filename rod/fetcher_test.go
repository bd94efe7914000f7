//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetcher_Open_ReturnsDynamicSource(t *testing.T) {
	t.Parallel()

	srv := serve(t, `<!DOCTYPE html>
<html><body>
<div id="content">Loading...</div>
<script>document.getElementById('content').textContent = 'JavaScript Rendered';</script>
</body></html>`)

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	src, err := fetcher.Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer src.Close()

	html, err := src.HTML(context.Background())
	require.NoError(t, err)
	assert.True(t, src.Dynamic())
	assert.Contains(t, html, "JavaScript Rendered")
}

func TestFetcher_Open_LaterSnapshotsSeeLateContent(t *testing.T) {
	t.Parallel()

	srv := serve(t, `<!DOCTYPE html>
<html><body><article id="a"></article>
<script>setTimeout(() => { document.getElementById('a').textContent = 'arrived late'; }, 300);</script>
</body></html>`)

	fetcher, err := rod.NewFetcher(rod.WithStealth(true))
	require.NoError(t, err)
	defer fetcher.Close()

	src, err := fetcher.Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer src.Close()

	time.Sleep(600 * time.Millisecond)
	html, err := src.HTML(context.Background())
	require.NoError(t, err)
	assert.Contains(t, html, "arrived late")
}

func TestFetcher_Open_SerializesShadowDOM(t *testing.T) {
	t.Parallel()

	srv := serve(t, `<!DOCTYPE html>
<html><body><x-post></x-post>
<script>
customElements.define('x-post', class extends HTMLElement {
  constructor() { super(); this.attachShadow({mode: 'open'}).innerHTML = '<p data-shadow="1">shadow text</p>'; }
});
</script>
</body></html>`)

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	defer fetcher.Close()

	src, err := fetcher.Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer src.Close()

	html, err := src.HTML(context.Background())
	require.NoError(t, err)
	assert.Greater(t, strings.Count(html, `data-shadow="1"`), 1)
}

func TestFetcher_Open_TimeoutTriggersOnSlowPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`<html><body>delayed</body></html>`))
	}))
	defer srv.Close()

	fetcher, err := rod.NewFetcher(rod.WithFetchTimeout(100 * time.Millisecond))
	require.NoError(t, err)
	defer fetcher.Close()

	_, err = fetcher.Open(context.Background(), srv.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetcher_Open_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	fetcher, err := rod.NewFetcher()
	require.NoError(t, err)
	require.NoError(t, fetcher.Close())
	require.NoError(t, fetcher.Close())

	_, err = fetcher.Open(context.Background(), "http://example.com")

	assert.Equal(t, clipnote.EINVALID, clipnote.ErrorCode(err))
}
