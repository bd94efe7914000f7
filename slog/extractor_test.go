package slog_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/mock"
	clipslog "github.com/fwojciec/clipnote/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingContentExtractor_ExtractPage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.ContentExtractor{
		ExtractPageFn: func(context.Context, clipnote.PageSource) (*clipnote.Page, error) {
			return &clipnote.Page{Title: "Post", Content: strings.Repeat("x", 60)}, nil
		},
	}
	src := &mock.PageSource{URLFn: func() string { return "https://example.com/post" }}

	extractor := clipslog.NewLoggingContentExtractor(inner, newLogger(&buf))
	page, err := extractor.ExtractPage(context.Background(), src)

	require.NoError(t, err)
	assert.Equal(t, "Post", page.Title)
	output := buf.String()
	assert.Contains(t, output, "msg=extract")
	assert.Contains(t, output, "chars=60")
	assert.Contains(t, output, "sufficient=true")
}

func TestLoggingSiteDetector_Detect(t *testing.T) {
	t.Parallel()

	t.Run("logs detected site", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SiteDetector{
			DetectFn: func(string, string) clipnote.Site { return clipnote.SiteWeChat },
		}

		site := clipslog.NewLoggingSiteDetector(inner, newLogger(&buf)).Detect("https://mp.weixin.qq.com/s/x", "")

		assert.Equal(t, clipnote.SiteWeChat, site)
		assert.Contains(t, buf.String(), "site=wechat")
	})

	t.Run("logs unknown site", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.SiteDetector{
			DetectFn: func(string, string) clipnote.Site { return clipnote.SiteUnknown },
		}

		site := clipslog.NewLoggingSiteDetector(inner, newLogger(&buf)).Detect("https://example.com", "")

		assert.Equal(t, clipnote.SiteUnknown, site)
		assert.Contains(t, buf.String(), "site=(unknown)")
	})
}
