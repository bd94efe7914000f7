package goquery_test

import (
	"testing"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/goquery"
	"github.com/stretchr/testify/assert"
)

func TestDetector_Detect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		html string
		want clipnote.Site
	}{
		{
			name: "WeChat from host",
			url:  "https://mp.weixin.qq.com/s/abc",
			want: clipnote.SiteWeChat,
		},
		{
			name: "Zhihu column subdomain",
			url:  "https://zhuanlan.zhihu.com/p/123",
			want: clipnote.SiteZhihu,
		},
		{
			name: "Medium custom subdomain",
			url:  "https://someone.medium.com/post-1",
			want: clipnote.SiteMedium,
		},
		{
			name: "Substack publication",
			url:  "https://news.substack.com/p/hello",
			want: clipnote.SiteSubstack,
		},
		{
			name: "GitHub repository",
			url:  "https://github.com/owner/repo",
			want: clipnote.SiteGitHub,
		},
		{
			name: "does not match host that only contains a platform name",
			url:  "https://notgithub.com/x",
			want: clipnote.SiteUnknown,
		},
		{
			name: "WordPress from meta generator",
			url:  "https://blog.example.com/post",
			html: `<html><head><meta name="generator" content="WordPress 6.4.2"></head><body></body></html>`,
			want: clipnote.SiteWordPress,
		},
		{
			name: "Ghost from meta generator",
			url:  "https://example.org/post",
			html: `<html><head><meta name="generator" content="Ghost 5.0"></head><body></body></html>`,
			want: clipnote.SiteGhost,
		},
		{
			name: "Ghost from content class",
			url:  "https://example.org/post",
			html: `<html><body><section class="gh-content"><p>x</p></section></body></html>`,
			want: clipnote.SiteGhost,
		},
		{
			name: "WordPress from asset links",
			url:  "https://example.org/post",
			html: `<html><head><link rel="stylesheet" href="/wp-content/themes/x/style.css"></head><body></body></html>`,
			want: clipnote.SiteWordPress,
		},
		{
			name: "CSDN from content container on mirror host",
			url:  "https://mirror.example.com/article",
			html: `<html><body><div id="content_views"><p>text</p></div></body></html>`,
			want: clipnote.SiteCSDN,
		},
		{
			name: "WeChat from js_content on proxied page",
			url:  "https://proxy.example.com/s/abc",
			html: `<html><body><div id="js_content">text</div></body></html>`,
			want: clipnote.SiteWeChat,
		},
		{
			name: "unknown plain page",
			url:  "https://example.com/",
			html: `<html><body><p>Hello</p></body></html>`,
			want: clipnote.SiteUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := goquery.NewDetector()

			assert.Equal(t, tt.want, d.Detect(tt.url, tt.html))
		})
	}
}
