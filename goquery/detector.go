package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/clipnote"
)

var _ clipnote.SiteDetector = (*Detector)(nil)

// Detector identifies publishing platforms from the page URL and HTML.
// It checks the host first, then the meta generator tag, then DOM markers
// that are unique to each platform's article template.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// hostSites maps host suffixes to the platform serving them.
var hostSites = []struct {
	suffix string
	site   clipnote.Site
}{
	{"mp.weixin.qq.com", clipnote.SiteWeChat},
	{"zhihu.com", clipnote.SiteZhihu},
	{"juejin.cn", clipnote.SiteJuejin},
	{"csdn.net", clipnote.SiteCSDN},
	{"jianshu.com", clipnote.SiteJianshu},
	{"medium.com", clipnote.SiteMedium},
	{"substack.com", clipnote.SiteSubstack},
	{"github.com", clipnote.SiteGitHub},
}

// Detect returns the identified site, or SiteUnknown.
func (d *Detector) Detect(pageURL, html string) clipnote.Site {
	if site := d.detectFromHost(pageURL); site != clipnote.SiteUnknown {
		return site
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return clipnote.SiteUnknown
	}

	// Meta generator is the most reliable marker for self-hosted platforms.
	if site := d.detectFromMetaGenerator(doc); site != clipnote.SiteUnknown {
		return site
	}

	switch {
	case d.hasSelector(doc, "#js_content") || d.hasSelector(doc, ".rich_media_content"):
		return clipnote.SiteWeChat
	case d.hasSelector(doc, ".Post-RichText") || d.hasSelector(doc, ".RichText.ztext"):
		return clipnote.SiteZhihu
	case d.hasSelector(doc, ".article-viewer") || d.hasSelector(doc, "[data-v-app] .markdown-body.cache"):
		return clipnote.SiteJuejin
	case d.hasSelector(doc, "#content_views") || d.hasSelector(doc, ".blog-content-box"):
		return clipnote.SiteCSDN
	case d.hasSelector(doc, "meta[property='al:android:package'][content='com.medium.reader']"):
		return clipnote.SiteMedium
	case d.hasSelector(doc, ".available-content") && d.hasSelector(doc, ".body.markup"):
		return clipnote.SiteSubstack
	case d.hasSelector(doc, "link[href*='wp-content']") || d.hasSelector(doc, "link[href*='wp-includes']"):
		return clipnote.SiteWordPress
	case d.hasSelector(doc, ".gh-content") || d.hasSelector(doc, ".gh-article"):
		return clipnote.SiteGhost
	}

	return clipnote.SiteUnknown
}

func (d *Detector) detectFromHost(pageURL string) clipnote.Site {
	u, err := url.Parse(pageURL)
	if err != nil {
		return clipnote.SiteUnknown
	}
	host := strings.ToLower(u.Hostname())
	for _, hs := range hostSites {
		if host == hs.suffix || strings.HasSuffix(host, "."+hs.suffix) {
			return hs.site
		}
	}
	return clipnote.SiteUnknown
}

// detectFromMetaGenerator checks the meta generator tag for platform identification.
func (d *Detector) detectFromMetaGenerator(doc *goquery.Document) clipnote.Site {
	generator := ""
	doc.Find("meta[name='generator']").Each(func(_ int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			generator = strings.ToLower(content)
		}
	})

	switch {
	case generator == "":
		return clipnote.SiteUnknown
	case strings.Contains(generator, "wordpress"):
		return clipnote.SiteWordPress
	case strings.Contains(generator, "ghost"):
		return clipnote.SiteGhost
	case strings.Contains(generator, "substack"):
		return clipnote.SiteSubstack
	}

	return clipnote.SiteUnknown
}

// hasSelector checks if the document contains at least one element matching the selector.
func (d *Detector) hasSelector(doc *goquery.Document, selector string) bool {
	return doc.Find(selector).Length() > 0
}
