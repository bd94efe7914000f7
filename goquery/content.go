package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/clipnote"
	"golang.org/x/net/html"
)

// MainSelectors are tried in order to locate the main content container.
var MainSelectors = []string{
	"article",
	"[role=main]",
	"main",
	".post-content",
	".article-content",
	".entry-content",
	".markdown-body",
	"#content",
	".content",
	".post",
	".article",
}

// SiteSelectors hold the article body selectors of known platforms.
var SiteSelectors = map[clipnote.Site][]string{
	clipnote.SiteWeChat:    {"#js_content", ".rich_media_content"},
	clipnote.SiteZhihu:     {".Post-RichText", ".RichText.ztext", ".QuestionAnswer-content"},
	clipnote.SiteJuejin:    {".article-viewer", ".markdown-body"},
	clipnote.SiteCSDN:      {"#content_views", ".blog-content-box"},
	clipnote.SiteJianshu:   {".note .article", "article ._2rhmJa"},
	clipnote.SiteMedium:    {"article section", "article"},
	clipnote.SiteSubstack:  {".available-content", ".body.markup"},
	clipnote.SiteWordPress: {".entry-content", ".wp-block-post-content", ".post-entry"},
	clipnote.SiteGhost:     {".gh-content", ".post-full-content", ".kg-canvas"},
	clipnote.SiteGitHub:    {"#readme .markdown-body", ".markdown-body", ".comment-body"},
}

// GenericSiteSelectors are used for sites without a registry entry.
var GenericSiteSelectors = []string{
	"#article",
	".article-body",
	".story-body",
	".post-body",
	".blog-post",
	"#main",
}

// unwantedSelector matches subtrees that never belong to the article text.
const unwantedSelector = "script, style, noscript, iframe, svg, nav, aside, footer, form, button, " +
	"[role=navigation], [aria-hidden=true], " +
	".ad, .ads, .advert, .advertisement, .share, .social-share, .sharing, " +
	".comment, .comments, #comments, .sidebar, .related, .recommend"

// blockElements start a new text block.
var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "dd": true, "div": true,
	"dl": true, "dt": true, "figcaption": true, "figure": true, "h1": true,
	"h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "tbody": true, "thead": true, "tr": true,
	"ul": true,
}

// selectContent returns the text of the first selector whose match yields
// any text. Reports the empty string when nothing matches.
func selectContent(doc *goquery.Document, selectors []string) string {
	for _, s := range selectors {
		sel := doc.Find(s).First()
		if sel.Length() == 0 {
			continue
		}
		if text := blockText(sel); text != "" {
			return text
		}
	}
	return ""
}

// blockText flattens a cleaned copy of sel into newline-delimited blocks.
func blockText(sel *goquery.Selection) string {
	clone := sel.Clone()
	clone.Find(unwantedSelector).Remove()

	w := &walker{}
	for _, n := range clone.Nodes {
		w.walk(n)
	}
	w.flush()
	return strings.Join(w.blocks, "\n")
}

// walker converts a DOM subtree into text blocks.
type walker struct {
	blocks []string
	cur    strings.Builder
	prefix string
}

func (w *walker) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.cur.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.walk(c)
		}
		return
	}

	switch n.Data {
	case "br":
		w.flush()
		return
	case "pre":
		w.flush()
		w.prefix = ""
		if text := strings.Trim(nodeText(n), "\n"); strings.TrimSpace(text) != "" {
			w.blocks = append(w.blocks, text)
		}
		return
	case "td", "th":
		if w.cur.Len() > 0 {
			w.cur.WriteString(" ")
		}
	}

	block := blockElements[n.Data]
	if block {
		w.flush()
		if n.Data == "li" {
			w.prefix = "- "
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
	if block {
		w.flush()
		if n.Data == "li" {
			// An item that produced no text must not prefix the next block.
			w.prefix = ""
		}
	}
}

// flush closes the current block, collapsing inline whitespace.
func (w *walker) flush() {
	text := strings.Join(strings.Fields(w.cur.String()), " ")
	w.cur.Reset()
	if text == "" {
		return
	}
	w.blocks = append(w.blocks, w.prefix+text)
	w.prefix = ""
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

// pageTitle returns og:title, then <title>, then the first h1.
func pageTitle(doc *goquery.Document) string {
	if t := metaContent(doc, "meta[property='og:title']"); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.Join(strings.Fields(doc.Find("h1").First().Text()), " ")
}

// pageDescription returns the meta description, then og:description.
func pageDescription(doc *goquery.Document) string {
	if d := metaContent(doc, "meta[name='description']"); d != "" {
		return d
	}
	return metaContent(doc, "meta[property='og:description']")
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}
