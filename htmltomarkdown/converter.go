// Package htmltomarkdown turns extracted article HTML into Markdown text
// suitable for an AI prompt.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/clipnote"
)

var _ clipnote.Converter = (*Converter)(nil)

// mediaSelector matches elements that carry no text for a note.
const mediaSelector = "img, picture, video, audio, source, canvas, figure > svg"

var blankLines = regexp.MustCompile(`\n{3,}`)

// Converter converts HTML to Markdown with media stripped.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", clipnote.Errorf(clipnote.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", clipnote.Errorf(clipnote.EINVALID, "failed to parse HTML: %v", err)
	}
	doc.Find(mediaSelector).Remove()
	body, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}

	result, err := c.conv.ConvertString(body)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(blankLines.ReplaceAllString(result, "\n\n")), nil
}
