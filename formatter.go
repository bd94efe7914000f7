package clipnote

import "strings"

// FormatDocument renders an AI document as Markdown.
// Bold runs become **text**, highlights ==text==, links [text](href).
// Paragraphs are separated by blank lines; tags follow as #tag.
func FormatDocument(doc *AIDocument) string {
	if doc == nil {
		return ""
	}

	parts := make([]string, 0, len(doc.Paragraphs)+3)
	if doc.Title != "" {
		parts = append(parts, "# "+doc.Title)
	}
	if doc.SourceURL != "" {
		parts = append(parts, "Source: <"+doc.SourceURL+">")
	}
	for _, p := range doc.Paragraphs {
		var sb strings.Builder
		for _, t := range p.Texts {
			sb.WriteString(formatRun(t))
		}
		if s := sb.String(); s != "" {
			parts = append(parts, s)
		}
	}
	if len(doc.Tags) > 0 {
		tags := make([]string, len(doc.Tags))
		for i, tag := range doc.Tags {
			tags[i] = "#" + tag
		}
		parts = append(parts, strings.Join(tags, " "))
	}

	return strings.Join(parts, "\n\n")
}

func formatRun(t TextRun) string {
	s := t.Text
	if s == "" {
		return ""
	}
	if t.Bold {
		s = "**" + s + "**"
	}
	if t.Highlight {
		s = "==" + s + "=="
	}
	if t.Link != "" {
		s = "[" + s + "](" + t.Link + ")"
	}
	return s
}
