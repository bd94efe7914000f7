package clipnote

import (
	"encoding/json"
	"strings"
)

// AIDocument is the structured note returned by the AI.
type AIDocument struct {
	Title      string      `json:"title"`
	Paragraphs []Paragraph `json:"paragraphs"`
	Tags       []string    `json:"tags,omitempty"`
	SourceURL  string      `json:"sourceUrl,omitempty"`
}

// Paragraph is a sequence of styled text runs.
type Paragraph struct {
	Texts []TextRun `json:"texts"`
}

// UnmarshalJSON accepts either {"texts": [...]} or a bare string, which
// some models emit for unstyled paragraphs.
func (p *Paragraph) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Texts = []TextRun{{Text: s}}
		return nil
	}
	type paragraph Paragraph
	var v paragraph
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Paragraph(v)
	return nil
}

// Text returns the paragraph's plain text.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, t := range p.Texts {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// TextRun is a span of text with optional styling.
type TextRun struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Highlight bool   `json:"highlight,omitempty"`
	Link      string `json:"link,omitempty"`
}

// Validate returns an error if the document carries no content.
func (d *AIDocument) Validate() error {
	for i := range d.Paragraphs {
		if strings.TrimSpace(d.Paragraphs[i].Text()) != "" {
			return nil
		}
	}
	return Errorf(EMALFORMED, "AI returned a document without any paragraphs")
}

// ParseAIDocument parses the AI's message content as an AIDocument.
// When the content is not plain JSON, Markdown code fences are stripped and
// the outermost {...} span is parsed instead. Anything still unparseable is
// reported as EMALFORMED.
func ParseAIDocument(content string) (*AIDocument, error) {
	var doc AIDocument
	if err := json.Unmarshal([]byte(content), &doc); err == nil {
		return validated(&doc)
	}

	for _, candidate := range recoverJSON(content) {
		var fallback AIDocument
		if err := json.Unmarshal([]byte(candidate), &fallback); err == nil {
			return validated(&fallback)
		}
	}
	return nil, Errorf(EMALFORMED, "AI returned malformed content")
}

func validated(doc *AIDocument) (*AIDocument, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

const fence = "```"

// recoverJSON returns the object spans worth parsing: the body between the
// first and last code fence, then the whole content. Fences nested inside
// JSON strings stay within the body.
func recoverJSON(s string) []string {
	var out []string
	if body, ok := fenceBody(s); ok {
		if span, ok := objectSpan(body); ok {
			out = append(out, span)
		}
	}
	if span, ok := objectSpan(s); ok && (len(out) == 0 || out[0] != span) {
		out = append(out, span)
	}
	return out
}

// fenceBody returns the text between the opening fence line and the last
// closing fence.
func fenceBody(s string) (string, bool) {
	start := strings.Index(s, fence)
	if start < 0 {
		return "", false
	}
	rest := s[start+len(fence):]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}
	rest = rest[nl+1:]
	end := strings.LastIndex(rest, fence)
	if end < 0 {
		return rest, true
	}
	return rest[:end], true
}

func objectSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
