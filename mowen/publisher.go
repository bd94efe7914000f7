// Package mowen publishes note documents to the Mowen open API.
package mowen

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/clipnote"
	"github.com/microcosm-cc/bluemonday"
)

// DefaultEndpoint is the note creation endpoint of the Mowen open API.
const DefaultEndpoint = "https://open.mowen.cn/api/open/api/v1/note/create"

// DefaultTimeout bounds a single publish request.
const DefaultTimeout = 30 * time.Second

// MaxTags is the number of tags the note service accepts.
const MaxTags = 10

// NoteURLPrefix is joined with a note ID to link to the published note.
const NoteURLPrefix = "https://note.mowen.cn/detail/"

const maxErrorBody = 4 << 10

var _ clipnote.Publisher = (*Publisher)(nil)

// Publisher creates notes through the Mowen open API.
type Publisher struct {
	Endpoint string
	APIKey   string

	client *http.Client
	policy *bluemonday.Policy
}

// NewPublisher creates a Publisher for the default endpoint.
func NewPublisher(apiKey string) *Publisher {
	return &Publisher{
		Endpoint: DefaultEndpoint,
		APIKey:   apiKey,
		client:   &http.Client{Timeout: DefaultTimeout},
		policy:   linkPolicy(),
	}
}

// linkPolicy keeps anchors whose href is an absolute http or https URL.
func linkPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowURLSchemes("http", "https")
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(false)
	p.AllowAttrs("href").OnElements("a")
	return p
}

type createRequest struct {
	Body     *clipnote.NoteNode `json:"body"`
	Settings createSettings     `json:"settings"`
}

type createSettings struct {
	AutoPublish bool     `json:"autoPublish"`
	Tags        []string `json:"tags,omitempty"`
}

type createResponse struct {
	NoteID string `json:"noteId"`
}

// Publish creates a note from doc. Links other than http or https are
// dropped and tags are de-duplicated and capped at MaxTags before sending.
func (p *Publisher) Publish(ctx context.Context, doc *clipnote.NoteNode, settings clipnote.NoteSettings) (*clipnote.PublishResult, error) {
	body := p.sanitize(doc)
	var payload bytes.Buffer
	enc := json.NewEncoder(&payload)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(createRequest{
		Body: body,
		Settings: createSettings{
			AutoPublish: settings.AutoPublish,
			Tags:        NormalizeTags(settings.Tags),
		},
	}); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, &payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, clipnote.Errorf(clipnote.EUNAVAILABLE, "Mowen service is unreachable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(resp.StatusCode, string(detail))
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.NoteID == "" {
		return nil, clipnote.Errorf(clipnote.EMALFORMED, "Mowen returned an unexpected response")
	}

	return &clipnote.PublishResult{
		NoteID: out.NoteID,
		URL:    NoteURLPrefix + out.NoteID,
		Title:  title(body),
	}, nil
}

// statusError maps a non-2xx response to a user-facing error. A 403 caused
// by an exhausted quota is reported separately from a permission failure.
func statusError(code int, body string) error {
	switch {
	case code == http.StatusUnauthorized:
		return clipnote.Errorf(clipnote.EUNAUTHORIZED, "Mowen API key is invalid or expired")
	case code == http.StatusForbidden && strings.Contains(body, "Quota"):
		return clipnote.Errorf(clipnote.EQUOTA, "Mowen API quota has been used up; wait for it to reset or upgrade your plan")
	case code == http.StatusForbidden:
		return clipnote.Errorf(clipnote.EFORBIDDEN, "Mowen API permission denied; check that your account has API access")
	case code == http.StatusTooManyRequests:
		return clipnote.Errorf(clipnote.ERATELIMIT, "Mowen API rate limit exceeded; try again later")
	case code == http.StatusBadRequest:
		return clipnote.Errorf(clipnote.EINVALID, "Mowen rejected the note content")
	case code >= 500:
		return clipnote.Errorf(clipnote.EUNAVAILABLE, "Mowen service is temporarily unavailable (HTTP %d)", code)
	default:
		return clipnote.Errorf(clipnote.EINTERNAL, "publishing failed (HTTP %d)", code)
	}
}

// sanitize returns a copy of doc whose link marks point only at http or
// https URLs. Text runs are plain text in JSON and are sent unchanged.
func (p *Publisher) sanitize(n *clipnote.NoteNode) *clipnote.NoteNode {
	out := &clipnote.NoteNode{Type: n.Type, Text: n.Text}
	for _, m := range n.Marks {
		if m.Type != clipnote.MarkLink {
			out.Marks = append(out.Marks, m)
			continue
		}
		if href, ok := p.safeHref(m.Attrs["href"]); ok {
			out.Marks = append(out.Marks, clipnote.NoteMark{Type: m.Type, Attrs: map[string]string{"href": href}})
		}
	}
	for _, c := range n.Content {
		out.Content = append(out.Content, p.sanitize(c))
	}
	return out
}

// safeHref reports href unchanged if the link policy keeps it on an anchor.
func (p *Publisher) safeHref(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	clean := p.policy.Sanitize(`<a href="` + html.EscapeString(href) + `">x</a>`)
	if !strings.Contains(clean, "href=") {
		return "", false
	}
	return href, true
}

// NormalizeTags trims, de-duplicates and caps tags at MaxTags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.TrimPrefix(strings.TrimSpace(t), "#")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// title returns the text of the first paragraph, which BuildNoteDoc uses for the title.
func title(doc *clipnote.NoteNode) string {
	paras := doc.Paragraphs()
	if len(paras) == 0 {
		return ""
	}
	return paras[0].PlainText()
}
