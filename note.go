package clipnote

import (
	"context"
	"strings"
	"time"
)

// Note node and mark types understood by the Mowen API.
const (
	NodeDoc       = "doc"
	NodeParagraph = "paragraph"
	NodeText      = "text"

	MarkBold      = "bold"
	MarkHighlight = "highlight"
	MarkLink      = "link"
)

// NoteNode is a node of a note document tree: doc → paragraph → text.
type NoteNode struct {
	Type    string      `json:"type"`
	Text    string      `json:"text,omitempty"`
	Marks   []NoteMark  `json:"marks,omitempty"`
	Content []*NoteNode `json:"content,omitempty"`
}

// NoteMark annotates a text node.
type NoteMark struct {
	Type  string            `json:"type"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Paragraphs returns the doc's paragraph children.
func (n *NoteNode) Paragraphs() []*NoteNode {
	var out []*NoteNode
	for _, c := range n.Content {
		if c.Type == NodeParagraph {
			out = append(out, c)
		}
	}
	return out
}

// PlainText returns the concatenated text of the node and its descendants.
func (n *NoteNode) PlainText() string {
	if n.Type == NodeText {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.Content {
		sb.WriteString(c.PlainText())
	}
	return sb.String()
}

// BuildNoteDoc maps an AI document into a note document tree.
//
// The tree starts with a preamble: the title as a bold paragraph and, when
// the source URL is known, a paragraph linking to it. A single empty
// paragraph separates the preamble from the body. Each input paragraph then
// becomes exactly one paragraph node, in order.
func BuildNoteDoc(doc *AIDocument) *NoteNode {
	root := &NoteNode{Type: NodeDoc}

	if title := strings.TrimSpace(doc.Title); title != "" {
		root.Content = append(root.Content, paragraph(&NoteNode{
			Type:  NodeText,
			Text:  title,
			Marks: []NoteMark{{Type: MarkBold}},
		}))
	}
	if doc.SourceURL != "" {
		root.Content = append(root.Content, paragraph(
			&NoteNode{Type: NodeText, Text: "Source: "},
			&NoteNode{Type: NodeText, Text: doc.SourceURL, Marks: []NoteMark{linkMark(doc.SourceURL)}},
		))
	}
	if len(root.Content) > 0 {
		root.Content = append(root.Content, paragraph())
	}

	for _, p := range doc.Paragraphs {
		var runs []*NoteNode
		for _, t := range p.Texts {
			if t.Text == "" {
				continue
			}
			runs = append(runs, textNode(t))
		}
		root.Content = append(root.Content, paragraph(runs...))
	}

	return root
}

func paragraph(children ...*NoteNode) *NoteNode {
	return &NoteNode{Type: NodeParagraph, Content: children}
}

func textNode(t TextRun) *NoteNode {
	n := &NoteNode{Type: NodeText, Text: t.Text}
	if t.Bold {
		n.Marks = append(n.Marks, NoteMark{Type: MarkBold})
	}
	if t.Highlight {
		n.Marks = append(n.Marks, NoteMark{Type: MarkHighlight})
	}
	if t.Link != "" {
		n.Marks = append(n.Marks, linkMark(t.Link))
	}
	return n
}

func linkMark(href string) NoteMark {
	return NoteMark{Type: MarkLink, Attrs: map[string]string{"href": href}}
}

// NoteSettings controls how a note is created.
type NoteSettings struct {
	AutoPublish bool     `json:"autoPublish"`
	Tags        []string `json:"tags,omitempty"`
}

// PublishResult describes a created note.
type PublishResult struct {
	NoteID string `json:"noteId"`
	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Publisher creates notes in the note service.
type Publisher interface {
	// Publish creates a note from the document tree.
	// HTTP failures are mapped to specific error codes, e.g. EUNAUTHORIZED
	// for an invalid key or EQUOTA for an exhausted quota.
	Publish(ctx context.Context, doc *NoteNode, settings NoteSettings) (*PublishResult, error)
}

// PublishedNote is a history record of a note created by clipnote.
type PublishedNote struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"taskId"`
	TabID       int       `json:"tabId"`
	SourceURL   string    `json:"sourceUrl"`
	Title       string    `json:"title"`
	NoteID      string    `json:"noteId"`
	ContentHash string    `json:"contentHash"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the record contains invalid fields.
func (n *PublishedNote) Validate() error {
	if n.NoteID == "" {
		return Errorf(EINVALID, "note ID required")
	}
	if n.SourceURL == "" {
		return Errorf(EINVALID, "note source URL required")
	}
	return nil
}

// NoteService represents a service for managing the publish history.
type NoteService interface {
	// CreateNote records a published note.
	CreateNote(ctx context.Context, note *PublishedNote) error

	// FindNotes retrieves history records matching the filter, newest first.
	FindNotes(ctx context.Context, filter NoteFilter) ([]*PublishedNote, error)

	// DeleteNote removes a history record.
	// Returns ENOTFOUND if the record does not exist.
	DeleteNote(ctx context.Context, id string) error
}

// NoteFilter represents a filter for FindNotes.
type NoteFilter struct {
	SourceURL   *string `json:"sourceUrl"`
	ContentHash *string `json:"contentHash"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// NoteWriter archives published documents outside the note service.
type NoteWriter interface {
	WriteNote(ctx context.Context, note *PublishedNote, doc *AIDocument) error
}
