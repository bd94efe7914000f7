// Package fs archives published notes as Markdown files.
package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/clipnote"
	"gopkg.in/yaml.v3"
)

// URLToPath converts a source URL to a relative file path under its host.
// Example: https://example.com/blog/post → example.com/blog/post.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", clipnote.Errorf(clipnote.EINVALID, "invalid source URL %q", rawURL)
	}
	host := u.Hostname()
	if host == "" {
		return "", clipnote.Errorf(clipnote.EINVALID, "source URL %q has no host", rawURL)
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return filepath.Join(host, "index.md"), nil
	}
	// Drop empty and dot segments so the path stays inside the host directory.
	var parts []string
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		parts = append(parts, seg)
	}
	if len(parts) == 0 {
		return filepath.Join(host, "index.md"), nil
	}
	if strings.HasSuffix(u.Path, "/") {
		parts = append(parts, "index")
	}
	return filepath.Join(host, filepath.Join(parts...)) + ".md", nil
}

type frontmatter struct {
	Source    string    `yaml:"source"`
	Title     string    `yaml:"title,omitempty"`
	Note      string    `yaml:"note"`
	Tags      []string  `yaml:"tags,omitempty"`
	Published time.Time `yaml:"published"`
}

// FormatNote renders the document as Markdown with YAML frontmatter
// describing where it came from and where it was published.
func FormatNote(note *clipnote.PublishedNote, doc *clipnote.AIDocument) (string, error) {
	fm, err := yaml.Marshal(frontmatter{
		Source:    note.SourceURL,
		Title:     note.Title,
		Note:      note.NoteID,
		Tags:      note.Tags,
		Published: note.CreatedAt.UTC(),
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(fm)
	b.WriteString("---\n\n")
	b.WriteString(clipnote.FormatDocument(doc))
	b.WriteString("\n")
	return b.String(), nil
}

// Ensure Writer implements clipnote.NoteWriter at compile time.
var _ clipnote.NoteWriter = (*Writer)(nil)

// Writer archives notes as Markdown files under a base directory.
// Files are written to a temporary name and renamed into place, so a
// reader never sees a partial file.
type Writer struct {
	baseDir string
}

// NewWriter creates a new Writer that writes to the given base directory.
func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// WriteNote writes the document to its archive path, replacing an earlier
// archive of the same source URL.
func (w *Writer) WriteNote(ctx context.Context, note *clipnote.PublishedNote, doc *clipnote.AIDocument) error {
	if err := note.Validate(); err != nil {
		return err
	}

	relPath, err := URLToPath(note.SourceURL)
	if err != nil {
		return err
	}
	content, err := FormatNote(note, doc)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(w.baseDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
