package clip

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/clipnote"
)

// HashDocument computes the xxhash of a document's title and paragraph text.
// Two rewrites with identical text hash equally regardless of marks.
func HashDocument(doc *clipnote.AIDocument) string {
	var sb strings.Builder
	sb.WriteString(doc.Title)
	for _, p := range doc.Paragraphs {
		sb.WriteByte('\n')
		sb.WriteString(p.Text())
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(sb.String()))
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatTask renders a task record as a single status line.
func FormatTask(t *clipnote.Task) string {
	switch t.Status {
	case clipnote.TaskCompleted:
		if t.Result != nil && t.Result.URL != "" {
			return "completed: " + t.Result.URL
		}
		return "completed"
	case clipnote.TaskFailed:
		return "failed: " + t.Error
	default:
		if t.ProgressText == "" {
			return string(t.Status)
		}
		return fmt.Sprintf("%s: %s", t.Status, t.ProgressText)
	}
}

// FormatAge formats how long ago t happened, rounded to seconds.
func FormatAge(now, t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return now.Sub(t).Round(time.Second).String()
}

// FormatTokens formats token count in human-readable form.
func FormatTokens(tokens int) string {
	if tokens < 1000 {
		return fmt.Sprintf("~%d tokens", tokens)
	}
	return fmt.Sprintf("~%dk tokens", (tokens+500)/1000)
}
