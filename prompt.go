package clipnote

import (
	"fmt"
	"strings"
)

// Generation parameters shared by all rewriters.
const (
	Temperature       = 0.3
	SummaryMaxTokens  = 2000
	FullTextMaxTokens = 8000

	// MaxPromptContent is the number of content characters sent to the model.
	MaxPromptContent = 30000
)

// Prompt is a system/user message pair.
type Prompt struct {
	System string
	User   string
}

// MaxTokens returns the completion budget for the prompt variant.
func (o RewriteOptions) MaxTokens() int {
	if o.FullText {
		return FullTextMaxTokens
	}
	return SummaryMaxTokens
}

const schemaDescription = `Respond with a single JSON object and nothing else:
{
  "title": "note title",
  "paragraphs": [
    {"texts": [{"text": "plain text"}, {"text": "key phrase", "bold": true}, {"text": "important", "highlight": true}, {"text": "anchor", "link": "https://..."}]}
  ],
  "tags": ["tag"]
}`

// BuildPrompt builds the prompt for rewriting a page.
func BuildPrompt(page *Page, opts RewriteOptions) Prompt {
	var sys strings.Builder
	sys.WriteString("You turn web articles into well-structured notes. ")
	if opts.FullText {
		sys.WriteString("Keep the full text of the article. Fix formatting, drop navigation and advertising leftovers, and split it into readable paragraphs without shortening it. ")
	} else {
		sys.WriteString("Summarize the article into a concise note of 3 to 8 paragraphs that keeps the key facts, arguments and conclusions. ")
	}
	sys.WriteString("Mark key phrases as bold and the most important sentences as highlight. Keep links only when they add value. ")
	if opts.GenerateTags {
		sys.WriteString("Add 1 to 5 short topical tags. ")
	} else {
		sys.WriteString("Leave the tags array empty. ")
	}
	sys.WriteString("\n\n")
	sys.WriteString(schemaDescription)

	var user strings.Builder
	fmt.Fprintf(&user, "<title>%s</title>\n", page.Title)
	fmt.Fprintf(&user, "<url>%s</url>\n", page.URL)
	if page.Description != "" {
		fmt.Fprintf(&user, "<description>%s</description>\n", page.Description)
	}
	fmt.Fprintf(&user, "<content>\n%s\n</content>\n", truncateRunes(page.Content, MaxPromptContent))
	if custom := strings.TrimSpace(opts.CustomPrompt); custom != "" {
		fmt.Fprintf(&user, "\nAdditional instructions: %s\n", custom)
	}

	return Prompt{System: sys.String(), User: user.String()}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
