package clipnote

import "context"

// RewriteOptions selects the prompt variant.
type RewriteOptions struct {
	// FullText keeps the whole article instead of summarizing it.
	FullText bool

	// GenerateTags asks the model for tags.
	GenerateTags bool

	// CustomPrompt is an extra user instruction appended to the prompt.
	CustomPrompt string
}

// RewriteOptionsFrom derives rewrite options from user preferences.
func RewriteOptionsFrom(prefs *Preferences) RewriteOptions {
	return RewriteOptions{
		FullText:     prefs.FullTextMode,
		GenerateTags: prefs.GenerateTags,
		CustomPrompt: prefs.CustomPrompt,
	}
}

// Rewriter turns page content into a structured note with an AI model.
type Rewriter interface {
	// Rewrite sends the page to the model and parses its answer.
	// Returns EMALFORMED if the answer cannot be parsed as an AIDocument.
	Rewrite(ctx context.Context, page *Page, opts RewriteOptions) (*AIDocument, error)
}
