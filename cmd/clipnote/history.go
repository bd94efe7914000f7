package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/mowen"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := clipnote.NoteFilter{Limit: c.Limit}
	if c.URL != "" {
		filter.SourceURL = &c.URL
	}

	notes, err := deps.Notes.FindNotes(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	if len(notes) == 0 {
		fmt.Fprintln(deps.Stdout, "No notes published yet. Use 'clipnote clip' to create one.")
		return nil
	}

	for _, n := range notes {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Title, mowen.NoteURLPrefix+n.NoteID)
		fmt.Fprintf(deps.Stdout, "    %s", n.SourceURL)
		if len(n.Tags) > 0 {
			fmt.Fprintf(deps.Stdout, "  #%s", strings.Join(n.Tags, " #"))
		}
		fmt.Fprintln(deps.Stdout)
	}
	return nil
}
