package main

import (
	"fmt"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/clip"
)

// Run executes the clip command.
func (c *ClipCmd) Run(deps *Dependencies) error {
	var last string
	render := func(t *clipnote.Task) {
		line := clip.FormatTask(t)
		if line == last {
			return
		}
		last = line
		fmt.Fprintln(deps.Stderr, line)
	}

	task, err := deps.Surface.Clip(deps.Ctx, c.TabID, c.URL, render)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	res := task.Result
	if res.Title != "" {
		fmt.Fprintf(deps.Stdout, "Published %q\n", res.Title)
	} else {
		fmt.Fprintln(deps.Stdout, "Published")
	}
	if res.URL != "" {
		fmt.Fprintln(deps.Stdout, res.URL)
	}
	return nil
}

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	page, err := deps.Surface.Extract(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Title:  %s\n", page.Title)
	fmt.Fprintf(deps.Stdout, "URL:    %s\n", page.URL)
	size := fmt.Sprintf("%d chars", page.Len())
	if deps.Tokens != nil {
		if n, err := deps.Tokens.CountTokens(deps.Ctx, page.Content); err == nil {
			size += ", " + clip.FormatTokens(n)
		}
	}
	fmt.Fprintf(deps.Stdout, "Length: %s\n", size)
	if deps.Tokens != nil && deps.Settings != nil {
		if prefs, err := deps.Settings.FindPreferences(deps.Ctx); err == nil {
			prompt := clipnote.BuildPrompt(page, clipnote.RewriteOptionsFrom(prefs))
			if n, err := deps.Tokens.CountTokens(deps.Ctx, prompt.System+"\n"+prompt.User); err == nil {
				fmt.Fprintf(deps.Stdout, "Prompt: %s\n", clip.FormatTokens(n))
			}
		}
	}
	if !page.Sufficient() {
		fmt.Fprintf(deps.Stdout, "Warning: %s\n", clipnote.ErrorMessage(page.Validate()))
	}

	if !c.Quiet {
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, page.Content)
	}
	return nil
}
