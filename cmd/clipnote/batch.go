package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/clip"
)

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	urls, err := c.readURLs(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	b := &clip.Batch{
		Surface:     deps.Surface,
		Limiter:     clip.NewDomainLimiter(c.Rate),
		Concurrency: c.Concurrency,
	}
	if !c.Force {
		b.Notes = deps.Notes
	}

	res, err := b.Run(deps.Ctx, urls, func(ev clip.ProgressEvent) {
		switch ev.Type {
		case clip.ProgressStarted:
			fmt.Fprintf(deps.Stderr, "Clipping %d URLs\n", ev.Total)
		case clip.ProgressPublished:
			url := ""
			if ev.Result != nil {
				url = ev.Result.URL
			}
			fmt.Fprintf(deps.Stdout, "[%d/%d] %s -> %s\n", ev.Completed, ev.Total, clip.TruncateURL(ev.URL, 60), url)
		case clip.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "[%d/%d] %s: %s\n", ev.Completed, ev.Total, clip.TruncateURL(ev.URL, 60), clipnote.ErrorMessage(ev.Error))
		case clip.ProgressSkipped:
			fmt.Fprintf(deps.Stderr, "skipped %s\n", clip.TruncateURL(ev.URL, 60))
		}
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Published %d, failed %d, skipped %d\n", res.Published, res.Failed, res.Skipped)
	if res.Failed > 0 {
		return clipnote.Errorf(clipnote.EINTERNAL, "%d of %d URLs failed", res.Failed, res.Published+res.Failed)
	}
	return nil
}

func (c *BatchCmd) readURLs(deps *Dependencies) ([]string, error) {
	var r io.Reader
	if c.File == "-" {
		r = deps.Stdin
	} else {
		f, err := os.Open(c.File)
		if err != nil {
			return nil, clipnote.Errorf(clipnote.EINVALID, "cannot read %s: %v", c.File, err)
		}
		defer f.Close()
		r = f
	}

	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		urls = append(urls, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, clipnote.Errorf(clipnote.EINVALID, "cannot read %s: %v", c.File, err)
	}
	return urls, nil
}
