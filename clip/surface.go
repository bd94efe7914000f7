package clip

import (
	"context"
	"time"

	"github.com/fwojciec/clipnote"
)

// Surface is one user-facing entry point (popup, side panel, CLI). Each
// instance holds its own state; surfaces share only the task records.
type Surface struct {
	Kind string

	Fetcher     clipnote.Fetcher
	Extractor   clipnote.ContentExtractor
	Coordinator *Coordinator
	Watcher     *Watcher

	// Browser, if set, renders pages whose static content is insufficient.
	Browser clipnote.Fetcher

	RetryDelays []time.Duration
	Logger      LogFunc
}

// Extract opens the URL and returns its readable content. When the page
// has too little content and a Browser is configured, the page is rendered
// again in the browser and the longer result wins. Short content is
// returned as is; the coordinator rejects it when processing.
func (s *Surface) Extract(ctx context.Context, url string) (*clipnote.Page, error) {
	page, err := s.extract(ctx, s.Fetcher, url)
	if err != nil || page.Sufficient() || s.Browser == nil {
		return page, err
	}

	rendered, err := s.extract(ctx, s.Browser, url)
	if err != nil {
		if s.Logger != nil {
			s.Logger("browser fallback for %s failed: %v", url, err)
		}
		return page, nil
	}
	if rendered.Len() > page.Len() {
		return rendered, nil
	}
	return page, nil
}

func (s *Surface) extract(ctx context.Context, f clipnote.Fetcher, url string) (*clipnote.Page, error) {
	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	src, err := OpenWithRetry(ctx, f, url, s.Logger, delays)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	return s.Extractor.ExtractPage(ctx, src)
}

// Clip extracts the page, starts a task for the tab, processes it in the
// background and follows the task record until it finishes. render, if not
// nil, is called with every observed record.
//
// A failed task is reported as an error carrying the task's message.
func (s *Surface) Clip(ctx context.Context, tabID int, url string, render func(*clipnote.Task)) (*clipnote.Task, error) {
	page, err := s.Extract(ctx, url)
	if err != nil {
		return nil, err
	}

	task, err := s.Coordinator.Start(ctx, tabID)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Coordinator.Process(ctx, ProcessInput{TabID: tabID, TaskID: task.ID, Page: page})
	}()

	final, err := s.Watcher.Watch(ctx, tabID, render)
	if err != nil {
		return nil, err
	}
	// Processing ends right after the terminal write.
	<-done

	if final.Status == clipnote.TaskFailed {
		return final, &clipnote.Error{Code: clipnote.EINTERNAL, Message: final.Error}
	}
	return final, nil
}

// Cancel removes the tab's task record. Work in flight notices at its next
// checkpoint and stops without writing.
func (s *Surface) Cancel(ctx context.Context, tabID int) error {
	return s.Coordinator.Tasks.DeleteTask(ctx, tabID)
}
