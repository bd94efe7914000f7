package clip

import (
	"context"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/bloom"
	"golang.org/x/sync/errgroup"
)

// Bloom filter sizing for batch URL deduplication.
const (
	batchExpectedURLs      = 10000
	batchFalsePositiveRate = 0.001
)

// DefaultBatchConcurrency is used when Batch.Concurrency is not positive.
const DefaultBatchConcurrency = 4

// Batch clips a list of URLs without a surface following each task.
type Batch struct {
	Surface     *Surface
	Limiter     clipnote.DomainLimiter
	Concurrency int

	// Notes, if set, is consulted to skip URLs that were already published.
	Notes clipnote.NoteService
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Published int
	Failed    int
	Skipped   int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressPublished
	ProgressFailed
	ProgressSkipped
	ProgressFinished
)

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Result    *clipnote.PublishResult
	Error     error
}

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

type batchItem struct {
	tabID int
	url   string
}

// Run clips every URL. Duplicate URLs (ignoring fragments) and URLs found in
// the publish history are skipped. Each URL gets its own negative tab ID so
// batch tasks never collide with tasks of real tabs. Per-URL failures are
// counted, not returned; Run only fails if ctx ends.
func (b *Batch) Run(ctx context.Context, urls []string, progress ProgressFunc) (*BatchResult, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	var result BatchResult
	seen := bloom.NewURLSet(batchExpectedURLs, batchFalsePositiveRate)
	var items []batchItem
	for _, u := range urls {
		u = normalizeURL(u)
		if u == "" {
			continue
		}
		if seen.Seen(u) {
			result.Skipped++
			progress(ProgressEvent{Type: ProgressSkipped, URL: u})
			continue
		}
		items = append(items, batchItem{tabID: -(len(items) + 1), url: u})
	}

	total := len(items)
	progress(ProgressEvent{Type: ProgressStarted, Total: total})

	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	var completed, published, failed, skipped atomic.Int64
	events := make(chan ProgressEvent)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for _, it := range items {
			g.Go(func() error {
				ev := b.clip(gctx, it)
				ev.Total = total
				switch ev.Type {
				case ProgressPublished:
					published.Add(1)
				case ProgressSkipped:
					skipped.Add(1)
				default:
					failed.Add(1)
				}
				ev.Completed = int(completed.Add(1))
				events <- ev
				return nil
			})
		}
		_ = g.Wait()
		close(events)
	}()

	for ev := range events {
		progress(ev)
	}

	result.Published = int(published.Load())
	result.Failed = int(failed.Load())
	result.Skipped += int(skipped.Load())

	progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})

	if err := ctx.Err(); err != nil {
		return &result, err
	}
	return &result, nil
}

func (b *Batch) clip(ctx context.Context, it batchItem) ProgressEvent {
	ev := ProgressEvent{URL: it.url}

	if b.Notes != nil {
		src := it.url
		notes, err := b.Notes.FindNotes(ctx, clipnote.NoteFilter{SourceURL: &src, Limit: 1})
		if err == nil && len(notes) > 0 {
			ev.Type = ProgressSkipped
			return ev
		}
	}

	if b.Limiter != nil {
		u, err := url.Parse(it.url)
		if err != nil {
			ev.Type, ev.Error = ProgressFailed, clipnote.Errorf(clipnote.EINVALID, "invalid URL %q", it.url)
			return ev
		}
		if err := b.Limiter.Wait(ctx, u.Hostname()); err != nil {
			ev.Type, ev.Error = ProgressFailed, err
			return ev
		}
	}

	res, err := b.process(ctx, it)
	if err != nil {
		ev.Type, ev.Error = ProgressFailed, err
		return ev
	}
	ev.Type, ev.Result = ProgressPublished, res
	return ev
}

// process runs one URL through extraction and the coordinator, then clears
// its task record since no surface watches it.
func (b *Batch) process(ctx context.Context, it batchItem) (*clipnote.PublishResult, error) {
	page, err := b.Surface.Extract(ctx, it.url)
	if err != nil {
		return nil, err
	}

	coord := b.Surface.Coordinator
	task, err := coord.Start(ctx, it.tabID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = coord.Tasks.DeleteTask(context.WithoutCancel(ctx), it.tabID) }()

	return coord.Process(ctx, ProcessInput{TabID: it.tabID, TaskID: task.ID, Page: page})
}

// normalizeURL trims whitespace and strips the fragment. Comment lines
// starting with "#" normalize to "".
func normalizeURL(u string) string {
	u = strings.TrimSpace(u)
	if strings.HasPrefix(u, "#") {
		return ""
	}
	if i := strings.IndexByte(u, '#'); i != -1 {
		u = u[:i]
	}
	return u
}
