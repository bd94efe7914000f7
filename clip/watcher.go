package clip

import (
	"context"
	"time"

	"github.com/fwojciec/clipnote"
)

// ErrTimedOut is returned when a watched task is abandoned or polled for
// longer than the poll timeout.
var ErrTimedOut = clipnote.Errorf(clipnote.ETIMEOUT, "task timed out")

// Watcher follows a task record the way a surface does: it reads the record
// periodically until the task reaches a terminal state, then removes it.
type Watcher struct {
	Tasks clipnote.TaskService

	Interval    time.Duration
	TaskTimeout time.Duration
	PollTimeout time.Duration

	Now func() time.Time
}

// NewWatcher returns a Watcher using the standard protocol timings.
func NewWatcher(tasks clipnote.TaskService) *Watcher {
	return &Watcher{
		Tasks:       tasks,
		Interval:    clipnote.PollInterval,
		TaskTimeout: clipnote.TaskTimeout,
		PollTimeout: clipnote.PollTimeout,
	}
}

// Watch polls the tab's task record and calls render with every observed
// record. On a terminal record it deletes the record and returns it; a
// failed task is returned with a nil error and callers inspect its status.
//
// Returns ErrCancelled if the record disappears, and ErrTimedOut (after
// deleting the record) if the task has been active longer than TaskTimeout
// or the poll has lasted longer than PollTimeout.
func (w *Watcher) Watch(ctx context.Context, tabID int, render func(*clipnote.Task)) (*clipnote.Task, error) {
	started := w.now()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		task, err := w.Tasks.FindTask(ctx, tabID)
		if clipnote.ErrorCode(err) == clipnote.ENOTFOUND {
			return nil, ErrCancelled
		} else if err != nil {
			return nil, err
		}

		if render != nil {
			render(task)
		}

		if task.IsTerminal() {
			if err := w.Tasks.DeleteTask(ctx, tabID); err != nil {
				return nil, err
			}
			return task, nil
		}

		now := w.now()
		expired := !task.StartTime.IsZero() && now.Sub(task.StartTime) > w.TaskTimeout
		if expired || now.Sub(started) > w.PollTimeout {
			if err := w.Tasks.DeleteTask(ctx, tabID); err != nil {
				return nil, err
			}
			return nil, ErrTimedOut
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}
