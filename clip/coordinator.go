// Package clip coordinates clipping a page into a note. It owns the task
// state machine shared by every surface: a task is started for a tab,
// advanced through its processing steps, and finally marked completed or
// failed, while surfaces follow the record through the polling protocol.
package clip

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/clipnote"
	"github.com/google/uuid"
)

// Progress texts written to the task record while processing.
const (
	ProgressExtracting = "Extracting content"
	ProgressChecking   = "Checking configuration"
	ProgressRewriting  = "Rewriting with AI"
	ProgressPublishing = "Publishing note"
	ProgressDone       = "Note published"
)

// ErrCancelled is returned when the task record disappeared or was replaced
// by a newer task while work was in progress.
var ErrCancelled = clipnote.Errorf(clipnote.ENOTFOUND, "task was cancelled")

// ErrInterrupted is recorded when the caller's context ends mid-task, e.g.
// the gateway shutting down.
var ErrInterrupted = clipnote.Errorf(clipnote.EUNAVAILABLE, "processing was interrupted")

// RewriterFunc builds a Rewriter from the configuration current at task time.
type RewriterFunc func(cfg *clipnote.Config) (clipnote.Rewriter, error)

// PublisherFunc builds a Publisher from the configuration current at task time.
type PublisherFunc func(cfg *clipnote.Config) (clipnote.Publisher, error)

// Coordinator runs the task state machine.
type Coordinator struct {
	Tasks    clipnote.TaskService
	Settings clipnote.SettingsService

	NewRewriter  RewriterFunc
	NewPublisher PublisherFunc

	// Notes and Writer are optional. Failures to record history are logged
	// and never fail a published task.
	Notes  clipnote.NoteService
	Writer clipnote.NoteWriter

	Logger *slog.Logger
	Now    func() time.Time
}

// ProcessInput identifies the task to process and the page to process.
type ProcessInput struct {
	TabID  int
	TaskID string
	Page   *clipnote.Page
}

// Start creates a running task for the tab.
// Returns ECONFLICT if the tab already has an active task.
func (c *Coordinator) Start(ctx context.Context, tabID int) (*clipnote.Task, error) {
	task := &clipnote.Task{
		ID:           uuid.New().String(),
		TabID:        tabID,
		Status:       clipnote.TaskRunning,
		ProgressText: ProgressExtracting,
	}
	if err := c.Tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Process rewrites and publishes the page for an existing task. Before every
// step the stored record is compared with in.TaskID; if it was removed or
// replaced, Process stops without writing and returns ErrCancelled. Any
// other failure is written to the record as a failed task.
func (c *Coordinator) Process(ctx context.Context, in ProcessInput) (*clipnote.PublishResult, error) {
	task, err := c.checkpoint(ctx, in.TabID, in.TaskID)
	if err != nil {
		return nil, err
	}

	res, err := c.process(ctx, task, in.Page)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			return nil, err
		}
		if ctx.Err() != nil {
			err = ErrInterrupted
		}
		c.Fail(ctx, task, err)
		return nil, err
	}
	return res, nil
}

func (c *Coordinator) process(ctx context.Context, task *clipnote.Task, page *clipnote.Page) (*clipnote.PublishResult, error) {
	if err := c.advance(ctx, task, ProgressChecking); err != nil {
		return nil, err
	}

	cfg, err := c.Settings.FindConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prefs, err := c.Settings.FindPreferences(ctx)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, clipnote.Errorf(clipnote.EINVALID, "no page content to process")
	}
	if err := page.Validate(); err != nil {
		return nil, err
	}

	if err := c.advance(ctx, task, ProgressRewriting); err != nil {
		return nil, err
	}
	rw, err := c.NewRewriter(cfg)
	if err != nil {
		return nil, err
	}
	doc, err := rw.Rewrite(ctx, page, clipnote.RewriteOptionsFrom(prefs))
	if err != nil {
		return nil, err
	}
	if doc.SourceURL == "" {
		doc.SourceURL = page.URL
	}
	if !prefs.GenerateTags {
		doc.Tags = nil
	}

	if err := c.advance(ctx, task, ProgressPublishing); err != nil {
		return nil, err
	}
	pub, err := c.NewPublisher(cfg)
	if err != nil {
		return nil, err
	}
	res, err := pub.Publish(ctx, clipnote.BuildNoteDoc(doc), clipnote.NoteSettings{
		AutoPublish: prefs.AutoPublish,
		Tags:        doc.Tags,
	})
	if err != nil {
		return nil, err
	}

	// The note exists now; record history before the task turns terminal so
	// a surface exiting on completion does not lose it.
	c.record(ctx, task, doc, res)

	if _, err := c.checkpoint(ctx, task.TabID, task.ID); err != nil {
		return nil, err
	}
	task.Status = clipnote.TaskCompleted
	task.ProgressText = ProgressDone
	task.Result = res
	if err := c.put(ctx, task); err != nil {
		return nil, err
	}
	return res, nil
}

// Fail marks the task failed with the user-facing message of err, unless
// the task was cancelled or replaced in the meantime.
func (c *Coordinator) Fail(ctx context.Context, task *clipnote.Task, err error) {
	ctx = context.WithoutCancel(ctx)
	current, cerr := c.checkpoint(ctx, task.TabID, task.ID)
	if cerr != nil {
		return
	}
	current.Status = clipnote.TaskFailed
	current.Error = clipnote.ErrorMessage(err)
	if perr := c.put(ctx, current); perr != nil && !errors.Is(perr, ErrCancelled) {
		c.logger().Error("failed to record task failure", "tab", task.TabID, "task", task.ID, "error", perr)
	}
}

// Sweep deletes active tasks that have not been updated for longer than
// clipnote.TaskTimeout. Returns the number of deleted records.
func (c *Coordinator) Sweep(ctx context.Context) (int, error) {
	tasks, err := c.Tasks.FindTasks(ctx)
	if err != nil {
		return 0, err
	}

	now := c.now()
	var n int
	for _, t := range tasks {
		if !t.Abandoned(now) {
			continue
		}
		if err := c.Tasks.DeleteTask(ctx, t.TabID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// checkpoint reloads the task and reports ErrCancelled unless the stored
// record still belongs to taskID and is active.
func (c *Coordinator) checkpoint(ctx context.Context, tabID int, taskID string) (*clipnote.Task, error) {
	task, err := c.Tasks.FindTask(ctx, tabID)
	if clipnote.ErrorCode(err) == clipnote.ENOTFOUND {
		return nil, ErrCancelled
	} else if err != nil {
		return nil, err
	}
	if task.ID != taskID || !task.IsActive() {
		return nil, ErrCancelled
	}
	return task, nil
}

// advance moves the task to processing with the given progress text.
func (c *Coordinator) advance(ctx context.Context, task *clipnote.Task, progress string) error {
	current, err := c.checkpoint(ctx, task.TabID, task.ID)
	if err != nil {
		return err
	}
	current.Status = clipnote.TaskProcessing
	current.ProgressText = progress
	if err := c.put(ctx, current); err != nil {
		return err
	}
	*task = *current
	return nil
}

// put writes task back. The store refuses the write once the record was
// deleted or replaced, which is reported as ErrCancelled.
func (c *Coordinator) put(ctx context.Context, task *clipnote.Task) error {
	err := c.Tasks.PutTask(ctx, task)
	if clipnote.ErrorCode(err) == clipnote.ENOTFOUND {
		return ErrCancelled
	}
	return err
}

func (c *Coordinator) record(ctx context.Context, task *clipnote.Task, doc *clipnote.AIDocument, res *clipnote.PublishResult) {
	if c.Notes == nil && c.Writer == nil {
		return
	}

	note := &clipnote.PublishedNote{
		TaskID:      task.ID,
		TabID:       task.TabID,
		SourceURL:   doc.SourceURL,
		Title:       doc.Title,
		NoteID:      res.NoteID,
		ContentHash: HashDocument(doc),
		Tags:        doc.Tags,
	}
	if c.Notes != nil {
		if err := c.Notes.CreateNote(ctx, note); err != nil {
			c.logger().Warn("failed to record note history", "note", res.NoteID, "error", err)
		}
	}
	if c.Writer != nil {
		if err := c.Writer.WriteNote(ctx, note, doc); err != nil {
			c.logger().Warn("failed to archive note", "note", res.NoteID, "error", err)
		}
	}
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Coordinator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
