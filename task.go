package clipnote

import (
	"context"
	"strconv"
	"time"
)

// Task lifetimes used by the polling protocol.
const (
	// TaskTimeout is the age after which an active task is considered abandoned.
	TaskTimeout = 5 * time.Minute

	// PollTimeout bounds how long a surface follows a single task.
	PollTimeout = 10 * time.Minute

	// PollInterval is how often a surface reads the task record.
	PollInterval = time.Second
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

// Task states. Running and processing are active; completed and failed are terminal.
const (
	TaskRunning    TaskStatus = "running"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Task is the per-tab record describing an in-progress clip.
type Task struct {
	ID           string         `json:"taskId"`
	TabID        int            `json:"tabId"`
	Status       TaskStatus     `json:"status"`
	ProgressText string         `json:"progressText,omitempty"`
	StartTime    time.Time      `json:"startTime"`
	UpdateTime   time.Time      `json:"updateTime"`
	Result       *PublishResult `json:"result,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// IsActive reports whether the task is still being worked on.
func (t *Task) IsActive() bool {
	return t.Status == TaskRunning || t.Status == TaskProcessing
}

// IsTerminal reports whether the task has finished.
func (t *Task) IsTerminal() bool {
	return t.Status == TaskCompleted || t.Status == TaskFailed
}

// Abandoned reports whether an active task has not been updated for longer
// than TaskTimeout, e.g. because the process working on it died.
func (t *Task) Abandoned(now time.Time) bool {
	if !t.IsActive() {
		return false
	}
	last := t.UpdateTime
	if last.IsZero() {
		last = t.StartTime
	}
	return now.Sub(last) > TaskTimeout
}

// Validate returns an error if the task contains invalid fields.
func (t *Task) Validate() error {
	if t.ID == "" {
		return Errorf(EINVALID, "task ID required")
	}
	switch t.Status {
	case TaskRunning, TaskProcessing, TaskCompleted, TaskFailed:
	default:
		return Errorf(EINVALID, "invalid task status %q", t.Status)
	}
	return nil
}

// TaskKey returns the local storage key holding the task for a tab.
func TaskKey(tabID int) string {
	return "task_" + strconv.Itoa(tabID)
}

// TaskService represents a service for managing per-tab task records.
type TaskService interface {
	// CreateTask stores a new task for its tab.
	// Returns ECONFLICT if the tab already has an active, non-abandoned task.
	CreateTask(ctx context.Context, task *Task) error

	// FindTask retrieves the task for a tab.
	// Returns ENOTFOUND if the tab has no task.
	FindTask(ctx context.Context, tabID int) (*Task, error)

	// FindTasks retrieves all task records.
	FindTasks(ctx context.Context) ([]*Task, error)

	// PutTask overwrites the task record for the task's tab. The stored
	// record must be the same task and still active; otherwise PutTask
	// returns ENOTFOUND and writes nothing.
	PutTask(ctx context.Context, task *Task) error

	// DeleteTask removes the task record for a tab.
	// Deleting a missing record is not an error.
	DeleteTask(ctx context.Context, tabID int) error
}
