package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/fwojciec/clipnote"
)

// Compile-time interface verification.
var _ clipnote.TaskService = (*TaskService)(nil)

// TaskService implements clipnote.TaskService on the local storage area.
type TaskService struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(db *DB) *TaskService {
	return &TaskService{db: db, Now: time.Now}
}

// CreateTask stores a new task for its tab. An existing active record blocks
// creation unless it has been abandoned; terminal records are replaced.
func (s *TaskService) CreateTask(ctx context.Context, task *clipnote.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	now := s.Now().UTC()
	if task.StartTime.IsZero() {
		task.StartTime = now
	}
	if task.UpdateTime.IsZero() {
		task.UpdateTime = task.StartTime
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing clipnote.Task
	found, err := getValue(ctx, tx, clipnote.AreaLocal, clipnote.TaskKey(task.TabID), &existing)
	if err != nil {
		return err
	}
	if found && existing.IsActive() && !existing.Abandoned(now) {
		return clipnote.Errorf(clipnote.ECONFLICT, "a task is already running for this tab")
	}

	if err := setValue(ctx, tx, clipnote.AreaLocal, clipnote.TaskKey(task.TabID), task); err != nil {
		return err
	}
	return tx.Commit()
}

// FindTask retrieves the task record for a tab.
func (s *TaskService) FindTask(ctx context.Context, tabID int) (*clipnote.Task, error) {
	var task clipnote.Task
	found, err := getValue(ctx, s.db, clipnote.AreaLocal, clipnote.TaskKey(tabID), &task)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, clipnote.Errorf(clipnote.ENOTFOUND, "task not found")
	}
	return &task, nil
}

// FindTasks retrieves all task records ordered by tab.
func (s *TaskService) FindTasks(ctx context.Context) ([]*clipnote.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value FROM storage
		WHERE area = ? AND key LIKE 'task\_%' ESCAPE '\'
	`, clipnote.AreaLocal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*clipnote.Task
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		task, err := decodeTask(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(tasks, func(i, j int) bool { return tasks[i].TabID < tasks[j].TabID })
	return tasks, nil
}

// PutTask overwrites the record for the task's tab and stamps UpdateTime.
// The check that the stored record is still this active task and the write
// share a transaction, so a concurrent delete cannot be undone.
func (s *TaskService) PutTask(ctx context.Context, task *clipnote.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing clipnote.Task
	found, err := getValue(ctx, tx, clipnote.AreaLocal, clipnote.TaskKey(task.TabID), &existing)
	if err != nil {
		return err
	}
	if !found || existing.ID != task.ID || !existing.IsActive() {
		return clipnote.Errorf(clipnote.ENOTFOUND, "task not found")
	}

	task.UpdateTime = s.Now().UTC()
	if err := setValue(ctx, tx, clipnote.AreaLocal, clipnote.TaskKey(task.TabID), task); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteTask removes the record for a tab.
func (s *TaskService) DeleteTask(ctx context.Context, tabID int) error {
	return removeValue(ctx, s.db, clipnote.AreaLocal, clipnote.TaskKey(tabID))
}

func decodeTask(raw string) (*clipnote.Task, error) {
	var task clipnote.Task
	if err := json.Unmarshal([]byte(raw), &task); err != nil {
		return nil, err
	}
	return &task, nil
}
