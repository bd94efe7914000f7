package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/clipnote"
)

// Ensure LoggingTaskService implements clipnote.TaskService.
var _ clipnote.TaskService = (*LoggingTaskService)(nil)

// LoggingTaskService wraps a TaskService and logs task state changes.
// Reads are logged at debug level since surfaces poll them every second.
type LoggingTaskService struct {
	next   clipnote.TaskService
	logger *slog.Logger
}

// NewLoggingTaskService creates a new LoggingTaskService.
func NewLoggingTaskService(next clipnote.TaskService, logger *slog.Logger) *LoggingTaskService {
	return &LoggingTaskService{next: next, logger: logger}
}

func (s *LoggingTaskService) CreateTask(ctx context.Context, task *clipnote.Task) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("task create",
			"tab", task.TabID,
			"task", task.ID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateTask(ctx, task)
}

func (s *LoggingTaskService) FindTask(ctx context.Context, tabID int) (task *clipnote.Task, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("task find",
			"tab", tabID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindTask(ctx, tabID)
}

func (s *LoggingTaskService) FindTasks(ctx context.Context) (tasks []*clipnote.Task, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("task list",
			"count", len(tasks),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindTasks(ctx)
}

func (s *LoggingTaskService) PutTask(ctx context.Context, task *clipnote.Task) (err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"tab", task.TabID,
			"task", task.ID,
			"status", task.Status,
			"progress", task.ProgressText,
			"duration", time.Since(begin),
			"err", err,
		}
		if task.Error != "" {
			attrs = append(attrs, "task_error", task.Error)
		}
		s.logger.Info("task update", attrs...)
	}(time.Now())
	return s.next.PutTask(ctx, task)
}

func (s *LoggingTaskService) DeleteTask(ctx context.Context, tabID int) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("task delete",
			"tab", tabID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteTask(ctx, tabID)
}
