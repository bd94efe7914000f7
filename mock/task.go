package mock

import (
	"context"

	"github.com/fwojciec/clipnote"
)

var _ clipnote.TaskService = (*TaskService)(nil)

// TaskService is a mock implementation of clipnote.TaskService.
type TaskService struct {
	CreateTaskFn func(ctx context.Context, task *clipnote.Task) error
	FindTaskFn   func(ctx context.Context, tabID int) (*clipnote.Task, error)
	FindTasksFn  func(ctx context.Context) ([]*clipnote.Task, error)
	PutTaskFn    func(ctx context.Context, task *clipnote.Task) error
	DeleteTaskFn func(ctx context.Context, tabID int) error
}

func (s *TaskService) CreateTask(ctx context.Context, task *clipnote.Task) error {
	return s.CreateTaskFn(ctx, task)
}

func (s *TaskService) FindTask(ctx context.Context, tabID int) (*clipnote.Task, error) {
	return s.FindTaskFn(ctx, tabID)
}

func (s *TaskService) FindTasks(ctx context.Context) ([]*clipnote.Task, error) {
	return s.FindTasksFn(ctx)
}

func (s *TaskService) PutTask(ctx context.Context, task *clipnote.Task) error {
	return s.PutTaskFn(ctx, task)
}

func (s *TaskService) DeleteTask(ctx context.Context, tabID int) error {
	return s.DeleteTaskFn(ctx, tabID)
}
