package slog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/mock"
	clipslog "github.com/fwojciec/clipnote/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingTaskService(t *testing.T) {
	t.Parallel()

	t.Run("logs status changes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.TaskService{
			PutTaskFn: func(context.Context, *clipnote.Task) error { return nil },
		}

		svc := clipslog.NewLoggingTaskService(inner, newLogger(&buf))
		err := svc.PutTask(context.Background(), &clipnote.Task{
			ID: "t1", TabID: 4, Status: clipnote.TaskFailed, Error: "task timed out",
		})

		require.NoError(t, err)
		output := buf.String()
		assert.Contains(t, output, "msg=\"task update\"")
		assert.Contains(t, output, "tab=4")
		assert.Contains(t, output, "status=failed")
		assert.Contains(t, output, "task_error=\"task timed out\"")
	})

	t.Run("logs polling reads at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.TaskService{
			FindTaskFn: func(context.Context, int) (*clipnote.Task, error) {
				return nil, clipnote.Errorf(clipnote.ENOTFOUND, "task not found")
			},
		}

		svc := clipslog.NewLoggingTaskService(inner, newLogger(&buf))
		_, err := svc.FindTask(context.Background(), 4)

		assert.Equal(t, clipnote.ENOTFOUND, clipnote.ErrorCode(err))
		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "msg=\"task find\"")
	})

	t.Run("delegates creates and deletes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var created, deleted bool
		inner := &mock.TaskService{
			CreateTaskFn: func(context.Context, *clipnote.Task) error { created = true; return nil },
			DeleteTaskFn: func(context.Context, int) error { deleted = true; return nil },
			FindTasksFn: func(context.Context) ([]*clipnote.Task, error) {
				return []*clipnote.Task{{ID: "a"}, {ID: "b"}}, nil
			},
		}

		svc := clipslog.NewLoggingTaskService(inner, newLogger(&buf))
		require.NoError(t, svc.CreateTask(context.Background(), &clipnote.Task{ID: "t1", TabID: 1}))
		require.NoError(t, svc.DeleteTask(context.Background(), 1))
		tasks, err := svc.FindTasks(context.Background())

		require.NoError(t, err)
		assert.Len(t, tasks, 2)
		assert.True(t, created)
		assert.True(t, deleted)
		assert.Contains(t, buf.String(), "count=2")
	})
}
