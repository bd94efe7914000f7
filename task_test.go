package clipnote_test

import (
	"testing"
	"time"

	"github.com/fwojciec/clipnote"
	"github.com/stretchr/testify/assert"
)

func TestTask_Abandoned(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("active task older than timeout is abandoned", func(t *testing.T) {
		t.Parallel()

		for _, status := range []clipnote.TaskStatus{clipnote.TaskRunning, clipnote.TaskProcessing} {
			task := &clipnote.Task{Status: status, UpdateTime: now.Add(-6 * time.Minute)}
			assert.True(t, task.Abandoned(now), status)
		}
	})

	t.Run("recent active task is not abandoned", func(t *testing.T) {
		t.Parallel()

		task := &clipnote.Task{Status: clipnote.TaskProcessing, UpdateTime: now.Add(-time.Minute)}

		assert.False(t, task.Abandoned(now))
	})

	t.Run("terminal task is never abandoned", func(t *testing.T) {
		t.Parallel()

		task := &clipnote.Task{Status: clipnote.TaskCompleted, UpdateTime: now.Add(-time.Hour)}

		assert.False(t, task.Abandoned(now))
	})

	t.Run("falls back to start time", func(t *testing.T) {
		t.Parallel()

		task := &clipnote.Task{Status: clipnote.TaskRunning, StartTime: now.Add(-10 * time.Minute)}

		assert.True(t, task.Abandoned(now))
	})
}

func TestTask_States(t *testing.T) {
	t.Parallel()

	assert.True(t, (&clipnote.Task{Status: clipnote.TaskRunning}).IsActive())
	assert.True(t, (&clipnote.Task{Status: clipnote.TaskProcessing}).IsActive())
	assert.True(t, (&clipnote.Task{Status: clipnote.TaskCompleted}).IsTerminal())
	assert.True(t, (&clipnote.Task{Status: clipnote.TaskFailed}).IsTerminal())
	assert.False(t, (&clipnote.Task{Status: clipnote.TaskFailed}).IsActive())
}

func TestTask_Validate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, clipnote.EINVALID, clipnote.ErrorCode((&clipnote.Task{Status: clipnote.TaskRunning}).Validate()))
	assert.Equal(t, clipnote.EINVALID, clipnote.ErrorCode((&clipnote.Task{ID: "x", Status: "paused"}).Validate()))
	assert.NoError(t, (&clipnote.Task{ID: "x", Status: clipnote.TaskRunning}).Validate())
}

func TestTaskKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "task_42", clipnote.TaskKey(42))
}
