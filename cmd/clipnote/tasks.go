package main

import (
	"fmt"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/clip"
)

// Run executes the tasks list command.
func (c *TasksListCmd) Run(deps *Dependencies) error {
	tasks, err := deps.Tasks.FindTasks(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	if len(tasks) == 0 {
		fmt.Fprintln(deps.Stdout, "No tasks.")
		return nil
	}

	now := deps.now()
	for _, t := range tasks {
		state := clip.FormatTask(t)
		if t.Abandoned(now) {
			state += " (abandoned)"
		}
		fmt.Fprintf(deps.Stdout, "%d  %s  %s  %s\n", t.TabID, clip.FormatAge(now, t.StartTime), t.ID, state)
	}
	return nil
}

// Run executes the tasks cancel command.
func (c *TasksCancelCmd) Run(deps *Dependencies) error {
	if _, err := deps.Tasks.FindTask(deps.Ctx, c.TabID); err != nil {
		if clipnote.ErrorCode(err) == clipnote.ENOTFOUND {
			err = clipnote.Errorf(clipnote.ENOTFOUND, "no task for tab %d. Use 'clipnote tasks list' to see task records.", c.TabID)
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	if err := deps.Tasks.DeleteTask(deps.Ctx, c.TabID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Cancelled task for tab %d\n", c.TabID)
	return nil
}

// Run executes the tasks sweep command.
func (c *TasksSweepCmd) Run(deps *Dependencies) error {
	n, err := deps.Coordinator.Sweep(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", clipnote.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Cleared %d abandoned tasks\n", n)
	return nil
}
