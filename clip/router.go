package clip

import (
	"context"
	"sync"

	"github.com/fwojciec/clipnote"
)

// Router answers decoded requests from surfaces. Processing requests are
// acknowledged immediately and run in the background; surfaces follow them
// through the task record.
type Router struct {
	Surface  *Surface
	Settings clipnote.SettingsService

	// BaseContext scopes background processing. Cancelling it interrupts
	// in-flight work. Without it, processing runs detached from requests.
	BaseContext context.Context

	wg sync.WaitGroup
}

// Handle dispatches req. On failure it returns both an error and a Response
// carrying the user-facing message.
func (r *Router) Handle(ctx context.Context, req clipnote.Request) (*clipnote.Response, error) {
	resp, err := r.handle(ctx, req)
	if err != nil {
		return &clipnote.Response{OK: false, Error: clipnote.ErrorMessage(err)}, err
	}
	return resp, nil
}

func (r *Router) handle(ctx context.Context, req clipnote.Request) (*clipnote.Response, error) {
	switch req := req.(type) {
	case *clipnote.PingRequest:
		return &clipnote.Response{OK: true, Message: "pong"}, nil

	case *clipnote.ExtractContentRequest:
		page, err := r.Surface.Extract(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		return &clipnote.Response{OK: true, Page: page}, nil

	case *clipnote.ProcessContentRequest:
		return r.process(ctx, req)

	case *clipnote.SwitchSurfaceRequest:
		prefs, err := r.Settings.FindPreferences(ctx)
		if err != nil {
			return nil, err
		}
		prefs.Surface = req.Surface
		if err := r.Settings.SavePreferences(ctx, prefs); err != nil {
			return nil, err
		}
		return &clipnote.Response{OK: true, Message: "switched to " + req.Surface}, nil

	default:
		return nil, clipnote.Errorf(clipnote.EINVALID, "unsupported action %q", req.Action())
	}
}

func (r *Router) process(ctx context.Context, req *clipnote.ProcessContentRequest) (*clipnote.Response, error) {
	coord := r.Surface.Coordinator

	taskID := req.TaskID
	if taskID == "" {
		task, err := coord.Start(ctx, req.TabID)
		if err != nil {
			return nil, err
		}
		taskID = task.ID
	}

	// The request context ends with the reply; processing outlives it.
	bg := r.BaseContext
	if bg == nil {
		bg = context.WithoutCancel(ctx)
	}
	in := ProcessInput{TabID: req.TabID, TaskID: taskID, Page: req.Page}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, _ = coord.Process(bg, in)
	}()

	return &clipnote.Response{OK: true, TaskID: taskID}, nil
}

// Wait blocks until background processing started by Handle has finished.
func (r *Router) Wait() {
	r.wg.Wait()
}
