package main

import (
	"fmt"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/clip"
	clipnotehttp "github.com/fwojciec/clipnote/http"
)

// Run executes the serve command. It blocks until the context is cancelled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	router := &clip.Router{
		Surface:     deps.Surface,
		Settings:    deps.Settings,
		BaseContext: deps.Ctx,
	}

	srv := clipnotehttp.NewServer(router, deps.Tasks, deps.Broker)
	if c.Sweep > 0 {
		srv.SweepInterval = c.Sweep
	}
	if len(c.Allow) > 0 {
		srv.AllowedOrigins = c.Allow
	}
	if deps.Logger != nil {
		srv.Logger = deps.Logger
	}

	fmt.Fprintf(deps.Stderr, "Serving on http://%s\n", c.Addr)
	if err := srv.ListenAndServe(deps.Ctx, c.Addr); err != nil {
		return clipnote.Errorf(clipnote.EUNAVAILABLE, "gateway stopped: %v", err)
	}
	return nil
}
