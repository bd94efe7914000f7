package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/clip"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Logger *slog.Logger

	Settings    clipnote.SettingsService
	Tasks       clipnote.TaskService
	Notes       clipnote.NoteService
	Broker      *clip.Broker
	Coordinator *clip.Coordinator
	Surface     *clip.Surface
	Tokens      clipnote.TokenCounter

	Now func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Log service calls to stderr"`
	Browser bool   `default:"true" negatable:"" help:"Render pages with too little static content in a headless browser"`
	Archive string `env:"CLIPNOTE_ARCHIVE" type:"path" help:"Also write published notes as Markdown under this directory"`

	Clip    ClipCmd    `cmd:"" help:"Clip a web page into a Mowen note"`
	Extract ExtractCmd `cmd:"" help:"Show the readable content of a web page"`
	Batch   BatchCmd   `cmd:"" help:"Clip every URL listed in a file"`
	Serve   ServeCmd   `cmd:"" help:"Run the gateway used by browser surfaces"`
	Config  ConfigCmd  `cmd:"" help:"Show or change configuration"`
	Tasks   TasksCmd   `cmd:"" help:"Inspect and clear task records"`
	History HistoryCmd `cmd:"" help:"List published notes"`
}

// ClipCmd is the "clip" subcommand.
type ClipCmd struct {
	URL   string `arg:"" help:"Page URL"`
	TabID int    `name:"tab" default:"0" help:"Tab ID the task is recorded under"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL   string `arg:"" help:"Page URL"`
	Quiet bool   `short:"q" help:"Only show the summary, not the content"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File        string  `arg:"" help:"File with one URL per line, or - for stdin"`
	Concurrency int     `short:"c" default:"4" help:"Concurrent clip limit"`
	Rate        float64 `default:"1" help:"Requests per second per domain"`
	Force       bool    `short:"f" help:"Clip URLs that were already published"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr  string        `default:"127.0.0.1:8787" help:"Listen address"`
	Sweep time.Duration `default:"1m" help:"Interval between sweeps of abandoned tasks"`
	Allow []string      `name:"allow-origin" default:"chrome-extension://*,moz-extension://*" help:"Browser origins allowed to call the gateway (path.Match patterns)"`
}

// ConfigCmd groups the "config" subcommands.
type ConfigCmd struct {
	Show   ConfigShowCmd   `cmd:"" help:"Show configuration and preferences"`
	Set    ConfigSetCmd    `cmd:"" help:"Set a configuration or preference key"`
	Import ConfigImportCmd `cmd:"" help:"Load settings from a YAML file"`
	Export ConfigExportCmd `cmd:"" help:"Write settings as YAML"`
}

// ConfigShowCmd is the "config show" subcommand.
type ConfigShowCmd struct {
	Reveal bool `help:"Show API keys unmasked"`
}

// ConfigSetCmd is the "config set" subcommand.
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting key, e.g. ai_model or auto_publish"`
	Value string `arg:"" help:"New value"`
}

// ConfigImportCmd is the "config import" subcommand.
type ConfigImportCmd struct {
	File string `arg:"" type:"existingfile" help:"YAML settings file"`
}

// ConfigExportCmd is the "config export" subcommand.
type ConfigExportCmd struct {
	File string `arg:"" optional:"" help:"Output file (default stdout)"`
}

// TasksCmd groups the "tasks" subcommands.
type TasksCmd struct {
	List   TasksListCmd   `cmd:"" default:"1" help:"List task records"`
	Cancel TasksCancelCmd `cmd:"" help:"Cancel the task of a tab"`
	Sweep  TasksSweepCmd  `cmd:"" help:"Clear abandoned task records"`
}

// TasksListCmd is the "tasks list" subcommand.
type TasksListCmd struct{}

// TasksCancelCmd is the "tasks cancel" subcommand.
type TasksCancelCmd struct {
	TabID int `arg:"" help:"Tab ID"`
}

// TasksSweepCmd is the "tasks sweep" subcommand.
type TasksSweepCmd struct{}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	URL   string `help:"Only show notes clipped from this URL"`
	Limit int    `short:"n" default:"20" help:"Maximum number of notes"`
}
