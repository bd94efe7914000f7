package main_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/clip"
	main "github.com/fwojciec/clipnote/cmd/clipnote"
	"github.com/fwojciec/clipnote/mock"
	"github.com/fwojciec/clipnote/sqlite"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	deps   *main.Dependencies
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func validConfig() *clipnote.Config {
	return &clipnote.Config{
		AIAPIURL:    "https://api.example.com/v1",
		AIAPIKey:    "sk-0123456789",
		AIModel:     "model",
		MowenAPIKey: "mowen-0123456789",
	}
}

// newTestEnv wires sqlite services on an in-memory database with mocked
// network adapters. Pages served by the fetcher carry content unless the
// URL contains "empty".
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { _ = db.Close() })

	settings := sqlite.NewSettingsService(db)
	require.NoError(t, settings.SaveConfig(context.Background(), validConfig()))

	broker := clip.NewBroker()
	tasks := clip.NewNotifyingTaskService(sqlite.NewTaskService(db), broker)
	notes := sqlite.NewNoteService(db)

	coord := &clip.Coordinator{
		Tasks:    tasks,
		Settings: settings,
		NewRewriter: func(*clipnote.Config) (clipnote.Rewriter, error) {
			return &mock.Rewriter{
				RewriteFn: func(_ context.Context, p *clipnote.Page, _ clipnote.RewriteOptions) (*clipnote.AIDocument, error) {
					return &clipnote.AIDocument{
						Title:      "Rewritten " + p.Title,
						Paragraphs: []clipnote.Paragraph{{Texts: []clipnote.TextRun{{Text: "summary"}}}},
						Tags:       []string{"go"},
					}, nil
				},
			}, nil
		},
		NewPublisher: func(*clipnote.Config) (clipnote.Publisher, error) {
			return &mock.Publisher{
				PublishFn: func(_ context.Context, doc *clipnote.NoteNode, _ clipnote.NoteSettings) (*clipnote.PublishResult, error) {
					return &clipnote.PublishResult{NoteID: "n1", URL: "https://note.mowen.cn/detail/n1", Title: "Rewritten Page"}, nil
				},
			}, nil
		},
		Notes: notes,
	}

	watcher := clip.NewWatcher(tasks)
	watcher.Interval = time.Millisecond

	surface := &clip.Surface{
		Kind: clipnote.SurfaceCLI,
		Fetcher: &mock.Fetcher{
			OpenFn: func(_ context.Context, url string) (clipnote.PageSource, error) {
				return &mock.PageSource{
					URLFn:   func() string { return url },
					CloseFn: func() error { return nil },
				}, nil
			},
		},
		Extractor: &mock.ContentExtractor{
			ExtractPageFn: func(_ context.Context, src clipnote.PageSource) (*clipnote.Page, error) {
				content := strings.Repeat("readable text ", 10)
				if strings.Contains(src.URL(), "empty") {
					content = "tiny"
				}
				return &clipnote.Page{Title: "Page", URL: src.URL(), Content: content}, nil
			},
		},
		Coordinator: coord,
		Watcher:     watcher,
		RetryDelays: []time.Duration{},
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &testEnv{
		deps: &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      stdout,
			Stderr:      stderr,
			Stdin:       strings.NewReader(""),
			Settings:    settings,
			Tasks:       tasks,
			Notes:       notes,
			Broker:      broker,
			Coordinator: coord,
			Surface:     surface,
		},
		stdout: stdout,
		stderr: stderr,
	}
}
