package clip_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/clip"
	"github.com/fwojciec/clipnote/mock"
)

// taskStore is an in-memory task table with the same semantics as the
// sqlite implementation.
type taskStore struct {
	mu    sync.Mutex
	tasks map[int]clipnote.Task
	puts  []clipnote.Task
}

func newTaskStore() *taskStore {
	return &taskStore{tasks: make(map[int]clipnote.Task)}
}

func (s *taskStore) service() *mock.TaskService {
	return &mock.TaskService{
		CreateTaskFn: func(_ context.Context, task *clipnote.Task) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.tasks[task.TabID]; ok && cur.IsActive() && !cur.Abandoned(time.Now()) {
				return clipnote.Errorf(clipnote.ECONFLICT, "a task is already running for this tab")
			}
			task.StartTime = time.Now()
			task.UpdateTime = task.StartTime
			s.tasks[task.TabID] = *task
			return nil
		},
		FindTaskFn: func(_ context.Context, tabID int) (*clipnote.Task, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			t, ok := s.tasks[tabID]
			if !ok {
				return nil, clipnote.Errorf(clipnote.ENOTFOUND, "task not found")
			}
			return &t, nil
		},
		FindTasksFn: func(_ context.Context) ([]*clipnote.Task, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []*clipnote.Task
			for _, t := range s.tasks {
				out = append(out, &t)
			}
			return out, nil
		},
		PutTaskFn: func(_ context.Context, task *clipnote.Task) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if cur, ok := s.tasks[task.TabID]; !ok || cur.ID != task.ID || !cur.IsActive() {
				return clipnote.Errorf(clipnote.ENOTFOUND, "task not found")
			}
			task.UpdateTime = time.Now()
			s.tasks[task.TabID] = *task
			s.puts = append(s.puts, *task)
			return nil
		},
		DeleteTaskFn: func(_ context.Context, tabID int) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.tasks, tabID)
			return nil
		},
	}
}

func (s *taskStore) put(t clipnote.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.TabID] = t
}

func (s *taskStore) get(tabID int) (clipnote.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[tabID]
	return t, ok
}

func (s *taskStore) progress() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, t := range s.puts {
		out = append(out, t.ProgressText)
	}
	return out
}

func validConfig() *clipnote.Config {
	return &clipnote.Config{
		AIAPIURL:    "https://api.openai.com/v1",
		AIAPIKey:    "sk-0123456789",
		AIModel:     "gpt-4o-mini",
		MowenAPIKey: "mowen-0123456789",
	}
}

func settingsWith(cfg *clipnote.Config, prefs clipnote.Preferences) *mock.SettingsService {
	return &mock.SettingsService{
		FindConfigFn: func(context.Context) (*clipnote.Config, error) {
			c := *cfg
			return &c, nil
		},
		FindPreferencesFn: func(context.Context) (*clipnote.Preferences, error) {
			p := prefs
			return &p, nil
		},
		SavePreferencesFn: func(context.Context, *clipnote.Preferences) error { return nil },
	}
}

func testPage() *clipnote.Page {
	return &clipnote.Page{
		Title:   "Article",
		URL:     "https://example.com/article",
		Content: strings.Repeat("Readable article text. ", 5),
	}
}

func testDocument() *clipnote.AIDocument {
	return &clipnote.AIDocument{
		Title: "Summary",
		Paragraphs: []clipnote.Paragraph{
			{Texts: []clipnote.TextRun{{Text: "First"}}},
			{Texts: []clipnote.TextRun{{Text: "Second", Bold: true}}},
		},
		Tags: []string{"go"},
	}
}

// newCoordinator returns a coordinator whose rewriter and publisher succeed.
func newCoordinator(tasks clipnote.TaskService) *clip.Coordinator {
	return &clip.Coordinator{
		Tasks:    tasks,
		Settings: settingsWith(validConfig(), clipnote.DefaultPreferences()),
		NewRewriter: func(*clipnote.Config) (clipnote.Rewriter, error) {
			return &mock.Rewriter{
				RewriteFn: func(context.Context, *clipnote.Page, clipnote.RewriteOptions) (*clipnote.AIDocument, error) {
					return testDocument(), nil
				},
			}, nil
		},
		NewPublisher: func(*clipnote.Config) (clipnote.Publisher, error) {
			return &mock.Publisher{
				PublishFn: func(context.Context, *clipnote.NoteNode, clipnote.NoteSettings) (*clipnote.PublishResult, error) {
					return &clipnote.PublishResult{NoteID: "note-1", URL: "https://note.mowen.cn/detail/note-1"}, nil
				},
			}, nil
		},
	}
}

func staticFetcher(html string) *mock.Fetcher {
	return &mock.Fetcher{
		OpenFn: func(_ context.Context, url string) (clipnote.PageSource, error) {
			return &mock.PageSource{
				HTMLFn:    func(context.Context) (string, error) { return html, nil },
				URLFn:     func() string { return url },
				DynamicFn: func() bool { return false },
				CloseFn:   func() error { return nil },
			}, nil
		},
	}
}

func pageExtractor() *mock.ContentExtractor {
	return &mock.ContentExtractor{
		ExtractPageFn: func(_ context.Context, src clipnote.PageSource) (*clipnote.Page, error) {
			p := testPage()
			p.URL = src.URL()
			return p, nil
		},
	}
}

func newSurface(tasks clipnote.TaskService) *clip.Surface {
	w := clip.NewWatcher(tasks)
	w.Interval = time.Millisecond
	return &clip.Surface{
		Kind:        clipnote.SurfaceCLI,
		Fetcher:     staticFetcher("<html></html>"),
		Extractor:   pageExtractor(),
		Coordinator: newCoordinator(tasks),
		Watcher:     w,
		RetryDelays: []time.Duration{0, 0, 0},
	}
}
