package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/clip"
	clipnotehttp "github.com/fwojciec/clipnote/http"
	"github.com/fwojciec/clipnote/mock"
	"github.com/fwojciec/clipnote/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testGateway struct {
	server *httptest.Server
	tasks  clipnote.TaskService
	router *clip.Router
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { _ = db.Close() })

	settings := sqlite.NewSettingsService(db)
	require.NoError(t, settings.SaveConfig(context.Background(), &clipnote.Config{
		AIAPIURL:    "https://api.example.com/v1",
		AIAPIKey:    "sk-0123456789",
		AIModel:     "model",
		MowenAPIKey: "mowen-0123456789",
	}))

	broker := clip.NewBroker()
	tasks := clip.NewNotifyingTaskService(sqlite.NewTaskService(db), broker)

	coord := &clip.Coordinator{
		Tasks:    tasks,
		Settings: settings,
		NewRewriter: func(*clipnote.Config) (clipnote.Rewriter, error) {
			return &mock.Rewriter{
				RewriteFn: func(_ context.Context, p *clipnote.Page, _ clipnote.RewriteOptions) (*clipnote.AIDocument, error) {
					return &clipnote.AIDocument{
						Title:      p.Title,
						Paragraphs: []clipnote.Paragraph{{Texts: []clipnote.TextRun{{Text: "summary"}}}},
					}, nil
				},
			}, nil
		},
		NewPublisher: func(*clipnote.Config) (clipnote.Publisher, error) {
			return &mock.Publisher{
				PublishFn: func(context.Context, *clipnote.NoteNode, clipnote.NoteSettings) (*clipnote.PublishResult, error) {
					return &clipnote.PublishResult{NoteID: "n1"}, nil
				},
			}, nil
		},
	}
	router := &clip.Router{
		Surface: &clip.Surface{
			Kind: clipnote.SurfacePopup,
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
					return &clipnote.Page{Title: "Page", URL: src.URL(), Content: strings.Repeat("text ", 20)}, nil
				},
			},
			Coordinator: coord,
			RetryDelays: []time.Duration{},
		},
		Settings: settings,
	}

	srv := httptest.NewServer(clipnotehttp.NewServer(router, tasks, broker))
	t.Cleanup(srv.Close)

	return &testGateway{server: srv, tasks: tasks, router: router}
}

func (g *testGateway) post(t *testing.T, body string) (*http.Response, clipnote.Response) {
	t.Helper()
	resp, err := http.Post(g.server.URL+"/api/messages", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out clipnote.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)

	resp, err := http.Get(g.server.URL + "/api/health")

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_Messages(t *testing.T) {
	t.Parallel()

	t.Run("answers ping", func(t *testing.T) {
		t.Parallel()

		resp, out := newTestGateway(t).post(t, `{"action":"ping"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, out.OK)
		assert.Equal(t, "pong", out.Message)
	})

	t.Run("rejects unknown action", func(t *testing.T) {
		t.Parallel()

		resp, out := newTestGateway(t).post(t, `{"action":"explode"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, out.OK)
		assert.Contains(t, out.Error, "unknown action")
	})

	t.Run("extracts content", func(t *testing.T) {
		t.Parallel()

		resp, out := newTestGateway(t).post(t, `{"action":"extractContent","url":"https://example.com/a"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NotNil(t, out.Page)
		assert.Equal(t, "https://example.com/a", out.Page.URL)
	})

	t.Run("processes content and reports busy tabs", func(t *testing.T) {
		t.Parallel()

		g := newTestGateway(t)
		page := `{"title":"Page","url":"https://example.com/a","content":"` + strings.Repeat("text ", 20) + `"}`
		_, err := g.router.Surface.Coordinator.Start(context.Background(), 9)
		require.NoError(t, err)

		resp, out := g.post(t, `{"action":"processContent","tabId":9,"page":`+page+`}`)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "a task is already running for this tab", out.Error)

		resp, out = g.post(t, `{"action":"processContent","tabId":10,"page":`+page+`}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, out.TaskID)
		g.router.Wait()

		task, err := g.tasks.FindTask(context.Background(), 10)
		require.NoError(t, err)
		assert.Equal(t, clipnote.TaskCompleted, task.Status)
		assert.Equal(t, "n1", task.Result.NoteID)
	})
}

func TestServer_Tasks(t *testing.T) {
	t.Parallel()

	t.Run("returns 404 for a tab without task", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(newTestGateway(t).server.URL + "/api/tasks/3")

		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("rejects a malformed tab ID", func(t *testing.T) {
		t.Parallel()

		resp, err := http.Get(newTestGateway(t).server.URL + "/api/tasks/abc")

		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("gets and deletes a task", func(t *testing.T) {
		t.Parallel()

		g := newTestGateway(t)
		task, err := g.router.Surface.Coordinator.Start(context.Background(), 3)
		require.NoError(t, err)

		resp, err := http.Get(g.server.URL + "/api/tasks/3")
		require.NoError(t, err)
		var got clipnote.Task
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		resp.Body.Close()
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, clipnote.TaskRunning, got.Status)

		req, err := http.NewRequest(http.MethodDelete, g.server.URL+"/api/tasks/3", nil)
		require.NoError(t, err)
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		_, err = g.tasks.FindTask(context.Background(), 3)
		assert.Equal(t, clipnote.ENOTFOUND, clipnote.ErrorCode(err))
	})
}

type frame struct {
	TabID   int            `json:"tabId"`
	Task    *clipnote.Task `json:"task"`
	Deleted bool           `json:"deleted"`
}

func readFrame(ctx context.Context, t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var f frame
	require.NoError(t, json.Unmarshal(data, &f))
	return f
}

func TestServer_TaskStream(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	coord := g.router.Surface.Coordinator
	task, err := coord.Start(ctx, 4)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(g.server.URL, "http") + "/api/tasks/4/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer func() { _ = conn.CloseNow() }()

	first := readFrame(ctx, t, conn)
	require.NotNil(t, first.Task)
	assert.Equal(t, task.ID, first.Task.ID)

	page := &clipnote.Page{Title: "Page", URL: "https://example.com/a", Content: strings.Repeat("text ", 20)}
	_, err = coord.Process(ctx, clip.ProcessInput{TabID: 4, TaskID: task.ID, Page: page})
	require.NoError(t, err)

	var final frame
	for {
		f := readFrame(ctx, t, conn)
		require.NotNil(t, f.Task)
		if f.Task.IsTerminal() {
			final = f
			break
		}
	}
	assert.Equal(t, clipnote.TaskCompleted, final.Task.Status)

	// The terminal record stays until acknowledged.
	_, err = g.tasks.FindTask(ctx, 4)
	require.NoError(t, err)

	ack, err := json.Marshal(map[string]string{"ack": task.ID})
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, ack))

	deleted := readFrame(ctx, t, conn)
	assert.True(t, deleted.Deleted)
	_, err = g.tasks.FindTask(ctx, 4)
	assert.Equal(t, clipnote.ENOTFOUND, clipnote.ErrorCode(err))
}

func (g *testGateway) do(t *testing.T, method, path, origin, contentType, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, g.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_Origins(t *testing.T) {
	t.Parallel()

	t.Run("rejects messages from other web pages", func(t *testing.T) {
		t.Parallel()

		g := newTestGateway(t)
		resp := g.do(t, http.MethodPost, "/api/messages", "https://evil.example", "application/json",
			`{"action":"processContent","tabId":5,"page":{"title":"x","url":"https://evil.example","content":"`+strings.Repeat("spam ", 20)+`"}}`)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		var out clipnote.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Contains(t, out.Error, "not allowed")

		_, err := g.tasks.FindTask(context.Background(), 5)
		assert.Equal(t, clipnote.ENOTFOUND, clipnote.ErrorCode(err), "no task started")
	})

	t.Run("rejects task reads from other web pages", func(t *testing.T) {
		t.Parallel()

		resp := newTestGateway(t).do(t, http.MethodGet, "/api/tasks", "http://localhost:3000", "", "")

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("accepts extension pages", func(t *testing.T) {
		t.Parallel()

		resp := newTestGateway(t).do(t, http.MethodPost, "/api/messages", "chrome-extension://abcdefghijklmnop", "application/json", `{"action":"ping"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("rejects non-JSON message bodies", func(t *testing.T) {
		t.Parallel()

		g := newTestGateway(t)
		resp := g.do(t, http.MethodPost, "/api/messages", "", "text/plain", `{"action":"ping"}`)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("accepts JSON with a charset", func(t *testing.T) {
		t.Parallel()

		resp := newTestGateway(t).do(t, http.MethodPost, "/api/messages", "", "application/json; charset=utf-8", `{"action":"ping"}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("refuses task streams to other web pages", func(t *testing.T) {
		t.Parallel()

		g := newTestGateway(t)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		wsURL := "ws" + strings.TrimPrefix(g.server.URL, "http") + "/api/tasks/4/ws"

		_, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
			HTTPHeader: http.Header{"Origin": {"https://evil.example"}},
		})

		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
			HTTPHeader: http.Header{"Origin": {"chrome-extension://abcdefghijklmnop"}},
		})
		require.NoError(t, err)
		_ = conn.CloseNow()
	})

	t.Run("honours configured origins", func(t *testing.T) {
		t.Parallel()

		gw := clipnotehttp.NewServer(nil, nil, nil)
		gw.AllowedOrigins = []string{"http://localhost:*"}
		srv := httptest.NewServer(gw)
		defer srv.Close()

		get := func(origin string) int {
			req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
			require.NoError(t, err)
			req.Header.Set("Origin", origin)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			return resp.StatusCode
		}

		assert.Equal(t, http.StatusOK, get("http://localhost:5173"))
		assert.Equal(t, http.StatusForbidden, get("chrome-extension://abcdefghijklmnop"))
	})
}

func TestErrorStatusCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusConflict, clipnotehttp.ErrorStatusCode(clipnote.ECONFLICT))
	assert.Equal(t, http.StatusBadRequest, clipnotehttp.ErrorStatusCode(clipnote.EINVALID))
	assert.Equal(t, http.StatusTooManyRequests, clipnotehttp.ErrorStatusCode(clipnote.ERATELIMIT))
	assert.Equal(t, http.StatusInternalServerError, clipnotehttp.ErrorStatusCode("bogus"))
}
