package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/clip"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultSweepInterval is how often abandoned tasks are cleared while serving.
const DefaultSweepInterval = time.Minute

// MaxMessageSize bounds the body of a POST /api/messages request.
const MaxMessageSize = 4 << 20

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// DefaultAllowedOrigins admits browser extension pages. Patterns use
// path.Match syntax against "scheme://host".
var DefaultAllowedOrigins = []string{"chrome-extension://*", "moz-extension://*"}

// Server is the gateway through which browser surfaces send requests and
// follow their tasks.
type Server struct {
	Router        *clip.Router
	Tasks         clipnote.TaskService
	Broker        *clip.Broker
	SweepInterval time.Duration
	Logger        *slog.Logger

	// AllowedOrigins lists the Origin patterns accepted from browsers.
	// Requests without an Origin header and same-origin requests are
	// always accepted.
	AllowedOrigins []string

	handler http.Handler
}

// NewServer creates a Server. tasks should publish its writes to broker,
// e.g. a clip.NotifyingTaskService.
func NewServer(router *clip.Router, tasks clipnote.TaskService, broker *clip.Broker) *Server {
	s := &Server{
		Router:        router,
		Tasks:         tasks,
		Broker:        broker,
		SweepInterval:  DefaultSweepInterval,
		Logger:         slog.Default(),
		AllowedOrigins: DefaultAllowedOrigins,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.checkOrigin)

	r.Get("/api/health", s.handleHealth)
	r.Post("/api/messages", s.handleMessage)
	r.Get("/api/tasks", s.handleTaskList)
	r.Route("/api/tasks/{tabID}", func(r chi.Router) {
		r.Get("/", s.handleTaskGet)
		r.Delete("/", s.handleTaskDelete)
		r.Get("/ws", s.handleTaskStream)
	})

	s.handler = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr and sweeps abandoned tasks until ctx is
// done, then shuts down gracefully and waits for background processing.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.sweep(ctx)

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("gateway listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Router.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Router.Surface.Coordinator.Sweep(ctx)
			if err != nil {
				s.Logger.Error("sweep abandoned tasks", "err", err)
			} else if n > 0 {
				s.Logger.Info("swept abandoned tasks", "count", n)
			}
		}
	}
}

// checkOrigin rejects browser requests from pages outside AllowedOrigins.
func (s *Server) checkOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && !s.originAllowed(r, origin) {
			s.Logger.Warn("rejected origin", "origin", origin, "path", r.URL.Path)
			writeError(w, r, s.Logger, clipnote.Errorf(clipnote.EFORBIDDEN, "origin %q is not allowed", origin))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(r *http.Request, origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	target := strings.ToLower(u.Scheme + "://" + u.Host)
	for _, pattern := range s.AllowedOrigins {
		if ok, _ := path.Match(strings.ToLower(pattern), target); ok {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	// A JSON content type forces a CORS preflight on cross-site pages.
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		writeJSON(w, http.StatusUnsupportedMediaType, &clipnote.Response{OK: false, Error: "content type must be application/json"})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxMessageSize))
	if err != nil {
		writeError(w, r, s.Logger, clipnote.Errorf(clipnote.EINVALID, "request body too large or unreadable"))
		return
	}

	req, err := clipnote.DecodeRequest(body)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}

	resp, err := s.Router.Handle(r.Context(), req)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.Tasks.FindTasks(r.Context())
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	if tasks == nil {
		tasks = []*clipnote.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	tabID, err := tabParam(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}

	task, err := s.Tasks.FindTask(r.Context(), tabID)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	tabID, err := tabParam(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}

	if err := s.Tasks.DeleteTask(r.Context(), tabID); err != nil {
		writeError(w, r, s.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func tabParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "tabID")
	tabID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, clipnote.Errorf(clipnote.EINVALID, "invalid tab ID %q", raw)
	}
	return tabID, nil
}

// eventFrame is a task event sent over the WebSocket stream.
type eventFrame struct {
	TabID   int            `json:"tabId"`
	Task    *clipnote.Task `json:"task,omitempty"`
	Deleted bool           `json:"deleted,omitempty"`
}

// ackFrame is sent by the client once it has shown a terminal task.
type ackFrame struct {
	Ack string `json:"ack"`
}

// handleTaskStream streams the tab's task events. The current record, if
// any, is sent first. Terminal records stay stored until the client
// acknowledges them.
func (s *Server) handleTaskStream(w http.ResponseWriter, r *http.Request) {
	tabID, err := tabParam(r)
	if err != nil {
		writeError(w, r, s.Logger, err)
		return
	}

	// Subscribe before reading the current state so no update is missed.
	sub := s.Broker.Subscribe(tabID)
	defer sub.Close()

	// checkOrigin has vetted the Origin already; pin the handshake to it.
	opts := &websocket.AcceptOptions{}
	if u, err := url.Parse(r.Header.Get("Origin")); err == nil && u.Host != "" {
		opts.OriginPatterns = []string{u.Host}
	}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		s.Logger.Error("ws accept", "err", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.readAcks(ctx, cancel, conn, tabID)

	if task, err := s.Tasks.FindTask(ctx, tabID); err == nil {
		if err := writeFrame(ctx, conn, eventFrame{TabID: tabID, Task: task}); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			frame := eventFrame{TabID: ev.TabID, Task: ev.Task, Deleted: ev.Deleted()}
			if err := writeFrame(ctx, conn, frame); err != nil {
				return
			}
		}
	}
}

func (s *Server) readAcks(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, tabID int) {
	defer cancel()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var ack ackFrame
		if err := json.Unmarshal(data, &ack); err != nil || ack.Ack == "" {
			s.Logger.Debug("ws ignoring frame", "tab", tabID)
			continue
		}
		if err := clip.Acknowledge(ctx, s.Tasks, tabID, ack.Ack); err != nil {
			s.Logger.Error("ws acknowledge", "tab", tabID, "task", ack.Ack, "err", err)
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, frame eventFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}
