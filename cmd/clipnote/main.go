package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/clipnote"
	"github.com/fwojciec/clipnote/clip"
	"github.com/fwojciec/clipnote/fs"
	"github.com/fwojciec/clipnote/gemini"
	"github.com/fwojciec/clipnote/goquery"
	"github.com/fwojciec/clipnote/htmltomarkdown"
	clipnotehttp "github.com/fwojciec/clipnote/http"
	"github.com/fwojciec/clipnote/mowen"
	"github.com/fwojciec/clipnote/openai"
	"github.com/fwojciec/clipnote/readability"
	"github.com/fwojciec/clipnote/rod"
	clipnoteslog "github.com/fwojciec/clipnote/slog"
	"github.com/fwojciec/clipnote/sqlite"
	"github.com/fwojciec/clipnote/trafilatura"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Stdin is read by commands that accept "-" as a file. Defaults to os.Stdin.
	Stdin io.Reader

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
		Stdin:  os.Stdin,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var firstErr error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.closers = nil
	if m.DB != nil {
		if err := m.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		m.DB = nil
	}
	return firstErr
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Stdin:  m.Stdin,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("clipnote"),
		kong.Description("Clip web pages into AI-rewritten Mowen notes."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'clipnote --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set CLIPNOTE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	settings := sqlite.NewSettingsService(m.DB)
	migrated, err := settings.MigrateSettings(ctx, clipnote.SettingsVersion)
	if err != nil {
		return fmt.Errorf("failed to migrate settings: %w", err)
	}
	if migrated {
		logger.Info("settings migrated", "version", clipnote.SettingsVersion)
	}

	deps.Broker = clip.NewBroker()
	deps.Settings = settings
	deps.Tasks = clip.NewNotifyingTaskService(
		clipnoteslog.NewLoggingTaskService(sqlite.NewTaskService(m.DB), logger),
		deps.Broker,
	)
	deps.Notes = sqlite.NewNoteService(m.DB)

	deps.Coordinator = &clip.Coordinator{
		Tasks:        deps.Tasks,
		Settings:     deps.Settings,
		NewRewriter:  rewriterFactory(ctx, logger),
		NewPublisher: publisherFactory(logger),
		Notes:        deps.Notes,
		Logger:       logger,
	}
	if cli.Archive != "" {
		deps.Coordinator.Writer = fs.NewWriter(cli.Archive)
	}

	switch cmd {
	case "clip", "extract", "batch", "serve":
		deps.Surface = m.newSurface(cmd, cli.Browser, deps, stderr)
	}

	if cmd == "extract" {
		tokens, err := gemini.NewTokenCounter("")
		if err != nil {
			logger.Warn("token counting unavailable", "err", err)
		} else {
			deps.Tokens = tokens
		}
	}

	return kongCtx.Run(deps)
}

func (m *Main) newSurface(cmd string, browser bool, deps *Dependencies, stderr io.Writer) *clip.Surface {
	logger := deps.Logger

	kind := clipnote.SurfaceCLI
	if cmd == "serve" {
		kind = clipnote.SurfacePopup
	}

	s := &clip.Surface{
		Kind:        kind,
		Fetcher:     clipnoteslog.NewLoggingFetcher(clipnotehttp.NewFetcher(), logger),
		Extractor:   newExtractor(logger),
		Coordinator: deps.Coordinator,
		Watcher:     clip.NewWatcher(deps.Tasks),
		Logger: func(format string, args ...any) {
			logger.Warn(fmt.Sprintf(format, args...))
		},
	}

	if browser {
		manager, err := rod.NewBrowserManager(rod.WithBin(os.Getenv("CLIPNOTE_CHROME")))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium not found; pages are extracted from static HTML only. Set CLIPNOTE_CHROME or use --no-browser.")
			logger.Warn("browser unavailable", "err", err)
		} else {
			fetcher := rod.NewFetcherWithManager(manager, rod.WithStealth(true))
			m.closers = append(m.closers, fetcher)
			s.Browser = clipnoteslog.NewLoggingFetcher(fetcher, logger)
		}
	}

	return s
}

// newExtractor wires the heuristic extractor with its site registry and
// the readable-content fallbacks.
func newExtractor(logger *slog.Logger) clipnote.ContentExtractor {
	e := goquery.NewContentExtractor()
	e.Sites = goquery.NewSiteRegistry(clipnoteslog.NewLoggingSiteDetector(goquery.NewDetector(), logger))
	e.Readers = []clipnote.Extractor{trafilatura.NewExtractor(), readability.NewExtractor()}
	e.Converter = htmltomarkdown.NewConverter()
	return clipnoteslog.NewLoggingContentExtractor(e, logger)
}

// rewriterFactory builds the rewriter for the configured AI provider.
func rewriterFactory(ctx context.Context, logger *slog.Logger) clip.RewriterFunc {
	return func(cfg *clipnote.Config) (clipnote.Rewriter, error) {
		var r clipnote.Rewriter
		switch cfg.Provider() {
		case clipnote.ProviderGemini:
			client, err := gemini.NewClient(ctx, cfg.AIAPIKey)
			if err != nil {
				return nil, clipnote.Errorf(clipnote.EUNAVAILABLE, "failed to connect to Gemini API: %v", err)
			}
			r = gemini.NewRewriter(client, cfg.AIModel)
		default:
			r = openai.NewRewriter(cfg.AIAPIURL, cfg.AIAPIKey, cfg.AIModel)
		}
		return clipnoteslog.NewLoggingRewriter(r, logger), nil
	}
}

func publisherFactory(logger *slog.Logger) clip.PublisherFunc {
	return func(cfg *clipnote.Config) (clipnote.Publisher, error) {
		return clipnoteslog.NewLoggingPublisher(mowen.NewPublisher(cfg.MowenAPIKey), logger), nil
	}
}

func defaultDBPath() string {
	if path := os.Getenv("CLIPNOTE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "clipnote.db"
	}
	dir := filepath.Join(home, ".clipnote")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "clipnote.db")
}
