package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/book"
	"github.com/fwojciec/folio/cache"
	"github.com/fwojciec/folio/fs"
	"github.com/fwojciec/folio/goquery"
	foliohttp "github.com/fwojciec/folio/http"
	"github.com/fwojciec/folio/pdfcpu"
	folioprom "github.com/fwojciec/folio/prometheus"
	folioslog "github.com/fwojciec/folio/slog"
	"github.com/fwojciec/folio/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	BookService       folio.BookService
	PageRecordService folio.PageRecordService

	closers []io.Closer
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("folio"),
		kong.Description("Read books from the hebrewbooks.org catalog page by page."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Vars{
			"default_db":        defaultPath("folio.db"),
			"default_cache_dir": defaultPath("cache"),
			"default_base_url":  foliohttp.DefaultBaseURL,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'folio --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger := newLogger(stderr, cli.Debug)

	if err := os.MkdirAll(filepath.Dir(cli.DB), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	m.DB = sqlite.NewDB(cli.DB)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set FOLIO_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
	}
	defer m.Close()

	store := fs.NewStore(cli.CacheDir)
	if err := store.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set FOLIO_CACHE_DIR to use a different cache directory\n")
		return fmt.Errorf("failed to open cache directory %q: %w", cli.CacheDir, err)
	}

	// One limiter for both page and metadata requests to the catalog.
	limiter := foliohttp.NewHostLimiter(cli.RPS)
	fetcher := foliohttp.NewFetcher(foliohttp.WithLimiter(limiter))
	downloader := foliohttp.NewDownloader(foliohttp.WithDownloadLimiter(limiter))
	m.closers = append(m.closers, fetcher, downloader)
	catalog := &foliohttp.Catalog{BaseURL: cli.BaseURL}

	m.BookService = folioslog.NewLoggingBookService(sqlite.NewBookService(m.DB), logger)
	m.PageRecordService = sqlite.NewPageRecordService(m.DB)

	var metrics cache.Metrics
	if cli.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = folioprom.NewMetrics(reg)
		shutdown := serveMetrics(cli.MetricsAddr, reg, logger)
		defer shutdown()
	}

	renderer := pdfcpu.NewRenderer()
	config := cache.Config{
		Ahead:       cli.Ahead,
		Behind:      cli.Behind,
		WaitTimeout: cli.Timeout,
		RetryDelay:  cli.RetryDelay,
		WarmStart:   true,
		Records:     m.PageRecordService,
		Metrics:     metrics,
		Logger:      logger,
	}

	deps.Logger = logger
	deps.Books = m.BookService
	deps.Records = m.PageRecordService
	deps.Store = store
	deps.Loader = &book.Loader{
		Books:   m.BookService,
		Fetcher: folioslog.NewLoggingFetcher(fetcher, logger),
		Scraper: goquery.NewScraper(),
		Catalog: catalog,
		Logger:  logger,
	}
	deps.OpenCache = func(b *folio.Book) (folio.PageCache, func()) {
		source := folioslog.NewLoggingSource(book.NewSource(b, catalog, downloader, renderer, store), logger)
		c := cache.New(b, source, store, config)
		return c, func() {
			if err := c.Close(); err != nil {
				logger.Warn("close page cache", "book", b.ID, "err", err)
			}
		}
	}

	return kongCtx.Run(deps)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// serveMetrics exposes reg on addr until the returned func is called.
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := nethttp.NewServeMux()
	mux.Handle("/metrics", folioprom.Handler(reg))
	srv := &nethttp.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "err", err)
		}
	}()
	logger.Debug("serving metrics", "addr", addr)
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// defaultPath returns name inside ~/.folio, or name itself if the home
// directory is unknown.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".folio", name)
}
