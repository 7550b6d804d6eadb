// Package cache implements a prefetching page cache for a paginated remote
// document. A single background worker materializes the requested page and
// its neighbours while readers block until their page is ready.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/folio"
	"github.com/google/uuid"
)

// Default materialization retry settings.
const (
	DefaultAttempts   = 2
	DefaultRetryDelay = 250 * time.Millisecond
)

// Config holds the tunables of a Cache. Zero values select defaults, except
// for the prefetch window.
type Config struct {
	// Ahead and Behind are the prefetch window widths around a request.
	// Zero disables that side of the window; a negative width selects
	// DefaultAhead or DefaultBehind.
	Ahead  int
	Behind int

	// WaitTimeout bounds how long GetPage blocks. Zero waits until the
	// caller's context ends.
	WaitTimeout time.Duration

	// Attempts is the number of tries per page, RetryDelay the pause
	// between them.
	Attempts   uint
	RetryDelay time.Duration

	// WarmStart marks pages Ready whose rendered artifact already exists.
	WarmStart bool

	// Records receives a record for every rendered page. Optional.
	Records folio.PageRecordService

	Metrics Metrics
	Logger  *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Ahead < 0 {
		c.Ahead = DefaultAhead
	}
	if c.Behind < 0 {
		c.Behind = DefaultBehind
	}
	if c.Attempts == 0 {
		c.Attempts = DefaultAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.Metrics == nil {
		c.Metrics = nopMetrics{}
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Compile-time interface verification.
var _ folio.PageCache = (*Cache)(nil)

// Cache serves rendered pages of one book for the length of a viewing
// session. It is safe for concurrent use by multiple goroutines.
type Cache struct {
	id     string
	book   *folio.Book
	source folio.DocumentSource
	store  folio.ArtifactStore
	table  *StatusTable
	queue  *RequestQueue
	config Config
	logger *slog.Logger

	// session ends on Close and bounds every worker.
	session context.Context
	cancel  context.CancelFunc

	mu     sync.Mutex
	worker *worker
	closed bool
}

// New creates a cache for book backed by source and store. The worker is not
// started until Start or the first GetPage.
func New(book *folio.Book, source folio.DocumentSource, store folio.ArtifactStore, config Config) *Cache {
	config = config.withDefaults()
	id := uuid.NewString()
	session, cancel := context.WithCancel(context.Background())

	c := &Cache{
		id:      id,
		book:    book,
		source:  source,
		store:   store,
		table:   NewStatusTable(source.NumPages()),
		queue:   NewRequestQueue(),
		config:  config,
		logger:  config.Logger.With("session", id, "book", book.ID),
		session: session,
		cancel:  cancel,
	}
	if config.WarmStart {
		c.warmStart()
	}
	return c
}

// ID returns the session identifier used in log records.
func (c *Cache) ID() string {
	return c.id
}

// Book returns the book served by the cache.
func (c *Cache) Book() *folio.Book {
	return c.book
}

// NumPages returns the number of pages of the book.
func (c *Cache) NumPages() int {
	return c.table.NumPages()
}

// State returns the state of page. It panics if page is out of range.
func (c *Cache) State(page int) folio.PageState {
	return c.table.Get(page)
}

// Counts returns the number of pages in each state.
func (c *Cache) Counts() map[folio.PageState]int {
	return c.table.Counts()
}

// WorkerState returns the state of the background worker.
func (c *Cache) WorkerState() WorkerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.worker == nil {
		return WorkerStopped
	}
	return c.worker.State()
}

// WorkerPage returns the page the worker is materializing or signaling, or 0
// when it is idle or stopped.
func (c *Cache) WorkerPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.worker == nil {
		return 0
	}
	return c.worker.Page()
}

// Start starts the background worker if it is not running.
func (c *Cache) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureWorker()
}

// GetPage returns the path of the rendered artifact of page, blocking until
// it is ready. Returns ENOTFOUND if page is out of range, ETIMEOUT if the
// configured wait timeout expires and EINVALID once the cache is closed.
func (c *Cache) GetPage(ctx context.Context, page int) (string, error) {
	if page < 1 || page > c.table.NumPages() {
		return "", folio.Errorf(folio.ENOTFOUND, "page %d not found: book %d has %d pages", page, c.book.ID, c.table.NumPages())
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", folio.Errorf(folio.EINVALID, "page cache closed")
	}
	c.queue.PushFront(page)
	c.ensureWorker()
	c.mu.Unlock()

	begin := time.Now()
	if c.table.Get(page) == folio.PageReady {
		c.config.Metrics.ObserveWait(WaitHit, time.Since(begin))
		return c.source.LocateRendered(page), nil
	}

	if c.config.WaitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.WaitTimeout)
		defer cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.session, cancel)
	defer stop()

	if err := c.table.WaitReady(ctx, page); err != nil {
		switch {
		case c.session.Err() != nil:
			c.config.Metrics.ObserveWait(WaitCanceled, time.Since(begin))
			return "", folio.Errorf(folio.EINVALID, "page cache closed")
		case errors.Is(err, context.DeadlineExceeded):
			c.config.Metrics.ObserveWait(WaitTimeout, time.Since(begin))
			c.logger.Warn("page wait timed out", "page", page, "duration", time.Since(begin))
			return "", folio.Errorf(folio.ETIMEOUT, "page %d not ready after %s", page, time.Since(begin).Round(time.Millisecond))
		default:
			c.config.Metrics.ObserveWait(WaitCanceled, time.Since(begin))
			return "", err
		}
	}

	c.config.Metrics.ObserveWait(WaitMiss, time.Since(begin))
	return c.source.LocateRendered(page), nil
}

// Interrupt stops the running worker and waits for it to exit. Pages it was
// working on go back to Pending. The next GetPage starts a new worker.
func (c *Cache) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopWorker()
}

// Close stops the worker and releases any goroutine blocked in GetPage.
// Artifacts on disk are kept.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()
	c.stopWorker()

	counts := c.table.Counts()
	c.logger.Debug("page cache closed",
		"ready", counts[folio.PageReady],
		"pending", counts[folio.PagePending],
	)
	return nil
}

// ensureWorker starts a worker unless one is running. Caller holds c.mu.
func (c *Cache) ensureWorker() {
	if c.closed {
		return
	}
	if c.worker != nil {
		select {
		case <-c.worker.done:
		default:
			return
		}
	}

	ctx, cancel := context.WithCancel(c.session)
	w := &worker{
		book:       c.book,
		source:     c.source,
		store:      c.store,
		table:      c.table,
		queue:      c.queue,
		sched:      Scheduler{Ahead: c.config.Ahead, Behind: c.config.Behind},
		records:    c.config.Records,
		metrics:    c.config.Metrics,
		logger:     c.logger,
		attempts:   c.config.Attempts,
		retryDelay: c.config.RetryDelay,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	w.setState(WorkerIdle, 0)
	c.worker = w
	go w.run(ctx)
}

// stopWorker cancels the worker and waits for it. Caller holds c.mu.
func (c *Cache) stopWorker() {
	if c.worker == nil {
		return
	}
	c.worker.cancel()
	<-c.worker.done
}

// PageLister is implemented by artifact stores that can list the rendered
// pages of a book in one call. Warm start uses it instead of checking every
// page.
type PageLister interface {
	RenderedPages(bookID int) ([]int, error)
}

func (c *Cache) warmStart() {
	pages, err := c.renderedPages()
	if err != nil {
		c.logger.Warn("warm start", "err", err)
		return
	}

	var n int
	for _, page := range pages {
		if page < 1 || page > c.table.NumPages() {
			continue
		}
		c.table.Set(page, folio.PageReady)
		n++
	}
	c.logger.Debug("warm start", "ready", n, "pages", c.table.NumPages())
}

func (c *Cache) renderedPages() ([]int, error) {
	if l, ok := c.store.(PageLister); ok {
		return l.RenderedPages(c.book.ID)
	}
	var pages []int
	for page := 1; page <= c.table.NumPages(); page++ {
		if c.store.Exists(c.source.LocateRendered(page)) {
			pages = append(pages, page)
		}
	}
	return pages, nil
}
