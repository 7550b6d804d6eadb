// Package viewer navigates a book page by page on top of a page cache.
//
// Every navigation starts a load that runs on its own goroutine. Starting a
// new load cancels the previous one, and results of superseded loads are
// never delivered.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/folio"
)

// Load is the outcome of loading one page.
type Load struct {
	Page     int
	Path     string
	Err      error
	Duration time.Duration
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the logger for load results. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Viewer) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Viewer tracks the current page of a book and loads it through a
// folio.PageCache.
type Viewer struct {
	cache  folio.PageCache
	logger *slog.Logger
	loads  chan Load

	mu      sync.Mutex
	current int
	seq     uint64
	cancel  context.CancelFunc
	closed  bool
	wg      sync.WaitGroup
}

// New creates a Viewer and starts the cache. No page is loaded until the
// first navigation.
func New(cache folio.PageCache, opts ...Option) *Viewer {
	v := &Viewer{
		cache:  cache,
		logger: slog.New(slog.DiscardHandler),
		loads:  make(chan Load, 1),
	}
	for _, opt := range opts {
		opt(v)
	}
	cache.Start()
	return v
}

// Loads returns the channel on which results of current loads are
// delivered. It is closed by Close.
func (v *Viewer) Loads() <-chan Load {
	return v.loads
}

// Goto makes page current and starts loading it. Pages outside the book are
// ignored. Reports whether a load was started.
func (v *Viewer) Goto(page int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gotoLocked(page)
}

// Next moves to the following page.
func (v *Viewer) Next() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gotoLocked(v.current + 1)
}

// Prev moves to the preceding page.
func (v *Viewer) Prev() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gotoLocked(v.current - 1)
}

// gotoLocked is Goto for a caller holding v.mu.
func (v *Viewer) gotoLocked(page int) bool {
	if v.closed || !v.cache.Book().HasPage(page) {
		return false
	}
	v.supersede()

	ctx, cancel := context.WithCancel(context.Background())
	v.current = page
	v.cancel = cancel
	seq := v.seq
	v.wg.Go(func() {
		defer cancel()
		v.load(ctx, seq, page)
	})
	return true
}

// Current returns the current page, or 0 before the first navigation.
func (v *Viewer) Current() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// HasNext reports whether a page follows the current one.
func (v *Viewer) HasNext() bool {
	return v.Current() < v.cache.Book().NumPages
}

// HasPrev reports whether a page precedes the current one.
func (v *Viewer) HasPrev() bool {
	return v.Current() > 1
}

// Label returns the position as "N/M".
func (v *Viewer) Label() string {
	return fmt.Sprintf("%d/%d", v.Current(), v.cache.Book().NumPages)
}

// Close cancels the pending load, waits for load goroutines to exit and
// closes the Loads channel.
func (v *Viewer) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.supersede()
	v.mu.Unlock()

	v.wg.Wait()
	close(v.loads)
}

// supersede cancels the current load and drops its undelivered result.
// Must be called with mu held.
func (v *Viewer) supersede() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.seq++
	select {
	case <-v.loads:
	default:
	}
}

func (v *Viewer) load(ctx context.Context, seq uint64, page int) {
	begin := time.Now()
	path, err := v.cache.GetPage(ctx, page)
	if ctx.Err() != nil {
		v.logger.Debug("page load superseded", "page", page)
		return
	}
	l := Load{Page: page, Path: path, Err: err, Duration: time.Since(begin)}

	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.seq {
		v.logger.Debug("page load superseded", "page", page)
		return
	}
	if err != nil {
		v.logger.Warn("page load failed", "page", page, "err", err)
	} else {
		v.logger.Debug("page loaded", "page", page, "duration", l.Duration)
	}
	// The buffer is emptied whenever seq changes, so this never blocks.
	v.loads <- l
}
