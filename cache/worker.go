package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fwojciec/folio"
)

// WorkerState is the lifecycle state of the cache worker.
type WorkerState int32

const (
	// WorkerIdle means the worker is waiting for a page request.
	WorkerIdle WorkerState = iota
	// WorkerMaterializing means the worker is downloading or rendering a page.
	WorkerMaterializing
	// WorkerSignaling means the worker is waking waiters after a page.
	WorkerSignaling
	// WorkerStopped means the worker has exited. A new one must be started.
	WorkerStopped
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerMaterializing:
		return "materializing"
	case WorkerSignaling:
		return "signaling"
	case WorkerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// errNoRender reports a render that finished without a usable image.
var errNoRender = errors.New("render produced no image")

// worker is the single background goroutine that materializes pages.
type worker struct {
	book       *folio.Book
	source     folio.DocumentSource
	store      folio.ArtifactStore
	table      *StatusTable
	queue      *RequestQueue
	sched      Scheduler
	records    folio.PageRecordService
	metrics    Metrics
	logger     *slog.Logger
	attempts   uint
	retryDelay time.Duration

	state  atomic.Int32
	page   atomic.Int64
	cancel context.CancelFunc
	done   chan struct{}
}

// State returns the current state of the worker.
func (w *worker) State() WorkerState {
	return WorkerState(w.state.Load())
}

// Page returns the page being materialized, or 0.
func (w *worker) Page() int {
	return int(w.page.Load())
}

func (w *worker) setState(state WorkerState, page int) {
	w.page.Store(int64(page))
	w.state.Store(int32(state))
}

// run drains the request queue until ctx ends.
func (w *worker) run(ctx context.Context) {
	defer close(w.done)
	defer w.setState(WorkerStopped, 0)

	w.logger.Debug("worker started")
	for {
		w.setState(WorkerIdle, 0)
		last, err := w.queue.PopFront(ctx)
		if err != nil {
			w.logger.Debug("worker stopped", "err", err)
			return
		}
		w.metrics.RecordQueueDepth(w.queue.Len())

		if !w.fill(ctx, last) {
			w.logger.Debug("worker stopped", "err", ctx.Err())
			return
		}
	}
}

// fill materializes the pages around last until the window is saturated or
// a newer request is queued. Returns false if ctx ended.
func (w *worker) fill(ctx context.Context, last int) bool {
	view := &passView{table: w.table, failed: make(map[int]bool)}
	numPages := w.table.NumPages()

	for {
		page, ok := w.sched.Next(last, view, numPages)
		if !ok {
			w.logger.Debug("window saturated", "last", last)
			return true
		}

		w.setState(WorkerMaterializing, page)
		err := w.materialize(ctx, page)

		w.setState(WorkerSignaling, page)
		w.table.Broadcast()

		if ctx.Err() != nil {
			return false
		}
		if err != nil {
			view.failed[page] = true
			w.metrics.ObserveFailure()
			w.logger.Error("page abandoned", "page", page, "err", err)
		}

		if w.queue.Len() > 0 {
			w.logger.Debug("newer request queued", "last", last, "page", w.Page())
			return true
		}
	}
}

// materialize brings page to Ready, retrying a failed attempt.
func (w *worker) materialize(ctx context.Context, page int) error {
	begin := time.Now()

	var n uint
	err := retry.Do(
		func() error {
			n++
			err := w.attempt(ctx, page)
			if err != nil && n < w.attempts && ctx.Err() == nil {
				w.metrics.ObserveRetry()
				w.logger.Warn("retrying page", "page", page, "attempt", n, "err", err)
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(w.attempts),
		retry.Delay(w.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return err
	}

	w.metrics.ObserveMaterialized(time.Since(begin))
	w.logger.Debug("page ready", "page", page, "duration", time.Since(begin))
	w.record(ctx, page)
	return nil
}

// attempt runs one fetch-and-render pass. On failure the page goes back to
// Pending and, unless ctx ended, its artifacts are removed.
func (w *worker) attempt(ctx context.Context, page int) (err error) {
	defer func() {
		if err != nil {
			w.reset(page, ctx.Err() == nil)
		}
	}()

	raw, err := w.source.FetchRaw(ctx, page)
	if err != nil {
		return fmt.Errorf("fetch page %d: %w", page, err)
	}
	w.table.Set(page, folio.PageDownloaded)

	rendered, err := w.source.Render(ctx, raw)
	if err != nil {
		return fmt.Errorf("render page %d: %w", page, err)
	}
	if rendered == nil || !w.store.Exists(rendered.Path) {
		return fmt.Errorf("render page %d: %w", page, errNoRender)
	}

	w.table.Set(page, folio.PageReady)
	return nil
}

func (w *worker) reset(page int, discard bool) {
	if discard {
		if err := w.store.Remove(w.source.LocateRaw(page), w.source.LocateRendered(page)); err != nil {
			w.logger.Warn("remove artifacts", "page", page, "err", err)
		}
	}
	w.table.Set(page, folio.PagePending)
}

// record stores a page record for a Ready page. Failures are logged only.
func (w *worker) record(ctx context.Context, page int) {
	if w.records == nil {
		return
	}

	path := w.source.LocateRendered(page)
	sum, size, err := w.store.Checksum(path)
	if err != nil {
		w.logger.Warn("checksum page", "page", page, "err", err)
		return
	}

	rec := &folio.PageRecord{
		BookID:     w.book.ID,
		Page:       page,
		Path:       path,
		Size:       size,
		Checksum:   sum,
		RenderedAt: time.Now().UTC(),
	}
	if err := w.records.SavePageRecord(ctx, rec); err != nil {
		w.logger.Warn("save page record", "page", page, "err", err)
	}
}

// passView hides pages that already failed during the current pass, so the
// scheduler moves on instead of retrying them in a loop. A later request
// starts a new pass and makes them eligible again.
type passView struct {
	table  *StatusTable
	failed map[int]bool
}

func (v *passView) Get(page int) folio.PageState {
	if v.failed[page] {
		return folio.PageDownloaded
	}
	return v.table.Get(page)
}
