package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/folio"
)

// StateReader reads the state of a page.
type StateReader interface {
	Get(page int) folio.PageState
}

// Compile-time interface verification.
var _ StateReader = (*StatusTable)(nil)

// StatusTable tracks the lifecycle state of every page of a book.
// The same mutex guards the states and the ready condition, so a waiter
// checking a state can never miss the broadcast that follows an update.
// It is safe for concurrent use by multiple goroutines.
type StatusTable struct {
	mu     sync.Mutex
	ready  *sync.Cond
	states []folio.PageState // index 0 is unused
}

// NewStatusTable creates a table for numPages pages, all Pending.
func NewStatusTable(numPages int) *StatusTable {
	if numPages < 0 {
		numPages = 0
	}
	t := &StatusTable{
		states: make([]folio.PageState, numPages+1),
	}
	t.ready = sync.NewCond(&t.mu)
	return t
}

// NumPages returns the number of pages tracked by the table.
func (t *StatusTable) NumPages() int {
	return len(t.states) - 1
}

// Get returns the state of page. It panics if page is out of range.
func (t *StatusTable) Get(page int) folio.PageState {
	t.mustContain(page)

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.states[page]
}

// Set updates the state of page. It panics if page is out of range or if
// the update would move a Ready page back to an earlier state.
func (t *StatusTable) Set(page int, state folio.PageState) {
	t.mustContain(page)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.states[page] == folio.PageReady && state != folio.PageReady {
		panic(fmt.Sprintf("cache: page %d cannot move from ready to %s", page, state))
	}
	t.states[page] = state
}

// Broadcast wakes every goroutine blocked in WaitReady so it can re-check
// its own page.
func (t *StatusTable) Broadcast() {
	t.mu.Lock()
	t.ready.Broadcast()
	t.mu.Unlock()
}

// WaitReady blocks until page is Ready or ctx is done.
// Returns ctx.Err() if the context ends first.
func (t *StatusTable) WaitReady(ctx context.Context, page int) error {
	t.mustContain(page)

	// Wake this waiter when ctx ends. The callback takes the lock, so it
	// cannot fire between the ctx check below and Wait releasing the lock.
	stop := context.AfterFunc(ctx, t.Broadcast)
	defer stop()

	t.mu.Lock()
	defer t.mu.Unlock()
	for t.states[page] != folio.PageReady {
		if err := ctx.Err(); err != nil {
			return err
		}
		t.ready.Wait()
	}
	return nil
}

// Counts returns the number of pages in each state.
func (t *StatusTable) Counts() map[folio.PageState]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	counts := make(map[folio.PageState]int, 3)
	for _, s := range t.states[1:] {
		counts[s]++
	}
	return counts
}

func (t *StatusTable) mustContain(page int) {
	if page < 1 || page >= len(t.states) {
		panic(fmt.Sprintf("cache: page %d out of range [1, %d]", page, len(t.states)-1))
	}
}
