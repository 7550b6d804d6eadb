package cache_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTable(t *testing.T) {
	t.Parallel()

	t.Run("starts with every page pending", func(t *testing.T) {
		t.Parallel()

		table := cache.NewStatusTable(4)

		assert.Equal(t, 4, table.NumPages())
		for page := 1; page <= 4; page++ {
			assert.Equal(t, folio.PagePending, table.Get(page))
		}
		assert.Equal(t, map[folio.PageState]int{folio.PagePending: 4}, table.Counts())
	})

	t.Run("moves forward through states", func(t *testing.T) {
		t.Parallel()

		table := cache.NewStatusTable(2)

		table.Set(1, folio.PageDownloaded)
		assert.Equal(t, folio.PageDownloaded, table.Get(1))

		table.Set(1, folio.PageReady)
		assert.Equal(t, folio.PageReady, table.Get(1))
	})

	t.Run("allows reset of a downloaded page", func(t *testing.T) {
		t.Parallel()

		table := cache.NewStatusTable(1)
		table.Set(1, folio.PageDownloaded)

		table.Set(1, folio.PagePending)

		assert.Equal(t, folio.PagePending, table.Get(1))
	})

	t.Run("panics when a ready page regresses", func(t *testing.T) {
		t.Parallel()

		table := cache.NewStatusTable(1)
		table.Set(1, folio.PageReady)

		assert.Panics(t, func() { table.Set(1, folio.PagePending) })
		assert.Equal(t, folio.PageReady, table.Get(1))
	})

	t.Run("panics on out of range pages", func(t *testing.T) {
		t.Parallel()

		table := cache.NewStatusTable(3)

		assert.Panics(t, func() { table.Get(0) })
		assert.Panics(t, func() { table.Get(4) })
		assert.Panics(t, func() { table.Set(-1, folio.PageReady) })
	})

	t.Run("counts pages per state", func(t *testing.T) {
		t.Parallel()

		table := cache.NewStatusTable(5)
		table.Set(1, folio.PageReady)
		table.Set(2, folio.PageReady)
		table.Set(3, folio.PageDownloaded)

		counts := table.Counts()

		assert.Equal(t, 2, counts[folio.PageReady])
		assert.Equal(t, 1, counts[folio.PageDownloaded])
		assert.Equal(t, 2, counts[folio.PagePending])
	})
}

func TestStatusTable_WaitReady(t *testing.T) {
	t.Parallel()

	t.Run("returns immediately for a ready page", func(t *testing.T) {
		t.Parallel()

		table := cache.NewStatusTable(1)
		table.Set(1, folio.PageReady)

		err := table.WaitReady(context.Background(), 1)

		require.NoError(t, err)
	})

	t.Run("wakes every waiter when the page becomes ready", func(t *testing.T) {
		t.Parallel()

		table := cache.NewStatusTable(2)

		var wg sync.WaitGroup
		errs := make(chan error, 5)
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- table.WaitReady(context.Background(), 2)
			}()
		}

		// A broadcast for another page must not release page 2 waiters.
		table.Set(1, folio.PageReady)
		table.Broadcast()

		table.Set(2, folio.PageReady)
		table.Broadcast()

		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}
	})

	t.Run("stays blocked on broadcasts for other pages", func(t *testing.T) {
		t.Parallel()

		table := cache.NewStatusTable(2)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		go func() {
			table.Set(1, folio.PageReady)
			table.Broadcast()
		}()

		err := table.WaitReady(ctx, 2)

		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("returns context error on cancellation", func(t *testing.T) {
		t.Parallel()

		table := cache.NewStatusTable(1)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- table.WaitReady(ctx, 1)
		}()

		cancel()

		select {
		case err := <-done:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("waiter not released by cancellation")
		}
	})
}
