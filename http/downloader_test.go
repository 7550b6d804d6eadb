package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/folio"
	foliohttp "github.com/fwojciec/folio/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingServer(t *testing.T, body string, delay time.Duration) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		time.Sleep(delay)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestDownloader_Download(t *testing.T) {
	t.Parallel()

	t.Run("saves response body to destination", func(t *testing.T) {
		t.Parallel()

		server, _ := countingServer(t, "%PDF-1.4", 0)
		dst := filepath.Join(t.TempDir(), "cache", "page.pdf")
		d := foliohttp.NewDownloader()
		defer d.Close()

		err := d.Download(context.Background(), server.URL, dst)

		require.NoError(t, err)
		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(data))
		assert.NoFileExists(t, dst+".part")
	})

	t.Run("reuses existing non-empty file", func(t *testing.T) {
		t.Parallel()

		server, hits := countingServer(t, "new", 0)
		dst := filepath.Join(t.TempDir(), "page.pdf")
		require.NoError(t, os.WriteFile(dst, []byte("cached"), 0644))
		d := foliohttp.NewDownloader()

		err := d.Download(context.Background(), server.URL, dst)

		require.NoError(t, err)
		assert.Equal(t, int32(0), hits.Load())
		data, _ := os.ReadFile(dst)
		assert.Equal(t, "cached", string(data))
	})

	t.Run("fetches again over an empty file", func(t *testing.T) {
		t.Parallel()

		server, hits := countingServer(t, "fresh", 0)
		dst := filepath.Join(t.TempDir(), "page.pdf")
		require.NoError(t, os.WriteFile(dst, nil, 0644))
		d := foliohttp.NewDownloader()

		err := d.Download(context.Background(), server.URL, dst)

		require.NoError(t, err)
		assert.Equal(t, int32(1), hits.Load())
		data, _ := os.ReadFile(dst)
		assert.Equal(t, "fresh", string(data))
	})

	t.Run("rejects empty response", func(t *testing.T) {
		t.Parallel()

		server, _ := countingServer(t, "", 0)
		dst := filepath.Join(t.TempDir(), "page.pdf")
		d := foliohttp.NewDownloader()

		err := d.Download(context.Background(), server.URL, dst)

		require.Error(t, err)
		assert.NoFileExists(t, dst)
		assert.NoFileExists(t, dst+".part")
	})

	t.Run("returns ENOTFOUND for missing page", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()
		dst := filepath.Join(t.TempDir(), "page.pdf")
		d := foliohttp.NewDownloader()

		err := d.Download(context.Background(), server.URL, dst)

		assert.Equal(t, folio.ENOTFOUND, folio.ErrorCode(err))
		assert.NoFileExists(t, dst)
	})

	t.Run("collapses concurrent downloads of one destination", func(t *testing.T) {
		t.Parallel()

		server, hits := countingServer(t, "%PDF", 50*time.Millisecond)
		dst := filepath.Join(t.TempDir(), "page.pdf")
		d := foliohttp.NewDownloader()

		var wg sync.WaitGroup
		errs := make(chan error, 5)
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- d.Download(context.Background(), server.URL, dst)
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("respects download timeout", func(t *testing.T) {
		t.Parallel()

		server, _ := countingServer(t, "slow", 200*time.Millisecond)
		dst := filepath.Join(t.TempDir(), "page.pdf")
		d := foliohttp.NewDownloader(foliohttp.WithDownloadTimeout(20 * time.Millisecond))

		err := d.Download(context.Background(), server.URL, dst)

		require.Error(t, err)
		assert.NoFileExists(t, dst)
	})
}
