package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/folio"
	"golang.org/x/sync/singleflight"
)

// DefaultDownloadTimeout bounds a whole page download.
const DefaultDownloadTimeout = 60 * time.Second

// Ensure Downloader implements folio.Downloader at compile time.
var _ folio.Downloader = (*Downloader)(nil)

// Downloader saves remote files to local paths. A non-empty destination is
// treated as already downloaded. Concurrent downloads to the same
// destination share one request.
type Downloader struct {
	client  *http.Client
	limiter *HostLimiter
	timeout time.Duration
	group   singleflight.Group
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadTimeout sets the timeout for a whole download.
func WithDownloadTimeout(d time.Duration) DownloaderOption {
	return func(dl *Downloader) {
		dl.timeout = d
	}
}

// WithDownloadLimiter rate limits downloads per host.
func WithDownloadLimiter(l *HostLimiter) DownloaderOption {
	return func(dl *Downloader) {
		dl.limiter = l
	}
}

// NewDownloader creates a new Downloader.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		timeout: DefaultDownloadTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.client = &http.Client{
		Timeout:   d.timeout,
		Transport: newTransport(),
	}

	return d
}

// Download saves the content at url to dst unless dst already holds a
// non-empty file. A zero-length dst is discarded and fetched again.
func (d *Downloader) Download(ctx context.Context, url, dst string) error {
	info, err := os.Stat(dst)
	switch {
	case err == nil && info.Size() > 0:
		return nil
	case err == nil:
		if err := os.Remove(dst); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	_, err, _ = d.group.Do(dst, func() (any, error) {
		// An earlier flight may have finished between Stat and Do.
		if info, err := os.Stat(dst); err == nil && info.Size() > 0 {
			return nil, nil
		}
		return nil, d.download(ctx, url, dst)
	})
	return err
}

func (d *Downloader) download(ctx context.Context, url, dst string) (err error) {
	if err := d.limiter.wait(ctx, url); err != nil {
		return err
	}

	resp, err := get(ctx, d.client, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	part := dst + ".part"
	f, err := os.Create(part)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(part)
		}
	}()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	if n == 0 {
		return fmt.Errorf("download %s: empty response", url)
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(part, dst)
}

// Close releases idle connections.
func (d *Downloader) Close() error {
	d.client.CloseIdleConnections()
	return nil
}
