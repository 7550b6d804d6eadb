// Package slog provides logging decorators for folio services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/folio"
)

// Ensure LoggingFetcher implements folio.Fetcher.
var _ folio.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher and logs every catalog request. Successful
// and not-found requests are logged at Debug, other failures at Warn.
type LoggingFetcher struct {
	next   folio.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next folio.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the request.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil && folio.ErrorCode(err) != folio.ENOTFOUND {
			level = slog.LevelWarn
		}
		f.logger.Log(ctx, level, "fetch document",
			"url", url,
			"size", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
