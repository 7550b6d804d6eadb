package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/folio"
)

// Ensure LoggingSource implements folio.DocumentSource.
var _ folio.DocumentSource = (*LoggingSource)(nil)

// LoggingSource wraps a DocumentSource with debug logging of every fetch
// and render.
type LoggingSource struct {
	next   folio.DocumentSource
	logger *slog.Logger
}

// NewLoggingSource creates a new LoggingSource.
func NewLoggingSource(next folio.DocumentSource, logger *slog.Logger) *LoggingSource {
	return &LoggingSource{next: next, logger: logger}
}

// NumPages delegates to the wrapped source.
func (s *LoggingSource) NumPages() int {
	return s.next.NumPages()
}

// FetchRaw delegates to the wrapped source and logs the operation.
func (s *LoggingSource) FetchRaw(ctx context.Context, page int) (raw *folio.Artifact, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("fetch page",
			"page", page,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FetchRaw(ctx, page)
}

// Render delegates to the wrapped source and logs the operation.
func (s *LoggingSource) Render(ctx context.Context, raw *folio.Artifact) (rendered *folio.Artifact, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("render page",
			"page", raw.Page,
			"empty", err == nil && rendered == nil,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Render(ctx, raw)
}

// LocateRendered delegates to the wrapped source.
func (s *LoggingSource) LocateRendered(page int) string {
	return s.next.LocateRendered(page)
}

// LocateRaw delegates to the wrapped source.
func (s *LoggingSource) LocateRaw(page int) string {
	return s.next.LocateRaw(page)
}
