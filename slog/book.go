package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/folio"
)

// Ensure LoggingBookService implements folio.BookService.
var _ folio.BookService = (*LoggingBookService)(nil)

// LoggingBookService wraps a BookService with debug logging.
type LoggingBookService struct {
	next   folio.BookService
	logger *slog.Logger
}

// NewLoggingBookService creates a new LoggingBookService.
func NewLoggingBookService(next folio.BookService, logger *slog.Logger) *LoggingBookService {
	return &LoggingBookService{next: next, logger: logger}
}

// CreateBook delegates to the wrapped service and logs the operation.
func (s *LoggingBookService) CreateBook(ctx context.Context, book *folio.Book) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create book",
			"book", book.ID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateBook(ctx, book)
}

// FindBookByID delegates to the wrapped service and logs the operation.
func (s *LoggingBookService) FindBookByID(ctx context.Context, id int) (book *folio.Book, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find book",
			"book", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindBookByID(ctx, id)
}

// FindBooks delegates to the wrapped service and logs the number of books found.
func (s *LoggingBookService) FindBooks(ctx context.Context, filter folio.BookFilter) (books []*folio.Book, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find books",
			"count", len(books),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindBooks(ctx, filter)
}

// UpdateBook delegates to the wrapped service and logs the operation.
func (s *LoggingBookService) UpdateBook(ctx context.Context, id int, upd folio.BookUpdate) (book *folio.Book, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("update book",
			"book", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpdateBook(ctx, id, upd)
}

// DeleteBook delegates to the wrapped service and logs the deletion at Info.
func (s *LoggingBookService) DeleteBook(ctx context.Context, id int) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete book",
			"book", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteBook(ctx, id)
}
