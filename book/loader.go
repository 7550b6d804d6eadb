package book

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fwojciec/folio"
)

// Default retry settings for fetching a book's information page.
const (
	DefaultLoadAttempts = 3
	DefaultLoadDelay    = time.Second
)

// Ensure Loader implements folio.BookLoader at compile time.
var _ folio.BookLoader = (*Loader)(nil)

// Loader resolves a book ID to its metadata. Known books come from the
// book service; unknown ones are scraped from the catalog and stored.
type Loader struct {
	Books   folio.BookService
	Fetcher folio.Fetcher
	Scraper folio.BookScraper
	Catalog folio.Catalog

	// Attempts and Delay control retries of the information page fetch.
	Attempts uint
	Delay    time.Duration

	Logger *slog.Logger
}

// Load returns the book with the given ID.
// Returns ENOTFOUND if the catalog has no such book.
func (l *Loader) Load(ctx context.Context, id int) (*folio.Book, error) {
	if id <= 0 {
		return nil, folio.Errorf(folio.EINVALID, "book ID must be positive")
	}

	book, err := l.Books.FindBookByID(ctx, id)
	if err == nil {
		return book, nil
	} else if folio.ErrorCode(err) != folio.ENOTFOUND {
		return nil, err
	}

	html, err := l.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	book, err = l.Scraper.Scrape(html)
	if err != nil {
		return nil, err
	}
	book.ID = id
	if book.Thumbnail != "" {
		book.Thumbnail = l.Catalog.ThumbnailURL(book.Thumbnail)
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}

	if err := l.Books.CreateBook(ctx, book); folio.ErrorCode(err) == folio.ECONFLICT {
		// Stored concurrently by another process.
		return l.Books.FindBookByID(ctx, id)
	} else if err != nil {
		return nil, err
	}

	l.logger().Info("book added", "book", id, "title", book.DisplayTitle(), "pages", book.NumPages)
	return book, nil
}

func (l *Loader) fetch(ctx context.Context, id int) (string, error) {
	attempts := l.Attempts
	if attempts == 0 {
		attempts = DefaultLoadAttempts
	}
	delay := l.Delay
	if delay <= 0 {
		delay = DefaultLoadDelay
	}

	url := l.Catalog.BookURL(id)
	var html string
	err := retry.Do(
		func() error {
			var err error
			html, err = l.Fetcher.Fetch(ctx, url)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return folio.ErrorCode(err) != folio.ENOTFOUND
		}),
		retry.OnRetry(func(n uint, err error) {
			l.logger().Warn("fetch book info failed", "book", id, "attempt", n+1, "err", err)
		}),
	)
	if folio.ErrorCode(err) == folio.ENOTFOUND {
		return "", folio.Errorf(folio.ENOTFOUND, "book %d not found in catalog", id)
	}
	return html, err
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l.Logger
}
