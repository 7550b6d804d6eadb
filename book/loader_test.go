package book_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/book"
	"github.com/fwojciec/folio/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notFoundBooks() *mock.BookService {
	return &mock.BookService{
		FindBookByIDFn: func(context.Context, int) (*folio.Book, error) {
			return nil, folio.Errorf(folio.ENOTFOUND, "book not found")
		},
		CreateBookFn: func(context.Context, *folio.Book) error { return nil },
	}
}

func bookCatalog() *mock.Catalog {
	return &mock.Catalog{
		BookURLFn:      func(id int) string { return fmt.Sprintf("http://catalog.test/%d", id) },
		ThumbnailURLFn: func(ref string) string { return "http://catalog.test/" + ref },
	}
}

func scraperReturning(pages int) *mock.BookScraper {
	return &mock.BookScraper{
		ScrapeFn: func(string) (*folio.Book, error) {
			return &folio.Book{Title: "Scraped", Thumbnail: "thumbs/42.jpg", NumPages: pages}, nil
		},
	}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("returns stored book without fetching", func(t *testing.T) {
		t.Parallel()

		stored := &folio.Book{ID: 42, Title: "Stored", NumPages: 10}
		loader := &book.Loader{
			Books: &mock.BookService{
				FindBookByIDFn: func(context.Context, int) (*folio.Book, error) { return stored, nil },
			},
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) {
					t.Fatal("unexpected fetch")
					return "", nil
				},
			},
		}

		got, err := loader.Load(context.Background(), 42)

		require.NoError(t, err)
		assert.Same(t, stored, got)
	})

	t.Run("scrapes and stores unknown book", func(t *testing.T) {
		t.Parallel()

		// Given a book that is not stored yet
		var fetchedURL string
		var created *folio.Book
		books := notFoundBooks()
		books.CreateBookFn = func(_ context.Context, b *folio.Book) error {
			created = b
			return nil
		}
		loader := &book.Loader{
			Books: books,
			Fetcher: &mock.Fetcher{
				FetchFn: func(_ context.Context, url string) (string, error) {
					fetchedURL = url
					return "<html></html>", nil
				},
			},
			Scraper: scraperReturning(120),
			Catalog: bookCatalog(),
		}

		// When it is loaded
		got, err := loader.Load(context.Background(), 42)

		// Then the info page is scraped and the book stored with its ID
		require.NoError(t, err)
		assert.Equal(t, "http://catalog.test/42", fetchedURL)
		assert.Equal(t, 42, got.ID)
		assert.Equal(t, 120, got.NumPages)
		assert.Equal(t, "http://catalog.test/thumbs/42.jpg", got.Thumbnail)
		assert.Same(t, got, created)
	})

	t.Run("retries transient fetch errors", func(t *testing.T) {
		t.Parallel()

		var calls int
		loader := &book.Loader{
			Books: notFoundBooks(),
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) {
					calls++
					if calls < 3 {
						return "", errors.New("connection reset")
					}
					return "<html></html>", nil
				},
			},
			Scraper: scraperReturning(5),
			Catalog: bookCatalog(),
			Delay:   time.Millisecond,
		}

		got, err := loader.Load(context.Background(), 42)

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, 5, got.NumPages)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		t.Parallel()

		var calls int
		loader := &book.Loader{
			Books: notFoundBooks(),
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) {
					calls++
					return "", errors.New("connection reset")
				},
			},
			Catalog:  bookCatalog(),
			Attempts: 2,
			Delay:    time.Millisecond,
		}

		_, err := loader.Load(context.Background(), 42)

		require.Error(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("does not retry a missing book", func(t *testing.T) {
		t.Parallel()

		var calls int
		loader := &book.Loader{
			Books: notFoundBooks(),
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) {
					calls++
					return "", folio.Errorf(folio.ENOTFOUND, "HTTP 404")
				},
			},
			Catalog: bookCatalog(),
			Delay:   time.Millisecond,
		}

		_, err := loader.Load(context.Background(), 42)

		assert.Equal(t, folio.ENOTFOUND, folio.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("rejects scraped book without pages", func(t *testing.T) {
		t.Parallel()

		loader := &book.Loader{
			Books: notFoundBooks(),
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) { return "<html></html>", nil },
			},
			Scraper: scraperReturning(0),
			Catalog: bookCatalog(),
		}

		_, err := loader.Load(context.Background(), 42)

		assert.Equal(t, folio.EINVALID, folio.ErrorCode(err))
	})

	t.Run("returns stored copy on conflict", func(t *testing.T) {
		t.Parallel()

		stored := &folio.Book{ID: 42, Title: "Stored", NumPages: 10}
		var finds int
		loader := &book.Loader{
			Books: &mock.BookService{
				FindBookByIDFn: func(context.Context, int) (*folio.Book, error) {
					finds++
					if finds == 1 {
						return nil, folio.Errorf(folio.ENOTFOUND, "book not found")
					}
					return stored, nil
				},
				CreateBookFn: func(context.Context, *folio.Book) error {
					return folio.Errorf(folio.ECONFLICT, "book 42 already exists")
				},
			},
			Fetcher: &mock.Fetcher{
				FetchFn: func(context.Context, string) (string, error) { return "<html></html>", nil },
			},
			Scraper: scraperReturning(10),
			Catalog: bookCatalog(),
		}

		got, err := loader.Load(context.Background(), 42)

		require.NoError(t, err)
		assert.Same(t, stored, got)
	})

	t.Run("rejects non-positive ID", func(t *testing.T) {
		t.Parallel()

		_, err := (&book.Loader{}).Load(context.Background(), 0)

		assert.Equal(t, folio.EINVALID, folio.ErrorCode(err))
	})

	t.Run("returns storage errors", func(t *testing.T) {
		t.Parallel()

		loader := &book.Loader{
			Books: &mock.BookService{
				FindBookByIDFn: func(context.Context, int) (*folio.Book, error) {
					return nil, errors.New("database is locked")
				},
			},
		}

		_, err := loader.Load(context.Background(), 42)

		require.Error(t, err)
		assert.Equal(t, folio.EINTERNAL, folio.ErrorCode(err))
	})
}
