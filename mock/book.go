package mock

import (
	"context"

	"github.com/fwojciec/folio"
)

// Compile-time interface verification.
var (
	_ folio.BookService = (*BookService)(nil)
	_ folio.BookScraper = (*BookScraper)(nil)
	_ folio.Catalog     = (*Catalog)(nil)
	_ folio.BookLoader  = (*BookLoader)(nil)
	_ folio.Fetcher     = (*Fetcher)(nil)
)

// BookService is a mock implementation of folio.BookService.
type BookService struct {
	CreateBookFn   func(ctx context.Context, book *folio.Book) error
	FindBookByIDFn func(ctx context.Context, id int) (*folio.Book, error)
	FindBooksFn    func(ctx context.Context, filter folio.BookFilter) ([]*folio.Book, error)
	UpdateBookFn   func(ctx context.Context, id int, upd folio.BookUpdate) (*folio.Book, error)
	DeleteBookFn   func(ctx context.Context, id int) error
}

func (s *BookService) CreateBook(ctx context.Context, book *folio.Book) error {
	return s.CreateBookFn(ctx, book)
}

func (s *BookService) FindBookByID(ctx context.Context, id int) (*folio.Book, error) {
	return s.FindBookByIDFn(ctx, id)
}

func (s *BookService) FindBooks(ctx context.Context, filter folio.BookFilter) ([]*folio.Book, error) {
	return s.FindBooksFn(ctx, filter)
}

func (s *BookService) UpdateBook(ctx context.Context, id int, upd folio.BookUpdate) (*folio.Book, error) {
	return s.UpdateBookFn(ctx, id, upd)
}

func (s *BookService) DeleteBook(ctx context.Context, id int) error {
	return s.DeleteBookFn(ctx, id)
}

// BookScraper is a mock implementation of folio.BookScraper.
type BookScraper struct {
	ScrapeFn func(html string) (*folio.Book, error)
}

func (s *BookScraper) Scrape(html string) (*folio.Book, error) {
	return s.ScrapeFn(html)
}

// Catalog is a mock implementation of folio.Catalog.
type Catalog struct {
	BookURLFn      func(id int) string
	PageURLFn      func(id, page int) string
	ThumbnailURLFn func(ref string) string
}

func (c *Catalog) BookURL(id int) string {
	return c.BookURLFn(id)
}

func (c *Catalog) PageURL(id, page int) string {
	return c.PageURLFn(id, page)
}

func (c *Catalog) ThumbnailURL(ref string) string {
	return c.ThumbnailURLFn(ref)
}

// BookLoader is a mock implementation of folio.BookLoader.
type BookLoader struct {
	LoadFn func(ctx context.Context, id int) (*folio.Book, error)
}

func (l *BookLoader) Load(ctx context.Context, id int) (*folio.Book, error) {
	return l.LoadFn(ctx, id)
}

// Fetcher is a mock implementation of folio.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
