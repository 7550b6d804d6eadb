package folio

import (
	"context"
	"time"
)

// Book represents a remote, paginated book.
type Book struct {
	ID                     int       `json:"id"`
	Title                  string    `json:"title"`
	TitleHebrew            string    `json:"titleHebrew"`
	Author                 string    `json:"author"`
	AuthorHebrew           string    `json:"authorHebrew"`
	PublicationPlace       string    `json:"publicationPlace"`
	PublicationPlaceHebrew string    `json:"publicationPlaceHebrew"`
	PublicationDate        string    `json:"publicationDate"`
	PublicationDateHebrew  string    `json:"publicationDateHebrew"`
	Description            string    `json:"description"`
	Thumbnail              string    `json:"thumbnail"`
	OCLC                   string    `json:"oclc"`
	ULI                    string    `json:"uli"`
	Source                 string    `json:"source"`
	CatalogInfo            string    `json:"catalogInfo"`
	NumPages               int       `json:"numPages"`
	LastPage               int       `json:"lastPage"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// Validate returns an error if the book contains invalid fields.
func (b *Book) Validate() error {
	if b.ID <= 0 {
		return Errorf(EINVALID, "book ID required")
	}
	if b.NumPages <= 0 {
		return Errorf(EINVALID, "book page count required")
	}
	if b.LastPage < 0 || b.LastPage > b.NumPages {
		return Errorf(EINVALID, "last page %d out of range", b.LastPage)
	}
	return nil
}

// HasPage reports whether page is a valid 1-based page index for the book.
func (b *Book) HasPage(page int) bool {
	return page >= 1 && page <= b.NumPages
}

// DisplayTitle returns the best available title for display.
func (b *Book) DisplayTitle() string {
	title := b.TitleHebrew
	if title == "" {
		title = b.Title
	}
	author := b.AuthorHebrew
	if author == "" {
		author = b.Author
	}
	if author == "" {
		return title
	}
	return title + " (" + author + ")"
}

// BookService represents a service for managing books.
type BookService interface {
	// CreateBook stores a new book.
	// Returns ECONFLICT if a book with the same ID already exists.
	CreateBook(ctx context.Context, book *Book) error

	// FindBookByID retrieves a book by ID.
	// Returns ENOTFOUND if book does not exist.
	FindBookByID(ctx context.Context, id int) (*Book, error)

	// FindBooks retrieves books matching the filter.
	FindBooks(ctx context.Context, filter BookFilter) ([]*Book, error)

	// UpdateBook updates an existing book.
	// Returns ENOTFOUND if book does not exist.
	UpdateBook(ctx context.Context, id int, upd BookUpdate) (*Book, error)

	// DeleteBook permanently removes a book and all associated page records.
	// Returns ENOTFOUND if book does not exist.
	DeleteBook(ctx context.Context, id int) error
}

// BookFilter represents a filter for FindBooks.
type BookFilter struct {
	ID    *int    `json:"id"`
	Title *string `json:"title"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// BookUpdate represents fields that can be updated on a book.
type BookUpdate struct {
	LastPage *int `json:"lastPage"`
}

// Fetcher retrieves HTML documents such as a book's information page.
type Fetcher interface {
	// Fetch returns the body of the document at url.
	// Returns ENOTFOUND if the server has no such document.
	Fetch(ctx context.Context, url string) (html string, err error)

	Close() error
}

// BookScraper extracts book metadata from the book's information page.
type BookScraper interface {
	Scrape(html string) (*Book, error)
}

// Catalog builds the remote locations of a book and its pages.
type Catalog interface {
	// BookURL returns the URL of the book's information page.
	BookURL(id int) string

	// PageURL returns the URL of a single page of the book as a PDF.
	PageURL(id, page int) string

	// ThumbnailURL resolves a thumbnail reference found on an information
	// page to an absolute URL.
	ThumbnailURL(ref string) string
}

// BookLoader resolves a book ID to its metadata, fetching it from the
// catalog when it is not stored yet.
type BookLoader interface {
	Load(ctx context.Context, id int) (*Book, error)
}
