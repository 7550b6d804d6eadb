package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/folio"
)

// Compile-time interface verification.
var _ folio.BookService = (*BookService)(nil)

// BookService implements folio.BookService using SQLite.
type BookService struct {
	db *DB
}

// NewBookService creates a new BookService.
func NewBookService(db *DB) *BookService {
	return &BookService{db: db}
}

const bookColumns = `id, title, title_hebrew, author, author_hebrew,
	publication_place, publication_place_hebrew, publication_date, publication_date_hebrew,
	description, thumbnail, oclc, uli, source, catalog_info,
	num_pages, last_page, created_at, updated_at`

// CreateBook stores a new book. The catalog assigns book IDs, so the ID must
// be set by the caller.
func (s *BookService) CreateBook(ctx context.Context, book *folio.Book) error {
	if err := book.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	book.CreatedAt = now
	book.UpdatedAt = now

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`, book.ID, book.Title, book.TitleHebrew, book.Author, book.AuthorHebrew,
		book.PublicationPlace, book.PublicationPlaceHebrew, book.PublicationDate, book.PublicationDateHebrew,
		book.Description, book.Thumbnail, book.OCLC, book.ULI, book.Source, book.CatalogInfo,
		book.NumPages, book.LastPage, formatTime(book.CreatedAt), formatTime(book.UpdatedAt))
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return folio.Errorf(folio.ECONFLICT, "book %d already exists", book.ID)
	}

	return nil
}

// FindBookByID retrieves a book by ID.
func (s *BookService) FindBookByID(ctx context.Context, id int) (*folio.Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	book, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, folio.Errorf(folio.ENOTFOUND, "book not found")
	}
	if err != nil {
		return nil, err
	}

	return book, nil
}

// FindBooks retrieves books matching the filter, most recently updated
// first. The title filter matches a substring of either title.
func (s *BookService) FindBooks(ctx context.Context, filter folio.BookFilter) ([]*folio.Book, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + bookColumns + " FROM books WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Title != nil {
		query.WriteString(" AND (title LIKE ? OR title_hebrew LIKE ?)")
		pattern := "%" + *filter.Title + "%"
		args = append(args, pattern, pattern)
	}

	query.WriteString(" ORDER BY updated_at DESC, id")
	clause, limitArgs := limitClause(filter.Limit, filter.Offset)
	query.WriteString(clause)
	args = append(args, limitArgs...)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*folio.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	return books, rows.Err()
}

// UpdateBook updates an existing book.
func (s *BookService) UpdateBook(ctx context.Context, id int, upd folio.BookUpdate) (*folio.Book, error) {
	book, err := s.FindBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.LastPage != nil {
		book.LastPage = *upd.LastPage
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	book.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE books SET last_page = ?, updated_at = ? WHERE id = ?
	`, book.LastPage, formatTime(book.UpdatedAt), id)
	if err != nil {
		return nil, err
	}

	return book, nil
}

// DeleteBook permanently removes a book and its page records.
func (s *BookService) DeleteBook(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return folio.Errorf(folio.ENOTFOUND, "book not found")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*folio.Book, error) {
	var book folio.Book
	var createdAt, updatedAt string

	if err := row.Scan(&book.ID, &book.Title, &book.TitleHebrew, &book.Author, &book.AuthorHebrew,
		&book.PublicationPlace, &book.PublicationPlaceHebrew, &book.PublicationDate, &book.PublicationDateHebrew,
		&book.Description, &book.Thumbnail, &book.OCLC, &book.ULI, &book.Source, &book.CatalogInfo,
		&book.NumPages, &book.LastPage, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if book.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if book.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &book, nil
}
