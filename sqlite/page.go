package sqlite

import (
	"context"
	"time"

	"github.com/fwojciec/folio"
)

// Compile-time interface verification.
var _ folio.PageRecordService = (*PageRecordService)(nil)

// PageRecordService implements folio.PageRecordService using SQLite.
type PageRecordService struct {
	db *DB
}

// NewPageRecordService creates a new PageRecordService.
func NewPageRecordService(db *DB) *PageRecordService {
	return &PageRecordService{db: db}
}

// SavePageRecord creates or replaces the record for a page.
// Returns ENOTFOUND if the book does not exist.
func (s *PageRecordService) SavePageRecord(ctx context.Context, rec *folio.PageRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.RenderedAt.IsZero() {
		rec.RenderedAt = time.Now().UTC()
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM books WHERE id = ?", rec.BookID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return folio.Errorf(folio.ENOTFOUND, "book not found")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (book_id, page, path, size, checksum, rendered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (book_id, page) DO UPDATE SET
			path = excluded.path,
			size = excluded.size,
			checksum = excluded.checksum,
			rendered_at = excluded.rendered_at
	`, rec.BookID, rec.Page, rec.Path, rec.Size, rec.Checksum, formatTime(rec.RenderedAt))

	return err
}

// FindPageRecords returns the records of a book ordered by page.
func (s *PageRecordService) FindPageRecords(ctx context.Context, bookID int) ([]*folio.PageRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT book_id, page, path, size, checksum, rendered_at
		FROM pages
		WHERE book_id = ?
		ORDER BY page
	`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*folio.PageRecord
	for rows.Next() {
		var rec folio.PageRecord
		var renderedAt string

		if err := rows.Scan(&rec.BookID, &rec.Page, &rec.Path, &rec.Size, &rec.Checksum, &renderedAt); err != nil {
			return nil, err
		}

		rec.RenderedAt, err = parseTime(renderedAt, "rendered_at")
		if err != nil {
			return nil, err
		}

		records = append(records, &rec)
	}

	return records, rows.Err()
}
