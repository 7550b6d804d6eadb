package folio

import (
	"context"
	"time"
)

// PageState is the lifecycle state of a single page.
// States only move forward, Pending to Downloaded to Ready, except that a
// failed attempt resets a page to Pending.
type PageState int

const (
	// PagePending means the page has not been downloaded or rendered yet.
	PagePending PageState = iota
	// PageDownloaded means the raw page was fetched but is not rendered yet.
	PageDownloaded
	// PageReady means the rendered page exists and can be displayed.
	PageReady
)

func (s PageState) String() string {
	switch s {
	case PagePending:
		return "pending"
	case PageDownloaded:
		return "downloaded"
	case PageReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Artifact is a materialized file for one page at some processing stage.
type Artifact struct {
	Page int
	Path string
}

// DocumentSource materializes the pages of a single book.
type DocumentSource interface {
	// NumPages returns the number of pages. Stable once the source exists.
	NumPages() int

	// FetchRaw retrieves the raw page artifact.
	FetchRaw(ctx context.Context, page int) (*Artifact, error)

	// Render converts a raw artifact into a rendered image artifact.
	// A nil artifact with a nil error means rendering produced nothing.
	Render(ctx context.Context, raw *Artifact) (*Artifact, error)

	// LocateRendered returns the deterministic location of the rendered page.
	// It performs no I/O.
	LocateRendered(page int) string

	// LocateRaw returns the deterministic location of the raw page.
	// It performs no I/O.
	LocateRaw(page int) string
}

// ArtifactStore names and inspects page artifacts on local storage.
type ArtifactStore interface {
	RawPath(bookID, page int) string
	RenderedPath(bookID, page int) string

	// Exists reports whether path is a non-empty regular file.
	Exists(path string) bool

	// Remove deletes the given artifacts. Missing files are not an error.
	Remove(paths ...string) error

	// Checksum returns the content hash and size of an artifact.
	Checksum(path string) (sum string, size int64, err error)

	// Purge removes every artifact belonging to a book.
	Purge(bookID int) error
}

// Downloader saves the content at a URL to a local file.
// An existing non-empty destination is reused.
type Downloader interface {
	Download(ctx context.Context, url, dst string) error
}

// Renderer converts a single-page PDF into an image file.
// Returns ENOTFOUND if the PDF contains no usable image.
type Renderer interface {
	Render(ctx context.Context, src, dst string) error
}

// PageCache serves rendered pages of one book, prefetching around requests.
type PageCache interface {
	// Start begins background work if it is not already running.
	Start()

	// GetPage blocks until page is rendered and returns its location.
	// Returns ENOTFOUND for pages outside the book.
	GetPage(ctx context.Context, page int) (string, error)

	// Book returns the book served by the cache.
	Book() *Book
}

// PageRecord describes a rendered page kept on local storage.
type PageRecord struct {
	BookID     int       `json:"bookId"`
	Page       int       `json:"page"`
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"renderedAt"`
}

// Validate returns an error if the record contains invalid fields.
func (r *PageRecord) Validate() error {
	if r.BookID <= 0 {
		return Errorf(EINVALID, "page record book ID required")
	}
	if r.Page <= 0 {
		return Errorf(EINVALID, "page record page number required")
	}
	if r.Path == "" {
		return Errorf(EINVALID, "page record path required")
	}
	return nil
}

// PageRecordService represents a service for managing rendered page records.
type PageRecordService interface {
	// SavePageRecord creates or replaces the record for a page.
	SavePageRecord(ctx context.Context, rec *PageRecord) error

	// FindPageRecords returns the records of a book ordered by page.
	FindPageRecords(ctx context.Context, bookID int) ([]*PageRecord, error)
}
