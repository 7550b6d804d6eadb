// Package book materializes the pages of a catalog book and loads its
// metadata.
package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/fwojciec/folio"
)

// Ensure Source implements folio.DocumentSource at compile time.
var _ folio.DocumentSource = (*Source)(nil)

// PageCounter is implemented by renderers that can read the page count of a
// PDF. Source uses it to reject downloads that are not a usable PDF, such as
// an error page served with status 200.
type PageCounter interface {
	PageCount(path string) (int, error)
}

// Source downloads single-page PDFs from the catalog and renders them into
// the artifact store. Artifacts already on disk are reused.
type Source struct {
	book       *folio.Book
	catalog    folio.Catalog
	downloader folio.Downloader
	renderer   folio.Renderer
	store      folio.ArtifactStore
}

// NewSource creates a Source for book.
func NewSource(book *folio.Book, catalog folio.Catalog, downloader folio.Downloader, renderer folio.Renderer, store folio.ArtifactStore) *Source {
	return &Source{
		book:       book,
		catalog:    catalog,
		downloader: downloader,
		renderer:   renderer,
		store:      store,
	}
}

// NumPages returns the page count of the book.
func (s *Source) NumPages() int {
	return s.book.NumPages
}

// FetchRaw downloads the PDF of page unless it is already stored.
func (s *Source) FetchRaw(ctx context.Context, page int) (*folio.Artifact, error) {
	path := s.LocateRaw(page)
	if !s.store.Exists(path) {
		if err := s.downloader.Download(ctx, s.catalog.PageURL(s.book.ID, page), path); err != nil {
			return nil, fmt.Errorf("download page %d: %w", page, err)
		}
		if !s.store.Exists(path) {
			return nil, fmt.Errorf("download page %d: no file at %s", page, path)
		}
		if err := s.validate(path); err != nil {
			return nil, fmt.Errorf("download page %d: %w", page, errors.Join(err, s.store.Remove(path)))
		}
	}
	return &folio.Artifact{Page: page, Path: path}, nil
}

// validate checks a freshly downloaded PDF when the renderer can count its
// pages.
func (s *Source) validate(path string) error {
	counter, ok := s.renderer.(PageCounter)
	if !ok {
		return nil
	}
	n, err := counter.PageCount(path)
	if err != nil {
		return err
	}
	if n < 1 {
		return folio.Errorf(folio.EINVALID, "%s has no pages", path)
	}
	return nil
}

// Render extracts the page image from raw unless it is already stored.
// Returns nil, nil if the PDF holds no image.
func (s *Source) Render(ctx context.Context, raw *folio.Artifact) (*folio.Artifact, error) {
	path := s.LocateRendered(raw.Page)
	if !s.store.Exists(path) {
		err := s.renderer.Render(ctx, raw.Path, path)
		if folio.ErrorCode(err) == folio.ENOTFOUND {
			return nil, nil
		} else if err != nil {
			return nil, fmt.Errorf("render page %d: %w", raw.Page, err)
		}
	}
	return &folio.Artifact{Page: raw.Page, Path: path}, nil
}

// LocateRendered returns where the rendered image of page is stored.
func (s *Source) LocateRendered(page int) string {
	return s.store.RenderedPath(s.book.ID, page)
}

// LocateRaw returns where the PDF of page is stored.
func (s *Source) LocateRaw(page int) string {
	return s.store.RawPath(s.book.ID, page)
}
