package mock

import (
	"context"

	"github.com/fwojciec/folio"
)

// Compile-time interface verification.
var (
	_ folio.DocumentSource    = (*DocumentSource)(nil)
	_ folio.ArtifactStore     = (*ArtifactStore)(nil)
	_ folio.Downloader        = (*Downloader)(nil)
	_ folio.Renderer          = (*Renderer)(nil)
	_ folio.PageCache         = (*PageCache)(nil)
	_ folio.PageRecordService = (*PageRecordService)(nil)
)

// DocumentSource is a mock implementation of folio.DocumentSource.
type DocumentSource struct {
	NumPagesFn       func() int
	FetchRawFn       func(ctx context.Context, page int) (*folio.Artifact, error)
	RenderFn         func(ctx context.Context, raw *folio.Artifact) (*folio.Artifact, error)
	LocateRenderedFn func(page int) string
	LocateRawFn      func(page int) string
}

func (s *DocumentSource) NumPages() int {
	return s.NumPagesFn()
}

func (s *DocumentSource) FetchRaw(ctx context.Context, page int) (*folio.Artifact, error) {
	return s.FetchRawFn(ctx, page)
}

func (s *DocumentSource) Render(ctx context.Context, raw *folio.Artifact) (*folio.Artifact, error) {
	return s.RenderFn(ctx, raw)
}

func (s *DocumentSource) LocateRendered(page int) string {
	return s.LocateRenderedFn(page)
}

func (s *DocumentSource) LocateRaw(page int) string {
	return s.LocateRawFn(page)
}

// ArtifactStore is a mock implementation of folio.ArtifactStore.
type ArtifactStore struct {
	RawPathFn      func(bookID, page int) string
	RenderedPathFn func(bookID, page int) string
	ExistsFn       func(path string) bool
	RemoveFn       func(paths ...string) error
	ChecksumFn     func(path string) (string, int64, error)
	PurgeFn        func(bookID int) error
}

func (s *ArtifactStore) RawPath(bookID, page int) string {
	return s.RawPathFn(bookID, page)
}

func (s *ArtifactStore) RenderedPath(bookID, page int) string {
	return s.RenderedPathFn(bookID, page)
}

func (s *ArtifactStore) Exists(path string) bool {
	return s.ExistsFn(path)
}

func (s *ArtifactStore) Remove(paths ...string) error {
	return s.RemoveFn(paths...)
}

func (s *ArtifactStore) Checksum(path string) (string, int64, error) {
	return s.ChecksumFn(path)
}

func (s *ArtifactStore) Purge(bookID int) error {
	return s.PurgeFn(bookID)
}

// Downloader is a mock implementation of folio.Downloader.
type Downloader struct {
	DownloadFn func(ctx context.Context, url, dst string) error
}

func (d *Downloader) Download(ctx context.Context, url, dst string) error {
	return d.DownloadFn(ctx, url, dst)
}

// Renderer is a mock implementation of folio.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, src, dst string) error
}

func (r *Renderer) Render(ctx context.Context, src, dst string) error {
	return r.RenderFn(ctx, src, dst)
}

// PageCache is a mock implementation of folio.PageCache.
type PageCache struct {
	StartFn   func()
	GetPageFn func(ctx context.Context, page int) (string, error)
	BookFn    func() *folio.Book
}

func (c *PageCache) Start() {
	c.StartFn()
}

func (c *PageCache) GetPage(ctx context.Context, page int) (string, error) {
	return c.GetPageFn(ctx, page)
}

func (c *PageCache) Book() *folio.Book {
	return c.BookFn()
}

// PageRecordService is a mock implementation of folio.PageRecordService.
type PageRecordService struct {
	SavePageRecordFn  func(ctx context.Context, rec *folio.PageRecord) error
	FindPageRecordsFn func(ctx context.Context, bookID int) ([]*folio.PageRecord, error)
}

func (s *PageRecordService) SavePageRecord(ctx context.Context, rec *folio.PageRecord) error {
	return s.SavePageRecordFn(ctx, rec)
}

func (s *PageRecordService) FindPageRecords(ctx context.Context, bookID int) ([]*folio.PageRecord, error) {
	return s.FindPageRecordsFn(ctx, bookID)
}
