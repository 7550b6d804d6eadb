// Package fs provides file-based storage for page artifacts.
package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/folio"
)

// DefaultPrefix is the artifact name prefix used for books from the
// default catalog.
const DefaultPrefix = "hebrewbooks_org"

const (
	rawExt      = ".pdf"
	renderedExt = ".png"
)

// Ensure Store implements folio.ArtifactStore at compile time.
var _ folio.ArtifactStore = (*Store)(nil)

// Store keeps page artifacts as flat files under a root directory.
// Artifacts are named <prefix>_<bookID>_<page>.pdf for raw pages and
// <prefix>_<bookID>_<page>.png for rendered pages.
type Store struct {
	Root   string
	Prefix string
}

// NewStore creates a Store rooted at root using DefaultPrefix.
func NewStore(root string) *Store {
	return &Store{Root: root, Prefix: DefaultPrefix}
}

// Open creates the root directory if it does not exist.
func (s *Store) Open() error {
	if s.Root == "" {
		return folio.Errorf(folio.EINVALID, "cache directory required")
	}
	return os.MkdirAll(s.Root, 0755)
}

func (s *Store) prefix() string {
	if s.Prefix == "" {
		return DefaultPrefix
	}
	return s.Prefix
}

func (s *Store) name(bookID, page int, ext string) string {
	return filepath.Join(s.Root, fmt.Sprintf("%s_%d_%d%s", s.prefix(), bookID, page, ext))
}

// RawPath returns the location of the single-page PDF of a page.
func (s *Store) RawPath(bookID, page int) string {
	return s.name(bookID, page, rawExt)
}

// RenderedPath returns the location of the rendered image of a page.
func (s *Store) RenderedPath(bookID, page int) string {
	return s.name(bookID, page, renderedExt)
}

// Exists reports whether path is a non-empty regular file.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

// Remove deletes the given files. Missing files are ignored.
func (s *Store) Remove(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Checksum returns the xxhash of the file at path as 16 hex digits, and the
// file size.
func (s *Store) Checksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return fmt.Sprintf("%016x", h.Sum64()), n, nil
}

// Purge removes every artifact of a book.
func (s *Store) Purge(bookID int) error {
	matches, err := s.glob(bookID, "*")
	if err != nil {
		return err
	}
	return s.Remove(matches...)
}

// RenderedPages returns the pages of a book whose rendered artifact exists,
// in ascending order.
func (s *Store) RenderedPages(bookID int) ([]int, error) {
	matches, err := s.glob(bookID, "*"+renderedExt)
	if err != nil {
		return nil, err
	}

	head := fmt.Sprintf("%s_%d_", s.prefix(), bookID)
	pages := make([]int, 0, len(matches))
	for _, m := range matches {
		base := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), head), renderedExt)
		page, err := strconv.Atoi(base)
		if err != nil || page < 1 || !s.Exists(m) {
			continue
		}
		pages = append(pages, page)
	}
	slices.Sort(pages)
	return pages, nil
}

func (s *Store) glob(bookID int, suffix string) ([]string, error) {
	pattern := filepath.Join(s.Root, fmt.Sprintf("%s_%d_%s", s.prefix(), bookID, suffix))
	return filepath.Glob(pattern)
}
