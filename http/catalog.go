package http

import (
	"fmt"
	"strings"

	"github.com/fwojciec/folio"
)

// DefaultBaseURL is the root of the public book catalog.
const DefaultBaseURL = "http://www.hebrewbooks.org"

// Ensure Catalog implements folio.Catalog at compile time.
var _ folio.Catalog = (*Catalog)(nil)

// Catalog builds book and page URLs relative to BaseURL.
type Catalog struct {
	BaseURL string
}

func (c *Catalog) base() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(c.BaseURL, "/")
}

// BookURL returns the URL of the book's information page.
func (c *Catalog) BookURL(id int) string {
	return fmt.Sprintf("%s/%d", c.base(), id)
}

// PageURL returns the URL of a single page of the book as a PDF.
func (c *Catalog) PageURL(id, page int) string {
	return fmt.Sprintf("%s/pagefeed/hebrewbooks_org_%d_%d.pdf", c.base(), id, page)
}

// ThumbnailURL resolves a thumbnail path scraped from the information page.
func (c *Catalog) ThumbnailURL(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.base() + "/" + strings.TrimLeft(path, "/")
}
