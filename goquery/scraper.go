// Package goquery scrapes book metadata from catalog HTML pages.
package goquery

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/folio"
)

// Element ID prefix used by the catalog's information page.
const idPrefix = "#ctl00_cpMstr_"

// Ensure Scraper implements folio.BookScraper at compile time.
var _ folio.BookScraper = (*Scraper)(nil)

// Scraper reads book metadata from a book's information page.
type Scraper struct{}

// NewScraper creates a new Scraper.
func NewScraper() *Scraper {
	return &Scraper{}
}

// Scrape extracts book metadata from html. The page count is required;
// other fields are left empty when missing. The returned book has no ID.
func (s *Scraper) Scrape(html string) (*folio.Book, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, folio.Errorf(folio.EINVALID, "failed to parse HTML: %v", err)
	}

	pagesText := field(doc, "lblPages")
	if pagesText == "" {
		return nil, folio.Errorf(folio.EINVALID, "page count not found")
	}
	numPages, err := strconv.Atoi(strings.ReplaceAll(pagesText, ",", ""))
	if err != nil || numPages <= 0 {
		return nil, folio.Errorf(folio.EINVALID, "invalid page count %q", pagesText)
	}

	thumbnail, _ := doc.Find("img[src^=thumbs]").First().Attr("src")

	return &folio.Book{
		Title:                  field(doc, "lblSefername"),
		TitleHebrew:            field(doc, "lblHebSefername"),
		Author:                 field(doc, "lblAuth"),
		AuthorHebrew:           field(doc, "lblHebAuth"),
		PublicationPlace:       field(doc, "lblPlace"),
		PublicationPlaceHebrew: field(doc, "lblHebPlace"),
		PublicationDate:        field(doc, "lblDate"),
		PublicationDateHebrew:  field(doc, "lblHebDate"),
		Description:            field(doc, "lblDesc"),
		Thumbnail:              thumbnail,
		OCLC:                   field(doc, "hlOCLC"),
		ULI:                    field(doc, "hlULI"),
		Source:                 field(doc, "lblSrc"),
		CatalogInfo:            field(doc, "lblCat"),
		NumPages:               numPages,
	}, nil
}

func field(doc *goquery.Document, id string) string {
	return strings.TrimSpace(doc.Find(idPrefix + id).First().Text())
}
