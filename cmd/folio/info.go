package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/folio"
)

// Run executes the info command.
func (c *InfoCmd) Run(deps *Dependencies) error {
	b, err := deps.Loader.Load(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	w := deps.Stdout
	printField(w, "ID", fmt.Sprint(b.ID))
	printField(w, "Title", b.Title, b.TitleHebrew)
	printField(w, "Author", b.Author, b.AuthorHebrew)
	printField(w, "Place", b.PublicationPlace, b.PublicationPlaceHebrew)
	printField(w, "Date", b.PublicationDate, b.PublicationDateHebrew)
	printField(w, "Pages", fmt.Sprint(b.NumPages))
	if b.LastPage > 0 {
		printField(w, "Last read", fmt.Sprint(b.LastPage))
	}
	printField(w, "Source", b.Source)
	printField(w, "Catalog", b.CatalogInfo)
	printField(w, "OCLC", b.OCLC)
	printField(w, "ULI", b.ULI)
	printField(w, "Description", b.Description)
	printField(w, "Thumbnail", b.Thumbnail)
	return nil
}

// printField writes the non-empty values of a field on one line.
func printField(w io.Writer, label string, values ...string) {
	var line string
	for _, v := range values {
		if v == "" {
			continue
		}
		if line != "" {
			line += " / "
		}
		line += v
	}
	if line == "" {
		return
	}
	fmt.Fprintf(w, "%-12s %s\n", label+":", line)
}
