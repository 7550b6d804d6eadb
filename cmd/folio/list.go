package main

import (
	"fmt"

	"github.com/fwojciec/folio"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	var filter folio.BookFilter
	if c.Title != "" {
		filter.Title = &c.Title
	}

	books, err := deps.Books.FindBooks(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	if len(books) == 0 {
		fmt.Fprintln(deps.Stdout, "No books found. Use 'folio info <id>' to add one.")
		return nil
	}

	for _, b := range books {
		fmt.Fprintf(deps.Stdout, "%d  %s  %d pages", b.ID, b.DisplayTitle(), b.NumPages)
		if b.LastPage > 0 {
			fmt.Fprintf(deps.Stdout, "  (at page %d)", b.LastPage)
		}
		fmt.Fprintln(deps.Stdout)
	}

	return nil
}
