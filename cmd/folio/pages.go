package main

import (
	"fmt"

	"github.com/fwojciec/folio"
)

// Run executes the pages command.
func (c *PagesCmd) Run(deps *Dependencies) error {
	records, err := deps.Records.FindPageRecords(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	if len(records) == 0 {
		fmt.Fprintf(deps.Stdout, "No pages rendered for book %d.\n", c.ID)
		return nil
	}

	for _, r := range records {
		fmt.Fprintf(deps.Stdout, "%d  %s  %d  %s\n", r.Page, r.Checksum, r.Size, r.Path)
	}

	return nil
}
