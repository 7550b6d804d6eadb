package main

import (
	"fmt"

	"github.com/fwojciec/folio"
)

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return folio.Errorf(folio.EINVALID, "use --force to confirm deletion")
	}

	b, err := deps.Books.FindBookByID(deps.Ctx, c.ID)
	if folio.ErrorCode(err) == folio.ENOTFOUND {
		fmt.Fprintf(deps.Stderr, "error: book %d not found. Use 'folio list' to see known books.\n", c.ID)
		return err
	} else if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	if err := deps.Books.DeleteBook(deps.Ctx, b.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	if err := deps.Store.Purge(b.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: remove pages: %s\n", folio.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted book %d (%s)\n", b.ID, b.DisplayTitle())
	return nil
}
