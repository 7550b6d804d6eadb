package main

import (
	"fmt"

	"github.com/fwojciec/folio"
	"golang.org/x/sync/errgroup"
)

// Run executes the get command. Pages are requested concurrently; the
// cache serializes the work.
func (c *GetCmd) Run(deps *Dependencies) error {
	b, err := deps.Loader.Load(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	pc, release := deps.OpenCache(b)
	defer release()
	pc.Start()

	paths := make([]string, len(c.Pages))
	g, ctx := errgroup.WithContext(deps.Ctx)
	for i, page := range c.Pages {
		g.Go(func() error {
			path, err := pc.GetPage(ctx, page)
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	for i, page := range c.Pages {
		fmt.Fprintf(deps.Stdout, "%d\t%s\n", page, paths[i])
	}
	return nil
}
