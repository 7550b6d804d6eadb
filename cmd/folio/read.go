package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/viewer"
)

const readHelp = "commands: n (next), p (previous), g N (go to page), q (quit)"

// Run executes the read command. It reads navigation commands from stdin,
// one per line, and prints the location of each page as it becomes ready.
func (c *ReadCmd) Run(deps *Dependencies) error {
	b, err := deps.Loader.Load(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	start := c.startPage(b)
	if !b.HasPage(start) {
		err := folio.Errorf(folio.EINVALID, "page %d out of range (1-%d)", start, b.NumPages)
		fmt.Fprintf(deps.Stderr, "error: %s\n", folio.ErrorMessage(err))
		return err
	}

	pc, release := deps.OpenCache(b)
	defer release()
	v := viewer.New(pc, viewer.WithLogger(deps.Logger))

	fmt.Fprintf(deps.Stdout, "%s (%d pages)\n%s\n", b.DisplayTitle(), b.NumPages, readHelp)
	v.Goto(start)
	c.loop(deps, v, b)
	v.Close()

	return c.savePosition(deps, b, v.Current())
}

func (c *ReadCmd) startPage(b *folio.Book) int {
	switch {
	case c.Page > 0:
		return c.Page
	case b.LastPage > 0:
		return b.LastPage
	default:
		return 1
	}
}

func (c *ReadCmd) loop(deps *Dependencies, v *viewer.Viewer, b *folio.Book) {
	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	go func() {
		defer close(lines)
		s := bufio.NewScanner(deps.Stdin)
		for s.Scan() {
			select {
			case lines <- s.Text():
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-deps.Ctx.Done():
			return
		case l := <-v.Loads():
			if l.Err != nil {
				fmt.Fprintf(deps.Stderr, "error: page %d: %s\n", l.Page, folio.ErrorMessage(l.Err))
				continue
			}
			fmt.Fprintf(deps.Stdout, "%d/%d  %s\n", l.Page, b.NumPages, l.Path)
		case line, ok := <-lines:
			if !ok || !navigate(deps, v, b, line) {
				return
			}
		}
	}
}

// navigate applies one command line. Reports false when reading should end.
func navigate(deps *Dependencies, v *viewer.Viewer, b *folio.Book, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fields = []string{"n"}
	}
	switch fields[0] {
	case "q":
		return false
	case "n":
		if !v.Next() {
			fmt.Fprintln(deps.Stderr, "already at the last page")
		}
	case "p":
		if !v.Prev() {
			fmt.Fprintln(deps.Stderr, "already at the first page")
		}
	case "g":
		page := 0
		if len(fields) == 2 {
			page, _ = strconv.Atoi(fields[1])
		}
		if !v.Goto(page) {
			fmt.Fprintf(deps.Stderr, "page must be between 1 and %d\n", b.NumPages)
		}
	default:
		fmt.Fprintln(deps.Stderr, readHelp)
	}
	return true
}

// savePosition stores page as the last page read. It runs even when the
// command context was canceled.
func (c *ReadCmd) savePosition(deps *Dependencies, b *folio.Book, page int) error {
	if page <= 0 || page == b.LastPage {
		return nil
	}
	ctx := context.WithoutCancel(deps.Ctx)
	if _, err := deps.Books.UpdateBook(ctx, b.ID, folio.BookUpdate{LastPage: &page}); err != nil {
		fmt.Fprintf(deps.Stderr, "error: save position: %s\n", folio.ErrorMessage(err))
		return err
	}
	return nil
}
