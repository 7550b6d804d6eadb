package main_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fwojciec/folio"
	main "github.com/fwojciec/folio/cmd/folio"
	"github.com/fwojciec/folio/mock"
)

func testBook() *folio.Book {
	return &folio.Book{
		ID:          42,
		Title:       "Sefer Test",
		TitleHebrew: "ספר בדיקה",
		Author:      "Anonymous",
		NumPages:    10,
	}
}

func loaderFor(book *folio.Book) *mock.BookLoader {
	return &mock.BookLoader{
		LoadFn: func(_ context.Context, id int) (*folio.Book, error) {
			if id != book.ID {
				return nil, folio.Errorf(folio.ENOTFOUND, "book %d not found in catalog", id)
			}
			return book, nil
		},
	}
}

func instantCache(book *folio.Book) *mock.PageCache {
	return &mock.PageCache{
		StartFn: func() {},
		GetPageFn: func(_ context.Context, page int) (string, error) {
			return fmt.Sprintf("/cache/hebrewbooks_org_%d_%d.png", book.ID, page), nil
		},
		BookFn: func() *folio.Book { return book },
	}
}

// newDeps returns dependencies writing to the returned buffers.
func newDeps(stdin string) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdin:  strings.NewReader(stdin),
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.DiscardHandler),
	}, stdout, stderr
}
