package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/folio"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Books   folio.BookService
	Records folio.PageRecordService
	Store   folio.ArtifactStore
	Loader  folio.BookLoader

	// OpenCache creates a page cache for a book. The returned func releases
	// it.
	OpenCache func(book *folio.Book) (folio.PageCache, func())
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB          string        `name:"db" env:"FOLIO_DB" default:"${default_db}" help:"Database path"`
	CacheDir    string        `name:"cache-dir" env:"FOLIO_CACHE_DIR" default:"${default_cache_dir}" help:"Directory for downloaded and rendered pages"`
	BaseURL     string        `name:"base-url" env:"FOLIO_BASE_URL" default:"${default_base_url}" help:"Catalog base URL"`
	Ahead       int           `default:"5" help:"Pages to prefetch after the requested one (0 disables)"`
	Behind      int           `default:"3" help:"Pages to prefetch before the requested one (0 disables)"`
	Timeout     time.Duration `default:"0s" help:"Maximum wait for a page (0 waits indefinitely)"`
	RetryDelay  time.Duration `name:"retry-delay" default:"250ms" help:"Pause before retrying a failed page"`
	RPS         float64       `name:"rps" default:"2" help:"Catalog requests per second (0 for unlimited)"`
	Debug       bool          `help:"Enable debug logging"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address"`

	Info   InfoCmd   `cmd:"" help:"Show book information, fetching it from the catalog if needed"`
	Read   ReadCmd   `cmd:"" help:"Read a book interactively"`
	Get    GetCmd    `cmd:"" help:"Download and render pages"`
	List   ListCmd   `cmd:"" help:"List known books"`
	Pages  PagesCmd  `cmd:"" help:"List rendered pages of a book"`
	Delete DeleteCmd `cmd:"" help:"Delete a book and its pages"`
}

// Validate rejects flag values the cache cannot use. Kong calls it after
// parsing.
func (c *CLI) Validate() error {
	if c.Ahead < 0 {
		return folio.Errorf(folio.EINVALID, "--ahead must not be negative: %d", c.Ahead)
	}
	if c.Behind < 0 {
		return folio.Errorf(folio.EINVALID, "--behind must not be negative: %d", c.Behind)
	}
	return nil
}

// InfoCmd is the "info" subcommand.
type InfoCmd struct {
	ID int `arg:"" help:"Book ID"`
}

// ReadCmd is the "read" subcommand.
type ReadCmd struct {
	ID   int `arg:"" help:"Book ID"`
	Page int `short:"p" help:"Start page (defaults to the last page read)"`
}

// GetCmd is the "get" subcommand.
type GetCmd struct {
	ID    int   `arg:"" help:"Book ID"`
	Pages []int `arg:"" help:"Page numbers"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Title string `short:"t" help:"Filter by title"`
}

// PagesCmd is the "pages" subcommand.
type PagesCmd struct {
	ID int `arg:"" help:"Book ID"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	ID    int  `arg:"" help:"Book ID"`
	Force bool `help:"Confirm deletion"`
}
