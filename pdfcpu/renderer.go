// Package pdfcpu renders single-page PDFs to images by extracting the
// embedded page scan.
package pdfcpu

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/fs"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Ensure Renderer implements folio.Renderer at compile time.
var _ folio.Renderer = (*Renderer)(nil)

// Renderer extracts the page image of a single-page PDF. Scanned books
// carry one image per page, so the image is the rendered page.
type Renderer struct {
	conf *model.Configuration
}

// disableConfigDir keeps pdfcpu from creating a config directory in the
// user's home.
var disableConfigDir sync.Once

// NewRenderer creates a Renderer using relaxed PDF validation.
func NewRenderer() *Renderer {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Renderer{conf: conf}
}

// Render writes the image of the first page of src to dst. If the page holds
// several images, the one with the highest object number wins.
// Returns ENOTFOUND if the page has no usable image.
func (r *Renderer) Render(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	pages, err := api.ExtractImagesRaw(f, []string{"1"}, r.conf)
	if err != nil {
		return fmt.Errorf("extract images from %s: %w", src, err)
	}

	var best model.Image
	var found bool
	for _, images := range pages {
		for _, img := range images {
			if !supported(img.FileType) {
				continue
			}
			if !found || img.ObjNr > best.ObjNr {
				best, found = img, true
			}
		}
	}
	if !found {
		return folio.Errorf(folio.ENOTFOUND, "no image found in %s", src)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return fs.WriteFileAtomic(dst, best)
}

// PageCount returns the number of pages of the PDF at path. It fails if the
// file is not a readable PDF.
func (r *Renderer) PageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := api.PageCount(f, r.conf)
	if err != nil {
		return 0, fmt.Errorf("count pages of %s: %w", path, err)
	}
	return n, nil
}

func supported(fileType string) bool {
	switch strings.ToLower(fileType) {
	case "png", "jpg", "jpeg", "gif":
		return true
	default:
		return false
	}
}
