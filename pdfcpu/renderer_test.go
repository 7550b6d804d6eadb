package pdfcpu_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/pdfcpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scan returns a small JPEG filled with c.
func scan(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// singlePagePDF builds a one-page PDF drawing each JPEG as an image XObject.
func singlePagePDF(t *testing.T, scans ...[]byte) []byte {
	t.Helper()

	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}

	add("<< /Type /Catalog /Pages 2 0 R >>")
	add("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	add("") // page, filled in below

	var xobjects, content strings.Builder
	for i, data := range scans {
		nr := add(fmt.Sprintf(
			"<< /Type /XObject /Subtype /Image /Width 8 /Height 8 /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode /Length %d >>\nstream\n%s\nendstream",
			len(data), data))
		fmt.Fprintf(&xobjects, "/Im%d %d 0 R ", i, nr)
		fmt.Fprintf(&content, "q 8 0 0 8 0 0 cm /Im%d Do Q\n", i)
	}
	contents := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()))

	resources := "<< >>"
	if len(scans) > 0 {
		resources = "<< /XObject << " + xobjects.String() + ">> >>"
	}
	objects[2] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 8 8] /Resources %s /Contents %d 0 R >>", resources, contents)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func writePDF(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.pdf")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("extracts the page image", func(t *testing.T) {
		t.Parallel()

		img := scan(t, color.White)
		src := writePDF(t, singlePagePDF(t, img))
		dst := filepath.Join(t.TempDir(), "page.png")

		err := pdfcpu.NewRenderer().Render(context.Background(), src, dst)

		require.NoError(t, err)
		got, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, img, got)
	})

	t.Run("prefers the image with the highest object number", func(t *testing.T) {
		t.Parallel()

		first := scan(t, color.White)
		last := scan(t, color.Black)
		src := writePDF(t, singlePagePDF(t, first, last))
		dst := filepath.Join(t.TempDir(), "page.png")

		err := pdfcpu.NewRenderer().Render(context.Background(), src, dst)

		require.NoError(t, err)
		got, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, last, got)
	})

	t.Run("returns ENOTFOUND for a page without images", func(t *testing.T) {
		t.Parallel()

		src := writePDF(t, singlePagePDF(t))
		dst := filepath.Join(t.TempDir(), "page.png")

		err := pdfcpu.NewRenderer().Render(context.Background(), src, dst)

		require.Error(t, err)
		assert.Equal(t, folio.ENOTFOUND, folio.ErrorCode(err))
		assert.NoFileExists(t, dst)
	})

	t.Run("fails on a corrupt file", func(t *testing.T) {
		t.Parallel()

		src := writePDF(t, []byte("<html>not a pdf</html>"))
		dst := filepath.Join(t.TempDir(), "page.png")

		err := pdfcpu.NewRenderer().Render(context.Background(), src, dst)

		require.Error(t, err)
		assert.NoFileExists(t, dst)
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		t.Parallel()

		err := pdfcpu.NewRenderer().Render(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), "out.png")

		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := pdfcpu.NewRenderer().Render(ctx, "in.pdf", "out.png")

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestRenderer_PageCount(t *testing.T) {
	t.Parallel()

	src := writePDF(t, singlePagePDF(t, scan(t, color.White)))

	n, err := pdfcpu.NewRenderer().PageCount(src)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
