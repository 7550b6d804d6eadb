package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/mock"
	folioslog "github.com/fwojciec/folio/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingSource_FetchRaw(t *testing.T) {
	t.Parallel()

	t.Run("logs page and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.DocumentSource{
			FetchRawFn: func(_ context.Context, page int) (*folio.Artifact, error) {
				return &folio.Artifact{Page: page, Path: "p.pdf"}, nil
			},
		}

		src := folioslog.NewLoggingSource(inner, debugLogger(&buf))
		raw, err := src.FetchRaw(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, "p.pdf", raw.Path)
		output := buf.String()
		assert.Contains(t, output, "fetch page")
		assert.Contains(t, output, "page=7")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.DocumentSource{
			FetchRawFn: func(context.Context, int) (*folio.Artifact, error) {
				return nil, errors.New("connection reset")
			},
		}

		src := folioslog.NewLoggingSource(inner, debugLogger(&buf))
		_, err := src.FetchRaw(context.Background(), 7)

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"connection reset\"")
	})

	t.Run("stays quiet above debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.DocumentSource{
			FetchRawFn: func(_ context.Context, page int) (*folio.Artifact, error) {
				return &folio.Artifact{Page: page}, nil
			},
		}

		src := folioslog.NewLoggingSource(inner, slog.New(slog.NewTextHandler(&buf, nil)))
		_, err := src.FetchRaw(context.Background(), 1)

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestLoggingSource_Render(t *testing.T) {
	t.Parallel()

	t.Run("flags empty render", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.DocumentSource{
			RenderFn: func(context.Context, *folio.Artifact) (*folio.Artifact, error) {
				return nil, nil
			},
		}

		src := folioslog.NewLoggingSource(inner, debugLogger(&buf))
		rendered, err := src.Render(context.Background(), &folio.Artifact{Page: 3})

		require.NoError(t, err)
		assert.Nil(t, rendered)
		output := buf.String()
		assert.Contains(t, output, "render page")
		assert.Contains(t, output, "page=3")
		assert.Contains(t, output, "empty=true")
	})
}

func TestLoggingSource_Delegates(t *testing.T) {
	t.Parallel()

	inner := &mock.DocumentSource{
		NumPagesFn:       func() int { return 12 },
		LocateRenderedFn: func(page int) string { return "r.png" },
		LocateRawFn:      func(page int) string { return "r.pdf" },
	}

	src := folioslog.NewLoggingSource(inner, debugLogger(&bytes.Buffer{}))

	assert.Equal(t, 12, src.NumPages())
	assert.Equal(t, "r.png", src.LocateRendered(1))
	assert.Equal(t, "r.pdf", src.LocateRaw(1))
}
