package mock_test

import (
	"context"
	"testing"

	"github.com/fwojciec/folio"
	"github.com/fwojciec/folio/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookService_CreateBook(t *testing.T) {
	t.Parallel()

	t.Run("delegates to CreateBookFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *folio.Book
		s := &mock.BookService{
			CreateBookFn: func(_ context.Context, book *folio.Book) error {
				calledWith = book
				return nil
			},
		}

		book := &folio.Book{ID: 1234, Title: "Test Book", NumPages: 10}

		err := s.CreateBook(context.Background(), book)

		require.NoError(t, err)
		assert.Equal(t, book, calledWith)
	})
}

func TestDocumentSource_Render(t *testing.T) {
	t.Parallel()

	t.Run("passes nil result through", func(t *testing.T) {
		t.Parallel()

		s := &mock.DocumentSource{
			RenderFn: func(_ context.Context, _ *folio.Artifact) (*folio.Artifact, error) {
				return nil, nil
			},
		}

		got, err := s.Render(context.Background(), &folio.Artifact{Page: 1, Path: "p1.pdf"})

		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
