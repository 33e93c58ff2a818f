package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/store"
)

func bookIDs(books []*model.Book) []string {
	return lo.Map(books, func(b *model.Book, _ int) string { return b.ID })
}

func TestSeededBooksKeepInsertionOrder(t *testing.T) {
	s := store.NewSeeded()

	books, err := s.Books(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102", "103"}, bookIDs(books))
}

func TestBooksReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeeded()

	books, err := s.Books(ctx)
	require.NoError(t, err)
	*books[0].Title = "changed"
	books[0].ID = "999"

	again, err := s.Books(ctx)
	require.NoError(t, err)
	assert.Equal(t, "101", again[0].ID)
	assert.Equal(t, "System Design", *again[0].Title)
}

func TestAuthorByID(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeeded()

	a, err := s.AuthorByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Akshay gupta", *a.Name)

	_, err = s.AuthorByID(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrAuthorNotFound)
}

func TestBooksByAuthorID(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeeded()

	books, err := s.BooksByAuthorID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102"}, bookIDs(books))

	books, err = s.BooksByAuthorID(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestBatchLookupsArePositional(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeeded()

	authors, err := s.AuthorsByIDs(ctx, []string{"2", "x", "1"})
	require.NoError(t, err)
	require.Len(t, authors, 3)
	assert.Equal(t, "2", authors[0].ID)
	assert.Nil(t, authors[1])
	assert.Equal(t, "1", authors[2].ID)

	books, err := s.BooksByAuthorIDs(ctx, []string{"2", "x", "1"})
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, []string{"103"}, bookIDs(books[0]))
	assert.Empty(t, books[1])
	assert.Equal(t, []string{"101", "102"}, bookIDs(books[2]))
}

func TestAddBook(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeeded(store.WithIDGenerator(func() string { return "new-1" }))

	b, err := s.AddBook(ctx, model.NewBook{
		Title:         lo.ToPtr("New"),
		PublishedYear: lo.ToPtr(2023),
		AuthorID:      lo.ToPtr("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", b.ID)
	assert.Equal(t, "New", *b.Title)
	assert.Equal(t, 2023, *b.PublishedYear)
	assert.Equal(t, "2", *b.AuthorID)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	books, err := s.BooksByAuthorID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, []string{"103", "new-1"}, bookIDs(books))
}

func TestAddBookWithoutArguments(t *testing.T) {
	s := store.NewSeeded()

	b, err := s.AddBook(context.Background(), model.NewBook{})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Nil(t, b.Title)
	assert.Nil(t, b.PublishedYear)
	assert.Nil(t, b.AuthorID)
}

func TestAddBookRejectsUnknownAuthor(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeeded()

	_, err := s.AddBook(ctx, model.NewBook{AuthorID: lo.ToPtr("404")})
	require.ErrorIs(t, err, store.ErrAuthorNotFound)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAddBookRejectsDuplicateID(t *testing.T) {
	s := store.NewSeeded(store.WithIDGenerator(func() string { return "101" }))

	_, err := s.AddBook(context.Background(), model.NewBook{})
	assert.ErrorIs(t, err, store.ErrDuplicateID)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := store.NewSeeded()

	_, err := s.Books(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.AddBook(ctx, model.NewBook{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentAddBookYieldsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := store.NewSeeded()

	const workers = 16
	const perWorker = 50

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = make(map[string]struct{})
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				b, err := s.AddBook(ctx, model.NewBook{Title: lo.ToPtr(fmt.Sprintf("w%d-%d", w, i))})
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				ids[b.ID] = struct{}{}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	assert.Len(t, ids, workers*perWorker)
	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3+workers*perWorker, n)
}
