package resolvers

import (
	"context"

	"github.com/samber/lo"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

// AuthorBooks resolves Author.books by scanning books for a matching authorId.
func (s *Set) AuthorBooks(ctx context.Context, author *model.Author) ([]*model.Book, error) {
	if author == nil {
		return []*model.Book{}, nil
	}
	return s.data.BooksByAuthorID(ctx, author.ID)
}

// AuthorBookIDs resolves Author.bookIds. The ids are derived from the same
// scan as Author.books so the two can never disagree.
func (s *Set) AuthorBookIDs(ctx context.Context, author *model.Author) ([]string, error) {
	books, err := s.AuthorBooks(ctx, author)
	if err != nil {
		return nil, err
	}
	return BookIDs(books), nil
}

// BookIDs projects books onto their ids.
func BookIDs(books []*model.Book) []string {
	return lo.Map(books, func(b *model.Book, _ int) string { return b.ID })
}
