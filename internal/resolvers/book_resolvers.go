package resolvers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/store"
)

// BookAuthor resolves Book.author. A book without an authorId, or with one
// that matches nobody, has a null author rather than an error.
func (s *Set) BookAuthor(ctx context.Context, book *model.Book) (*model.Author, error) {
	if book == nil || book.AuthorID == nil {
		return nil, nil
	}
	author, err := s.data.AuthorByID(ctx, *book.AuthorID)
	if errors.Is(err, store.ErrAuthorNotFound) {
		s.logger.Debug("dangling author reference", zap.String("book", book.ID), zap.String("author", *book.AuthorID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return author, nil
}
