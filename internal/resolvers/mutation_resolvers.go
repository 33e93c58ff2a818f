package resolvers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/store"
)

// AddBook resolves Mutation.addBook. Every argument is optional, but a given
// authorId has to name an existing author.
func (s *Set) AddBook(ctx context.Context, in model.NewBook) (*model.Book, error) {
	book, err := s.data.AddBook(ctx, in)
	if errors.Is(err, store.ErrAuthorNotFound) {
		return nil, &NotFoundError{Kind: "Author", ID: *in.AuthorID}
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Mutation.addBook", zap.String("book", book.ID))

	if s.publisher != nil {
		// The book is already stored; a failed export must not fail the mutation.
		if err := s.publisher.Publish(ctx, book); err != nil {
			s.logger.Warn("publishing bookAdded failed", zap.String("book", book.ID), zap.Error(err))
		}
	}
	return book, nil
}
