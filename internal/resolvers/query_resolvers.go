package resolvers

import (
	"context"

	"go.uber.org/zap"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

// Books resolves Query.books: every book, insertion order.
func (s *Set) Books(ctx context.Context) ([]*model.Book, error) {
	books, err := s.data.Books(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Query.books", zap.Int("count", len(books)))
	return books, nil
}

// Authors resolves Query.authors: every author, insertion order.
func (s *Set) Authors(ctx context.Context) ([]*model.Author, error) {
	authors, err := s.data.Authors(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Query.authors", zap.Int("count", len(authors)))
	return authors, nil
}
