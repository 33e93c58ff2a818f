package resolvers

import (
	"context"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

// Dataset is the record store the resolvers read from and append to.
type Dataset interface {
	Books(ctx context.Context) ([]*model.Book, error)
	Authors(ctx context.Context) ([]*model.Author, error)
	AuthorByID(ctx context.Context, id string) (*model.Author, error)
	BooksByAuthorID(ctx context.Context, id string) ([]*model.Book, error)
	AddBook(ctx context.Context, in model.NewBook) (*model.Book, error)
}

// Subscriber hands out a stream of newly added books that ends with ctx.
type Subscriber interface {
	Subscribe(ctx context.Context) <-chan *model.Book
}
