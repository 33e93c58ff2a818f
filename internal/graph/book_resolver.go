package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

// bookResolver resolves the relation fields of Book.
type bookResolver struct{ *Resolver }

// Author resolves Book.author. Inside a query the lookup goes through the
// request loader and returns a thunk, so graphql-go resolves all authors of
// a list level in one batch.
func (r *bookResolver) Author(p graphql.ResolveParams) (interface{}, error) {
	book, err := parent[model.Book](p)
	if err != nil {
		return nil, err
	}
	l := batched(p)
	if l == nil || book.AuthorID == nil {
		author, err := r.set.BookAuthor(p.Context, book)
		if err != nil || author == nil {
			return nil, err
		}
		return author, nil
	}

	thunk := l.AuthorByID.LoadThunk(p.Context, *book.AuthorID)
	return func() (interface{}, error) {
		author, err := thunk()
		if err != nil || author == nil {
			return nil, err
		}
		return author, nil
	}, nil
}
