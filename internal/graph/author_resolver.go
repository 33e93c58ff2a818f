package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/resolvers"
)

// authorResolver resolves the relation fields of Author.
type authorResolver struct{ *Resolver }

// Books resolves Author.books.
func (r *authorResolver) Books(p graphql.ResolveParams) (interface{}, error) {
	author, err := parent[model.Author](p)
	if err != nil {
		return nil, err
	}
	l := batched(p)
	if l == nil {
		return r.set.AuthorBooks(p.Context, author)
	}

	thunk := l.BooksByAuthorID.LoadThunk(p.Context, author.ID)
	return func() (interface{}, error) {
		return thunk()
	}, nil
}

// BookIDs resolves Author.bookIds from the same lookup as Author.books.
func (r *authorResolver) BookIDs(p graphql.ResolveParams) (interface{}, error) {
	author, err := parent[model.Author](p)
	if err != nil {
		return nil, err
	}
	l := batched(p)
	if l == nil {
		return r.set.AuthorBookIDs(p.Context, author)
	}

	thunk := l.BooksByAuthorID.LoadThunk(p.Context, author.ID)
	return func() (interface{}, error) {
		books, err := thunk()
		if err != nil {
			return nil, err
		}
		return resolvers.BookIDs(books), nil
	}, nil
}
