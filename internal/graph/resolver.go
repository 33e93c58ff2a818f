package graph

import (
	"fmt"

	"github.com/graphql-go/graphql"
	gqlast "github.com/graphql-go/graphql/language/ast"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/loaders"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/resolvers"
)

// Resolver is the root resolver. It adapts graphql-go resolve params to the
// resolver set and hands out one resolver per schema type.
type Resolver struct {
	set *resolvers.Set
}

// NewResolver creates a new resolver instance.
func NewResolver(set *resolvers.Set) *Resolver {
	return &Resolver{set: set}
}

// Query returns the Query field resolvers.
func (r *Resolver) Query() *queryResolver { return &queryResolver{r} }

// Mutation returns the Mutation field resolvers.
func (r *Resolver) Mutation() *mutationResolver { return &mutationResolver{r} }

// Subscription returns the Subscription field resolvers.
func (r *Resolver) Subscription() *subscriptionResolver { return &subscriptionResolver{r} }

// Book returns the Book field resolvers.
func (r *Resolver) Book() *bookResolver { return &bookResolver{r} }

// Author returns the Author field resolvers.
func (r *Resolver) Author() *authorResolver { return &authorResolver{r} }

// Fields binds every resolver to its schema field.
func (r *Resolver) Fields() FieldMap {
	query, mutation, subscription := r.Query(), r.Mutation(), r.Subscription()
	book, author := r.Book(), r.Author()
	return FieldMap{
		"Query.books":   {Resolve: query.Books},
		"Query.authors": {Resolve: query.Authors},

		"Mutation.addBook": {Resolve: mutation.AddBook},

		"Subscription.bookAdded": {Subscribe: subscription.BookAdded, Resolve: subscription.Payload},

		"Book.author": {Resolve: book.Author},

		"Author.books":   {Resolve: author.Books},
		"Author.bookIds": {Resolve: author.BookIDs},
	}
}

// NewExecutableSchema builds the bookshelf schema from the embedded SDL.
func NewExecutableSchema(r *Resolver) (graphql.Schema, error) {
	return BuildSchema(SDL, r.Fields())
}

// parent extracts the typed parent object of a field.
func parent[T any](p graphql.ResolveParams) (*T, error) {
	obj, ok := p.Source.(*T)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected parent %T", p.Info.FieldName, p.Source)
	}
	return obj, nil
}

// batched returns the request loaders when relation fields may be deferred
// as thunks. Mutation fields run serially, so their selections resolve
// directly and only see the writes of the fields before them.
func batched(p graphql.ResolveParams) *loaders.Loaders {
	if op := p.Info.Operation; op != nil && op.GetOperation() == gqlast.OperationTypeMutation {
		return nil
	}
	return loaders.For(p.Context)
}
