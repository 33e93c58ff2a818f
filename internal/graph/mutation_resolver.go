package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

// mutationResolver resolves the fields of Mutation.
type mutationResolver struct{ *Resolver }

// AddBook decodes the optional arguments and delegates Mutation.addBook.
func (r *mutationResolver) AddBook(p graphql.ResolveParams) (interface{}, error) {
	book, err := r.set.AddBook(p.Context, model.NewBook{
		Title:         stringArg(p.Args, "title"),
		PublishedYear: intArg(p.Args, "publishedYear"),
		AuthorID:      stringArg(p.Args, "authorId"),
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// stringArg returns nil for an omitted or null argument.
func stringArg(args map[string]interface{}, name string) *string {
	s, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &s
}

// intArg returns nil for an omitted or null argument.
func intArg(args map[string]interface{}, name string) *int {
	var n int
	switch v := args[name].(type) {
	case int:
		n = v
	case int32:
		n = int(v)
	case int64:
		n = int(v)
	case float64:
		n = int(v)
	default:
		return nil
	}
	return &n
}
