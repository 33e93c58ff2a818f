package graph

import (
	"github.com/graphql-go/graphql"
)

// queryResolver resolves the fields of Query.
type queryResolver struct{ *Resolver }

// Books delegates the Query.books field resolution.
func (r *queryResolver) Books(p graphql.ResolveParams) (interface{}, error) {
	return r.set.Books(p.Context)
}

// Authors delegates the Query.authors field resolution.
func (r *queryResolver) Authors(p graphql.ResolveParams) (interface{}, error) {
	return r.set.Authors(p.Context)
}
