package graph

import (
	"github.com/graphql-go/graphql"
)

// subscriptionResolver resolves the fields of Subscription.
type subscriptionResolver struct{ *Resolver }

// BookAdded opens the Subscription.bookAdded event stream. graphql-go reads
// events from a chan interface{} until it is closed or the request context
// ends.
func (r *subscriptionResolver) BookAdded(p graphql.ResolveParams) (interface{}, error) {
	stream, err := r.set.BookAdded(p.Context)
	if err != nil {
		return nil, err
	}
	out := make(chan interface{})
	go func() {
		defer close(out)
		for book := range stream {
			select {
			case out <- book:
			case <-p.Context.Done():
				return
			}
		}
	}()
	return out, nil
}

// Payload resolves a subscription field to the event being delivered.
func (r *subscriptionResolver) Payload(p graphql.ResolveParams) (interface{}, error) {
	return p.Source, nil
}
