package resolvers

import (
	"context"
	"errors"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

// ErrNoFeed is returned by BookAdded when the set was built without a feed.
var ErrNoFeed = errors.New("bookAdded subscriptions are not available")

// BookAdded resolves Subscription.bookAdded. The stream closes when ctx is done.
func (s *Set) BookAdded(ctx context.Context) (<-chan *model.Book, error) {
	if s.feed == nil {
		return nil, ErrNoFeed
	}
	s.logger.Debug("Subscription.bookAdded started")
	return s.feed.Subscribe(ctx), nil
}
