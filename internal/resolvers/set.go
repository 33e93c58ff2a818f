package resolvers

import (
	"go.uber.org/zap"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/events"
)

// Set holds the field logic of the bookshelf schema. It owns no state; all
// records live in the Dataset.
type Set struct {
	data      Dataset
	publisher events.Publisher
	feed      Subscriber
	logger    *zap.Logger
}

// NewSet creates the resolver set. publisher receives every added book and
// feed backs the bookAdded subscription; an events.Broker serves as both.
func NewSet(data Dataset, publisher events.Publisher, feed Subscriber, logger *zap.Logger) *Set {
	return &Set{
		data:      data,
		publisher: publisher,
		feed:      feed,
		logger:    logger,
	}
}
