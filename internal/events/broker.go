package events

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

// Publisher receives every book appended to the shelf.
type Publisher interface {
	Publish(ctx context.Context, book *model.Book) error
}

// Fanout publishes to each publisher in order and joins their errors.
type Fanout []Publisher

// Publish implements Publisher.
func (f Fanout) Publish(ctx context.Context, book *model.Book) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, book); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Broker fans bookAdded events out to in-process subscribers, one buffered
// channel each. A subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.Mutex
	subs   map[uint64]chan *model.Book
	nextID uint64
	buffer int
	logger *zap.Logger
}

// NewBroker creates a broker whose subscriber channels hold up to buffer events.
func NewBroker(buffer int, logger *zap.Logger) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	return &Broker{
		subs:   make(map[uint64]chan *model.Book),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a subscriber. The returned channel is closed once ctx
// is done.
func (b *Broker) Subscribe(ctx context.Context) <-chan *model.Book {
	ch := make(chan *model.Book, b.buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
		b.logger.Debug("subscriber left", zap.Uint64("subscriber", id))
	}()

	return ch
}

// Publish implements Publisher. It never blocks on a subscriber.
func (b *Broker) Publish(ctx context.Context, book *model.Book) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- book:
		default:
			b.logger.Warn("subscriber buffer full, dropping event",
				zap.Uint64("subscriber", id), zap.String("book", book.ID))
		}
	}
	return nil
}

// Subscribers returns the number of live subscribers.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
