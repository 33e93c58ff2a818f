package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

var (
	// ErrAuthorNotFound is returned when an author id matches no seeded author.
	ErrAuthorNotFound = errors.New("author not found")
	// ErrDuplicateID is returned when the id generator hands out an id already in use.
	ErrDuplicateID = errors.New("duplicate book id")
)

// Option configures a Store.
type Option func(s *Store)

// WithIDGenerator replaces the uuid based id generator for new books.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		s.newID = next
	}
}

// Store is the in-memory dataset. Authors are fixed at construction, books
// only ever grow.
type Store struct {
	mu      sync.RWMutex
	authors []model.Author
	books   []model.Book
	bookIDs map[string]struct{}
	newID   func() string
}

// New creates a store holding copies of the given records.
func New(authors []model.Author, books []model.Book, opts ...Option) *Store {
	s := &Store{
		authors: append([]model.Author(nil), authors...),
		books:   append([]model.Book(nil), books...),
		bookIDs: make(map[string]struct{}, len(books)),
		newID:   uuid.NewString,
	}
	for _, b := range books {
		s.bookIDs[b.ID] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSeeded creates a store loaded with the seed authors and books.
func NewSeeded(opts ...Option) *Store {
	return New(SeedAuthors(), SeedBooks(), opts...)
}

// Books returns every book in insertion order.
func (s *Store) Books(ctx context.Context) ([]*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.books, func(b model.Book, _ int) *model.Book { return copyBook(b) }), nil
}

// Authors returns every author in insertion order.
func (s *Store) Authors(ctx context.Context) ([]*model.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(s.authors, func(a model.Author, _ int) *model.Author { return copyAuthor(a) }), nil
}

// Len returns the number of books.
func (s *Store) Len(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books), nil
}

// AuthorByID returns the first author with the given id.
func (s *Store) AuthorByID(ctx context.Context, id string) (*model.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.findAuthor(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrAuthorNotFound, id)
	}
	return copyAuthor(a), nil
}

// BooksByAuthorID returns the books whose authorId equals id. The result is
// empty, not nil, when the author wrote nothing.
func (s *Store) BooksByAuthorID(ctx context.Context, id string) ([]*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.booksBy(id), nil
}

// AuthorsByIDs looks up several authors at once. The result is positional:
// entry i is nil when ids[i] matches no author.
func (s *Store) AuthorsByIDs(ctx context.Context, ids []string) ([]*model.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(ids, func(id string, _ int) *model.Author {
		a, ok := s.findAuthor(id)
		if !ok {
			return nil
		}
		return copyAuthor(a)
	}), nil
}

// BooksByAuthorIDs returns, for every id, the books written by that author.
func (s *Store) BooksByAuthorIDs(ctx context.Context, ids []string) ([][]*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Map(ids, func(id string, _ int) []*model.Book { return s.booksBy(id) }), nil
}

// AddBook appends a new book. A non-nil AuthorID must name an existing
// author; the id is always generated by the store.
func (s *Store) AddBook(ctx context.Context, in model.NewBook) (*model.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.AuthorID != nil {
		if _, ok := s.findAuthor(*in.AuthorID); !ok {
			return nil, fmt.Errorf("%w: %q", ErrAuthorNotFound, *in.AuthorID)
		}
	}

	id := s.newID()
	if _, taken := s.bookIDs[id]; taken {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}

	b := model.Book{
		ID:            id,
		Title:         in.Title,
		PublishedYear: in.PublishedYear,
		AuthorID:      in.AuthorID,
	}
	s.books = append(s.books, b)
	s.bookIDs[id] = struct{}{}
	return copyBook(b), nil
}

// findAuthor must be called with s.mu held.
func (s *Store) findAuthor(id string) (model.Author, bool) {
	return lo.Find(s.authors, func(a model.Author) bool { return a.ID == id })
}

// booksBy must be called with s.mu held.
func (s *Store) booksBy(authorID string) []*model.Book {
	out := make([]*model.Book, 0)
	for _, b := range s.books {
		if b.AuthorID != nil && *b.AuthorID == authorID {
			out = append(out, copyBook(b))
		}
	}
	return out
}

func copyBook(b model.Book) *model.Book {
	return &model.Book{
		ID:            b.ID,
		Title:         clone(b.Title),
		PublishedYear: clone(b.PublishedYear),
		AuthorID:      clone(b.AuthorID),
	}
}

func copyAuthor(a model.Author) *model.Author {
	return &model.Author{ID: a.ID, Name: clone(a.Name)}
}

func clone[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
