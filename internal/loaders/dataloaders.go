package loaders

import (
	"context"
	"net/http"
	"time"

	"github.com/vikstrous/dataloadgen"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/model"
)

// DefaultWait is how long a loader collects keys before fetching a batch.
const DefaultWait = 2 * time.Millisecond

// Source is the batch side of the dataset.
type Source interface {
	AuthorsByIDs(ctx context.Context, ids []string) ([]*model.Author, error)
	BooksByAuthorIDs(ctx context.Context, ids []string) ([][]*model.Book, error)
}

// Loaders batches the relation lookups of one query request. Results are
// cached for the lifetime of the request. Mutation selections bypass the
// loaders, so each addBook result reflects the writes made up to it.
type Loaders struct {
	AuthorByID      *dataloadgen.Loader[string, *model.Author]
	BooksByAuthorID *dataloadgen.Loader[string, []*model.Book]
}

// NewLoaders creates request loaders backed by src.
func NewLoaders(src Source, wait time.Duration) *Loaders {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Loaders{
		AuthorByID:      dataloadgen.NewLoader(batch(src.AuthorsByIDs), dataloadgen.WithWait(wait)),
		BooksByAuthorID: dataloadgen.NewLoader(batch(src.BooksByAuthorIDs), dataloadgen.WithWait(wait)),
	}
}

// batch adapts a positional store lookup to the dataloadgen fetch signature.
// A failed lookup fails every key of the batch.
func batch[V any](fetch func(ctx context.Context, ids []string) ([]V, error)) func(context.Context, []string) ([]V, []error) {
	return func(ctx context.Context, ids []string) ([]V, []error) {
		values, err := fetch(ctx, ids)
		if err != nil {
			errs := make([]error, len(ids))
			for i := range errs {
				errs[i] = err
			}
			return make([]V, len(ids)), errs
		}
		return values, nil
	}
}

// Context key for the loaders
type contextKey string

// LoaderKey is the key for the loaders in the context
const LoaderKey = contextKey("bookshelfLoaders")

// WithLoaders returns a copy of ctx carrying l.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, LoaderKey, l)
}

// Middleware adds fresh loaders to the context of every request.
func Middleware(src Source, wait time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(src, wait))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// For returns the loaders from the context, or nil outside a request.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(LoaderKey).(*Loaders)
	return l
}
