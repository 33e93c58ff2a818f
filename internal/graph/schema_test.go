package graph

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/graphql-go/graphql"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/events"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/loaders"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/resolvers"
	"github.com/shubhamkhatik/graphql-bookshelf/internal/store"
)

type fixture struct {
	schema graphql.Schema
	store  *store.Store
	broker *events.Broker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	var n atomic.Int64
	s := store.NewSeeded(store.WithIDGenerator(func() string {
		return fmt.Sprintf("b-%d", n.Add(1))
	}))
	broker := events.NewBroker(8, zap.NewNop())
	set := resolvers.NewSet(s, broker, broker, zap.NewNop())
	schema, err := NewExecutableSchema(NewResolver(set))
	require.NoError(t, err)
	return &fixture{schema: schema, store: s, broker: broker}
}

// contexts runs a test with and without request loaders.
func contexts(f *fixture) map[string]func() context.Context {
	return map[string]func() context.Context{
		"direct": context.Background,
		"loaders": func() context.Context {
			return loaders.WithLoaders(context.Background(), loaders.NewLoaders(f.store, loaders.DefaultWait))
		},
	}
}

func (f *fixture) do(ctx context.Context, query string, vars map[string]interface{}) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         f.schema,
		RequestString:  query,
		VariableValues: vars,
		Context:        ctx,
	})
}

func dataJSON(t *testing.T, r *graphql.Result) string {
	t.Helper()
	require.Empty(t, r.Errors)
	b, err := jsoniter.Marshal(r.Data)
	require.NoError(t, err)
	return string(b)
}

func TestBooksResolveTheirAuthor(t *testing.T) {
	f := newFixture(t)
	for name, ctx := range contexts(f) {
		t.Run(name, func(t *testing.T) {
			r := f.do(ctx(), `{ books { id authorId author { id } } }`, nil)
			assert.JSONEq(t, `{"books":[
				{"id":"101","authorId":"1","author":{"id":"1"}},
				{"id":"102","authorId":"1","author":{"id":"1"}},
				{"id":"103","authorId":"2","author":{"id":"2"}}
			]}`, dataJSON(t, r))
		})
	}
}

func TestAuthorsResolveTheirBooks(t *testing.T) {
	f := newFixture(t)
	for name, ctx := range contexts(f) {
		t.Run(name, func(t *testing.T) {
			r := f.do(ctx(), `{ authors { id name bookIds books { id title publishedYear } } }`, nil)
			assert.JSONEq(t, `{"authors":[
				{"id":"1","name":"shubham khatik","bookIds":["101","102"],"books":[
					{"id":"101","title":"System Design","publishedYear":2000},
					{"id":"102","title":"frontend","publishedYear":2010}]},
				{"id":"2","name":"Akshay gupta","bookIds":["103"],"books":[
					{"id":"103","title":"ramayana","publishedYear":2020}]}
			]}`, dataJSON(t, r))
		})
	}
}

// mutationContexts is contexts with a fresh fixture per run, since every run
// appends to the store.
func mutationContexts(t *testing.T, run func(t *testing.T, f *fixture, ctx func() context.Context)) {
	for _, name := range []string{"direct", "loaders"} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			run(t, f, contexts(f)[name])
		})
	}
}

func TestAddBook(t *testing.T) {
	mutationContexts(t, func(t *testing.T, f *fixture, ctx func() context.Context) {
		r := f.do(ctx(), `mutation {
			addBook(title: "New", publishedYear: 2023, authorId: "2") {
				id title publishedYear authorId author { name bookIds }
			}
		}`, nil)
		assert.JSONEq(t, `{"addBook":{
			"id":"b-1","title":"New","publishedYear":2023,"authorId":"2",
			"author":{"name":"Akshay gupta","bookIds":["103","b-1"]}
		}}`, dataJSON(t, r))

		r = f.do(ctx(), `{ books { id } }`, nil)
		assert.JSONEq(t, `{"books":[{"id":"101"},{"id":"102"},{"id":"103"},{"id":"b-1"}]}`, dataJSON(t, r))

		r = f.do(ctx(), `{ authors { id bookIds } }`, nil)
		assert.JSONEq(t, `{"authors":[{"id":"1","bookIds":["101","102"]},{"id":"2","bookIds":["103","b-1"]}]}`, dataJSON(t, r))
	})
}

func TestAddBookSelectionsSeePriorWritesOnly(t *testing.T) {
	mutationContexts(t, func(t *testing.T, f *fixture, ctx func() context.Context) {
		r := f.do(ctx(), `mutation {
			a: addBook(title: "A", authorId: "2") { id author { bookIds books { id } } }
			b: addBook(title: "B", authorId: "2") { id author { bookIds books { id } } }
		}`, nil)
		assert.JSONEq(t, `{
			"a":{"id":"b-1","author":{"bookIds":["103","b-1"],"books":[{"id":"103"},{"id":"b-1"}]}},
			"b":{"id":"b-2","author":{"bookIds":["103","b-1","b-2"],"books":[{"id":"103"},{"id":"b-1"},{"id":"b-2"}]}}
		}`, dataJSON(t, r))
	})
}

func TestAddBookWithVariables(t *testing.T) {
	mutationContexts(t, func(t *testing.T, f *fixture, ctx func() context.Context) {
		// JSON decoded variables carry numbers as float64.
		r := f.do(ctx(), `mutation Add($title: String, $year: Int, $author: String) {
			addBook(title: $title, publishedYear: $year, authorId: $author) { title publishedYear authorId }
		}`, map[string]interface{}{"title": "Vars", "year": float64(1999), "author": "1"})
		assert.JSONEq(t, `{"addBook":{"title":"Vars","publishedYear":1999,"authorId":"1"}}`, dataJSON(t, r))
	})
}

func TestAddBookWithoutArguments(t *testing.T) {
	mutationContexts(t, func(t *testing.T, f *fixture, ctx func() context.Context) {
		r := f.do(ctx(), `mutation { addBook { id title publishedYear authorId author { id } } }`, nil)
		assert.JSONEq(t, `{"addBook":{"id":"b-1","title":null,"publishedYear":null,"authorId":null,"author":null}}`, dataJSON(t, r))
	})
}

func TestAddBookUnknownAuthor(t *testing.T) {
	mutationContexts(t, func(t *testing.T, f *fixture, ctx func() context.Context) {
		r := f.do(ctx(), `mutation { addBook(title: "Orphan", authorId: "404") { id } }`, nil)
		require.Len(t, r.Errors, 1)
		assert.Equal(t, `author "404" not found`, r.Errors[0].Message)
		assert.Equal(t, "NOT_FOUND", r.Errors[0].Extensions["code"])

		n, err := f.store.Len(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}

func TestValidationErrors(t *testing.T) {
	f := newFixture(t)

	for name, query := range map[string]string{
		"unknown field":    `{ books { isbn } }`,
		"wrong arg type":   `mutation { addBook(publishedYear: "soon") { id } }`,
		"unknown argument": `{ books(first: 1) { id } }`,
		"syntax":           `{ books { id `,
	} {
		t.Run(name, func(t *testing.T) {
			r := f.do(context.Background(), query, nil)
			assert.NotEmpty(t, r.Errors)
			assert.Nil(t, r.Data)
		})
	}
}

func TestIntrospection(t *testing.T) {
	f := newFixture(t)

	r := f.do(context.Background(), `{
		__type(name: "Mutation") { fields { name type { kind ofType { name } } } }
	}`, nil)
	assert.JSONEq(t, `{"__type":{"fields":[
		{"name":"addBook","type":{"kind":"NON_NULL","ofType":{"name":"Book"}}}
	]}}`, dataJSON(t, r))

	r = f.do(context.Background(), `{ __schema { subscriptionType { name } } }`, nil)
	assert.JSONEq(t, `{"__schema":{"subscriptionType":{"name":"Subscription"}}}`, dataJSON(t, r))
}

func TestBookAddedSubscription(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := graphql.Subscribe(graphql.Params{
		Schema:        f.schema,
		RequestString: `subscription { bookAdded { id title author { name } } }`,
		Context:       ctx,
	})
	require.Eventually(t, func() bool { return f.broker.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	dataJSON(t, f.do(context.Background(), `mutation { addBook(title: "Live", authorId: "1") { id } }`, nil))

	select {
	case r := <-results:
		assert.JSONEq(t, `{"bookAdded":{"id":"b-1","title":"Live","author":{"name":"shubham khatik"}}}`, dataJSON(t, r))
	case <-time.After(2 * time.Second):
		t.Fatal("no subscription result")
	}
}

func TestBuildSchemaRejectsUnknownBinding(t *testing.T) {
	f := newFixture(t)
	fields := FieldMap{"Book.auther": {Resolve: func(graphql.ResolveParams) (interface{}, error) { return nil, nil }}}
	for k, v := range NewResolver(resolvers.NewSet(f.store, nil, nil, zap.NewNop())).Fields() {
		fields[k] = v
	}

	_, err := BuildSchema(SDL, fields)
	assert.EqualError(t, err, `resolver "Book.auther" does not match any schema field`)
}

func TestBuildSchemaRequiresSubscribe(t *testing.T) {
	_, err := BuildSchema(`
		type Query { ping: String }
		type Subscription { ticks: Int }
	`, FieldMap{})
	assert.EqualError(t, err, `subscription field "Subscription.ticks" has no subscribe function`)
}

func TestBuildSchemaRejectsUnsupportedKinds(t *testing.T) {
	_, err := BuildSchema(`
		enum Color { RED }
		type Query { color: Color }
	`, FieldMap{})
	assert.EqualError(t, err, `type "Color": enum types are not supported`)
}

func TestBuildSchemaRejectsInvalidSDL(t *testing.T) {
	_, err := BuildSchema(`type Query { books: [Missing] }`, FieldMap{})
	assert.Error(t, err)
}

func TestBuildSchemaDefaultsAndDeprecation(t *testing.T) {
	schema, err := BuildSchema(`
		type Query {
			echo(word: String = "hi"): String
			old: String @deprecated(reason: "use echo")
		}
	`, FieldMap{
		"Query.echo": {Resolve: func(p graphql.ResolveParams) (interface{}, error) { return p.Args["word"], nil }},
	})
	require.NoError(t, err)

	r := graphql.Do(graphql.Params{Schema: schema, RequestString: `{ echo }`})
	assert.JSONEq(t, `{"echo":"hi"}`, dataJSON(t, r))

	assert.Equal(t, "use echo", schema.QueryType().Fields()["old"].DeprecationReason)
}
