package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"go.uber.org/zap"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/cache"
)

// Handler serves GraphQL over HTTP GET and POST and over websocket
// connections using the graphql-transport-ws protocol.
type Handler struct {
	schema      graphql.Schema
	queries     *cache.Queries
	logger      *zap.Logger
	maxBodySize int64
	initTimeout time.Duration
	upgrader    websocket.Upgrader
}

// Option configures a Handler.
type Option func(h *Handler)

// WithPersistedQueries enables automatic persisted queries backed by q.
func WithPersistedQueries(q *cache.Queries) Option {
	return func(h *Handler) {
		h.queries = q
	}
}

// WithLogger sets the handler logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		h.logger = l
	}
}

// MaxBodySize sets the maximum number of bytes read from a POST body.
func MaxBodySize(n int64) Option {
	return func(h *Handler) {
		h.maxBodySize = n
	}
}

// InitTimeout bounds the wait for connection_init on a new websocket.
func InitTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.initTimeout = d
	}
}

// NewHandler creates a handler executing requests against schema.
func NewHandler(schema graphql.Schema, opts ...Option) *Handler {
	h := &Handler{
		schema:      schema,
		logger:      zap.NewNop(),
		maxBodySize: DefaultMaxBodySize,
		initTimeout: 10 * time.Second,
		upgrader: websocket.Upgrader{
			Subprotocols: []string{wsProtocol},
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		h.serveWebsocket(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet, http.MethodPost:
	case http.MethodOptions:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		h.writeErrors(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := parseRequest(r, h.maxBodySize)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, errBodyTooLarge):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, errUnsupportedContent):
			status = http.StatusUnsupportedMediaType
		}
		h.writeErrors(w, status, err.Error())
		return
	}

	query, qerr := h.resolveQuery(req)
	if qerr != nil {
		h.writeJSON(w, http.StatusOK, &graphql.Result{Errors: []gqlerrors.FormattedError{*qerr}})
		return
	}
	if query == "" {
		h.writeErrors(w, http.StatusBadRequest, "no query provided")
		return
	}

	switch operationKind(query, req.OperationName) {
	case ast.Subscription:
		h.writeErrors(w, http.StatusBadRequest, "subscriptions are only served over websocket")
		return
	case ast.Mutation:
		if r.Method == http.MethodGet {
			h.writeErrors(w, http.StatusNotAcceptable, "GET requests only allow query operations")
			return
		}
	}

	result := h.execute(r.Context(), query, req)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) execute(ctx context.Context, query string, req *Request) *graphql.Result {
	start := time.Now()
	result := graphql.Do(h.params(ctx, query, req))
	h.logger.Debug("graphql request",
		zap.String("operation", req.OperationName),
		zap.Int("errors", len(result.Errors)),
		zap.Duration("took", time.Since(start)))
	return result
}

func (h *Handler) params(ctx context.Context, query string, req *Request) graphql.Params {
	return graphql.Params{
		Schema:         h.schema,
		RequestString:  query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	}
}

// resolveQuery applies automatic persisted queries: a hash alone is looked
// up, a hash with a query is verified and registered.
func (h *Handler) resolveQuery(req *Request) (string, *gqlerrors.FormattedError) {
	pq := req.Extensions.PersistedQuery
	if pq == nil {
		return req.Query, nil
	}
	if h.queries == nil {
		return "", gqlError("PersistedQueryNotSupported", "PERSISTED_QUERY_NOT_SUPPORTED")
	}
	if pq.Version != 1 {
		return "", gqlError("unsupported persisted query version", "UNSUPPORTED_PERSISTED_QUERY_VERSION")
	}

	if req.Query == "" {
		query, ok := h.queries.Get(pq.Hash)
		if !ok {
			return "", gqlError("PersistedQueryNotFound", "PERSISTED_QUERY_NOT_FOUND")
		}
		return query, nil
	}

	if cache.Hash(req.Query) != pq.Hash {
		return "", gqlError("provided sha does not match query", "PERSISTED_QUERY_HASH_MISMATCH")
	}
	h.queries.Add(pq.Hash, req.Query)
	return req.Query, nil
}

// operationKind reports the type of the operation that will run, or "" when
// the document does not parse or the operation cannot be selected. Those
// cases are left to the executor, which reports them properly.
func operationKind(query, operationName string) ast.Operation {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return ""
	}
	op := doc.Operations.ForName(operationName)
	if op == nil {
		return ""
	}
	return op.Operation
}

func gqlError(message, code string) *gqlerrors.FormattedError {
	return &gqlerrors.FormattedError{
		Message:    message,
		Extensions: map[string]interface{}{"code": code},
	}
}

func (h *Handler) writeErrors(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, &graphql.Result{
		Errors: []gqlerrors.FormattedError{{Message: message}},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}
