package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	jsoniter "github.com/json-iterator/go"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"

	"github.com/shubhamkhatik/graphql-bookshelf/internal/loaders"
)

const wsProtocol = "graphql-transport-ws"

// graphql-transport-ws message types.
const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgPing           = "ping"
	msgPong           = "pong"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
)

// graphql-transport-ws close codes.
const (
	closeBadRequest          = 4400
	closeUnauthorized        = 4401
	closeNotAcceptable       = 4406
	closeInitTimeout         = 4408
	closeSubscriberExists    = 4409
	closeTooManyInitRequests = 4429
)

type wsMessage struct {
	ID      string              `json:"id,omitempty"`
	Type    string              `json:"type"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

type wsOutgoing struct {
	ID      string      `json:"id,omitempty"`
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type wsConnection struct {
	h      *Handler
	conn   *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	writeMu sync.Mutex

	mu          sync.Mutex
	initialised bool
	ops         map[string]context.CancelFunc
}

func (h *Handler) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	// Operations on a long-lived connection resolve relations without the
	// request loaders, whose cache would otherwise outlive new mutations.
	ctx, cancel := context.WithCancel(loaders.WithLoaders(r.Context(), nil))
	c := &wsConnection{
		h:      h,
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		logger: h.logger.With(zap.String("remote", r.RemoteAddr)),
		ops:    make(map[string]context.CancelFunc),
	}
	defer c.cancel()

	if conn.Subprotocol() != wsProtocol {
		c.close(closeNotAcceptable, "Subprotocol not acceptable")
		return
	}
	conn.SetReadLimit(h.maxBodySize)

	timer := time.AfterFunc(h.initTimeout, func() {
		c.mu.Lock()
		initialised := c.initialised
		c.mu.Unlock()
		if !initialised {
			c.close(closeInitTimeout, "Connection initialisation timeout")
		}
	})
	defer timer.Stop()

	c.logger.Debug("websocket connected")
	c.run()
	c.logger.Debug("websocket disconnected")
}

func (c *wsConnection) run() {
	defer c.conn.Close()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.close(closeBadRequest, "Invalid message received")
			return
		}
		if !c.handle(&msg) {
			return
		}
	}
}

// handle processes one client message and reports whether the connection
// stays open.
func (c *wsConnection) handle(msg *wsMessage) bool {
	switch msg.Type {
	case msgConnectionInit:
		c.mu.Lock()
		again := c.initialised
		c.initialised = true
		c.mu.Unlock()
		if again {
			c.close(closeTooManyInitRequests, "Too many initialisation requests")
			return false
		}
		c.send(wsOutgoing{Type: msgConnectionAck})

	case msgPing:
		c.send(wsOutgoing{Type: msgPong})

	case msgPong:

	case msgSubscribe:
		return c.subscribe(msg)

	case msgComplete:
		c.mu.Lock()
		cancel, ok := c.ops[msg.ID]
		delete(c.ops, msg.ID)
		c.mu.Unlock()
		if ok {
			cancel()
		}

	default:
		c.close(closeBadRequest, fmt.Sprintf("Invalid message type %q", msg.Type))
		return false
	}
	return true
}

func (c *wsConnection) subscribe(msg *wsMessage) bool {
	if msg.ID == "" {
		c.close(closeBadRequest, "Subscribe message requires an id")
		return false
	}

	var req Request
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		c.close(closeBadRequest, "Invalid subscribe payload")
		return false
	}

	c.mu.Lock()
	if !c.initialised {
		c.mu.Unlock()
		c.close(closeUnauthorized, "Unauthorized")
		return false
	}
	if _, exists := c.ops[msg.ID]; exists {
		c.mu.Unlock()
		c.close(closeSubscriberExists, fmt.Sprintf("Subscriber for %s already exists", msg.ID))
		return false
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.ops[msg.ID] = cancel
	c.mu.Unlock()

	go c.execute(ctx, msg.ID, &req)
	return true
}

func (c *wsConnection) execute(ctx context.Context, id string, req *Request) {
	defer c.finish(id)

	query, qerr := c.h.resolveQuery(req)
	if qerr != nil {
		c.send(wsOutgoing{ID: id, Type: msgError, Payload: []gqlerrors.FormattedError{*qerr}})
		return
	}
	params := c.h.params(ctx, query, req)

	if operationKind(query, req.OperationName) != ast.Subscription {
		result := graphql.Do(params)
		if result.Data == nil && result.HasErrors() {
			c.send(wsOutgoing{ID: id, Type: msgError, Payload: result.Errors})
			return
		}
		c.send(wsOutgoing{ID: id, Type: msgNext, Payload: result})
		c.send(wsOutgoing{ID: id, Type: msgComplete})
		return
	}

	first := true
	for result := range graphql.Subscribe(params) {
		if first && result.Data == nil && result.HasErrors() {
			c.send(wsOutgoing{ID: id, Type: msgError, Payload: result.Errors})
			return
		}
		first = false
		c.send(wsOutgoing{ID: id, Type: msgNext, Payload: result})
	}
	if ctx.Err() == nil {
		c.send(wsOutgoing{ID: id, Type: msgComplete})
	}
}

func (c *wsConnection) finish(id string) {
	c.mu.Lock()
	cancel, ok := c.ops[id]
	delete(c.ops, id)
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

func (c *wsConnection) send(msg wsOutgoing) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Warn("failed to encode websocket message", zap.String("type", msg.Type), zap.Error(err))
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Debug("websocket write failed", zap.Error(err))
	}
}

func (c *wsConnection) close(code int, reason string) {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason), time.Now().Add(time.Second))
	c.writeMu.Unlock()
	c.cancel()
	_ = c.conn.Close()
}
