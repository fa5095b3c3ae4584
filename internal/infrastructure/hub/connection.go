package hub

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
)

var (
	// ErrConnectionClosed is returned by Send on a closed connection.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrSendBufferFull is returned when a connection cannot accept the
	// event without blocking. A full buffer means the consumer is too
	// slow and is treated like a dead connection.
	ErrSendBufferFull = errors.New("send buffer full")
)

// Connection is one client's live channel. A failed Send is evidence
// the connection is dead; the hub evicts it through Disconnect.
type Connection interface {
	ID() string
	Send(ctx context.Context, event *Event) error
	Close() error
	IsClosed() bool
	Context() context.Context
}

// WebSocketOptions tunes per-connection buffering and deadlines.
type WebSocketOptions struct {
	SendBuffer   int
	WriteTimeout time.Duration
	PongTimeout  time.Duration
}

func DefaultWebSocketOptions() WebSocketOptions {
	return WebSocketOptions{
		SendBuffer:   256,
		WriteTimeout: 10 * time.Second,
		PongTimeout:  60 * time.Second,
	}
}

// WebSocketConnection owns one websocket. All writes are funneled
// through a single writer goroutine, so events reach the client in the
// order they were handed to Send.
type WebSocketConnection struct {
	id   string
	conn *websocket.Conn

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex

	logger logger.Logger
	clock  clockwork.Clock

	send chan *Event

	writeTimeout time.Duration
	pongTimeout  time.Duration
}

// NewWebSocketConnection wraps an upgraded websocket. The read/write
// pumps are started by Hub.AttachWebSocket, not here, so a connection
// is never live before it is registered.
func NewWebSocketConnection(
	conn *websocket.Conn,
	log logger.Logger,
	clock clockwork.Clock,
	opts WebSocketOptions,
) *WebSocketConnection {
	ctx, cancel := context.WithCancel(context.Background())

	id := fmt.Sprintf("ws-%s", uuid.NewString())
	return &WebSocketConnection{
		id:           id,
		conn:         conn,
		ctx:          ctx,
		cancel:       cancel,
		logger:       log.WithField("connection_id", id),
		clock:        clock,
		send:         make(chan *Event, opts.SendBuffer),
		writeTimeout: opts.WriteTimeout,
		pongTimeout:  opts.PongTimeout,
	}
}

func (c *WebSocketConnection) ID() string { return c.id }

// Send enqueues the event without blocking. A closed connection or a
// full buffer is a send failure.
func (c *WebSocketConnection) Send(ctx context.Context, event *Event) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return ErrConnectionClosed
	case c.send <- event:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close is idempotent. It cancels the connection context, which
// unblocks both pumps and the handler waiting on Context().
func (c *WebSocketConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()

	c.conn.SetWriteDeadline(c.clock.Now().Add(c.writeTimeout))
	c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	c.conn.Close()

	c.logger.Debug("websocket connection closed")
	return nil
}

func (c *WebSocketConnection) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

func (c *WebSocketConnection) Context() context.Context { return c.ctx }

// writePump drains the send channel onto the wire and keeps the
// connection alive with pings.
func (c *WebSocketConnection) writePump() {
	pingPeriod := c.pongTimeout * 9 / 10
	ticker := c.clock.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event := <-c.send:
			c.conn.SetWriteDeadline(c.clock.Now().Add(c.writeTimeout))
			if err := c.conn.WriteJSON(event); err != nil {
				c.logger.Debugf("write failed: %v", err)
				return
			}

		case <-ticker.Chan():
			c.conn.SetWriteDeadline(c.clock.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debugf("ping failed: %v", err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// readPump feeds inbound control messages into the hub. When the read
// side fails for any reason the pump exits through the hub's single
// cleanup path.
func (c *WebSocketConnection) readPump(h *Hub) {
	defer h.Disconnect(c)

	c.conn.SetReadLimit(maxInboundMessageSize)
	c.conn.SetReadDeadline(c.clock.Now().Add(c.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(c.clock.Now().Add(c.pongTimeout))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseAbnormalClosure,
			) {
				c.logger.Warnf("websocket read error: %v", err)
			}
			return
		}

		h.HandleMessage(c.ctx, c, data)
	}
}

// Inbound traffic is control messages only; anything larger is not a
// protocol message.
const maxInboundMessageSize = 1024

// SSEConnection is the read-only transport: clients receive events but
// cannot send control messages after the initial request. Writes are
// serialized by a mutex since broadcasts and acks may race.
type SSEConnection struct {
	id     string
	writer http.ResponseWriter
	flush  http.Flusher

	ctx    context.Context
	cancel context.CancelFunc

	closed   bool
	closedMu sync.RWMutex
	writeMu  sync.Mutex

	logger logger.Logger
}

// NewSSEConnection prepares an SSE stream on the response writer. It
// fails when the writer cannot stream.
func NewSSEConnection(ctx context.Context, w http.ResponseWriter, log logger.Logger) (*SSEConnection, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	cctx, cancel := context.WithCancel(ctx)
	id := fmt.Sprintf("sse-%s", uuid.NewString())
	return &SSEConnection{
		id:     id,
		writer: w,
		flush:  flusher,
		ctx:    cctx,
		cancel: cancel,
		logger: log.WithField("connection_id", id),
	}, nil
}

func (c *SSEConnection) ID() string { return c.id }

func (c *SSEConnection) Send(ctx context.Context, event *Event) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	err := sse.Encode(c.writer, sse.Event{
		Event: event.Type,
		Data:  event,
	})
	if err != nil {
		return fmt.Errorf("failed to encode sse event: %w", err)
	}
	c.flush.Flush()
	return nil
}

func (c *SSEConnection) Close() error {
	c.closedMu.Lock()
	defer c.closedMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()

	c.logger.Debug("sse connection closed")
	return nil
}

func (c *SSEConnection) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

func (c *SSEConnection) Context() context.Context { return c.ctx }
