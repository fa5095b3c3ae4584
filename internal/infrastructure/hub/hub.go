package hub

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/metrics"
)

// Hub owns the subscription registry and is the single component that
// attaches, detaches, and fans events out to connections.
//
// Fan-out is sequential over a registry snapshot: a send failure marks
// the connection for eviction but never stops delivery to the rest,
// and because each connection serializes its own writes, a client sees
// its events in broadcast order.
type Hub struct {
	registry *Registry
	logger   logger.Logger
	metrics  *metrics.Metrics
	clock    clockwork.Clock
}

func New(log logger.Logger, m *metrics.Metrics, clock clockwork.Clock) *Hub {
	return &Hub{
		registry: NewRegistry(),
		logger:   log.WithField("component", "hub"),
		metrics:  m,
		clock:    clock,
	}
}

// Clock exposes the hub clock so transports share one time source.
func (h *Hub) Clock() clockwork.Clock { return h.clock }

// Attach registers a connection with an empty subscription set.
func (h *Hub) Attach(conn Connection) {
	h.registry.Register(conn)
	h.metrics.ActiveConnections.Inc()
	h.logger.Infof("connection %s attached", conn.ID())
}

// AttachWebSocket registers the connection and starts its pumps. The
// pumps are not started earlier so a connection is never live before
// the registry knows about it.
func (h *Hub) AttachWebSocket(conn *WebSocketConnection) {
	h.Attach(conn)
	go conn.writePump()
	go conn.readPump(h)
}

// Disconnect is the single cleanup path. Every code path that detects
// a dead connection funnels through here: explicit disconnect, failed
// send, read error. Idempotent.
func (h *Hub) Disconnect(conn Connection) {
	removed, edges := h.registry.RemoveConnection(conn)
	conn.Close()

	if removed {
		h.metrics.ActiveConnections.Dec()
		h.metrics.ActiveSubscriptions.Sub(float64(edges))
		h.logger.Infof("connection %s detached (%d subscriptions dropped)", conn.ID(), edges)
	}
}

// Subscribe adds the connection to a poll's subscriber set.
func (h *Hub) Subscribe(conn Connection, pollID int64) {
	if h.registry.Subscribe(conn, pollID) {
		h.metrics.ActiveSubscriptions.Inc()
		h.logger.Debugf("connection %s subscribed to poll %d", conn.ID(), pollID)
	}
}

// Unsubscribe removes the connection from a poll's subscriber set.
func (h *Hub) Unsubscribe(conn Connection, pollID int64) {
	if h.registry.Unsubscribe(conn, pollID) {
		h.metrics.ActiveSubscriptions.Dec()
		h.logger.Debugf("connection %s unsubscribed from poll %d", conn.ID(), pollID)
	}
}

// BroadcastToTopic delivers the event to every current subscriber of
// the poll. Best effort, at most one attempt per connection.
func (h *Hub) BroadcastToTopic(ctx context.Context, pollID int64, event *Event) {
	h.metrics.EventsBroadcast.WithLabelValues(event.Type).Inc()
	h.fanOut(ctx, h.registry.SubscribersOf(pollID), event)
}

// BroadcastToAll delivers the event to every connected client
// regardless of subscriptions.
func (h *Hub) BroadcastToAll(ctx context.Context, event *Event) {
	h.metrics.EventsBroadcast.WithLabelValues(event.Type).Inc()
	h.fanOut(ctx, h.registry.AllConnections(), event)
}

// SendDirect unicasts to one connection, with the same
// failure-is-eviction policy as broadcasts.
func (h *Hub) SendDirect(ctx context.Context, conn Connection, event *Event) {
	if err := conn.Send(ctx, event); err != nil {
		h.logger.Warnf("direct send to %s failed, evicting: %v", conn.ID(), err)
		h.metrics.SendFailures.Inc()
		h.Disconnect(conn)
	}
}

func (h *Hub) fanOut(ctx context.Context, conns []Connection, event *Event) {
	var evicted []Connection
	for _, conn := range conns {
		if err := conn.Send(ctx, event); err != nil {
			h.logger.Warnf("send to %s failed, evicting: %v", conn.ID(), err)
			h.metrics.SendFailures.Inc()
			evicted = append(evicted, conn)
		}
	}

	// Eviction happens after the loop so one bad connection cannot
	// mutate the registry mid-delivery.
	for _, conn := range evicted {
		h.Disconnect(conn)
	}
}

func (h *Hub) ConnectionCount() int   { return h.registry.ConnectionCount() }
func (h *Hub) SubscriptionCount() int { return h.registry.SubscriptionCount() }

// Shutdown detaches and closes every connection.
func (h *Hub) Shutdown() {
	for _, conn := range h.registry.AllConnections() {
		h.Disconnect(conn)
	}
	h.logger.Info("hub shut down")
}

// Domain boundary: the request layer calls these after its write has
// committed. A broadcast never fails the domain operation.

func (h *Hub) NotifyVoteUpdate(ctx context.Context, pollID int64, update domain.VoteUpdate) {
	h.BroadcastToTopic(ctx, pollID, VoteUpdateEvent(pollID, update))
}

func (h *Hub) NotifyLikeUpdate(ctx context.Context, pollID int64, update domain.LikeUpdate) {
	h.BroadcastToTopic(ctx, pollID, LikeUpdateEvent(pollID, update))
}

func (h *Hub) NotifyPollCreated(ctx context.Context, record domain.PollRecord) {
	h.BroadcastToAll(ctx, PollCreatedEvent(record))
}

func (h *Hub) NotifyPollUpdated(ctx context.Context, pollID int64, record domain.PollRecord) {
	h.BroadcastToAll(ctx, PollUpdatedEvent(pollID, record))
}

func (h *Hub) NotifyPollDeleted(ctx context.Context, pollID int64) {
	h.BroadcastToAll(ctx, PollDeletedEvent(pollID))
}
