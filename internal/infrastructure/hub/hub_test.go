package hub

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/logger"
	"github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/infrastructure/metrics"
)

func newTestHub() *Hub {
	return New(logger.NewNop(), metrics.New(prometheus.NewRegistry()), clockwork.NewFakeClock())
}

type mockConnection struct {
	id        string
	ctx       context.Context
	closed    bool
	failSends bool
	received  []*Event
}

func (m *mockConnection) ID() string { return m.id }

func (m *mockConnection) Send(ctx context.Context, event *Event) error {
	if m.failSends {
		return errors.New("send failed")
	}
	m.received = append(m.received, event)
	return nil
}

func (m *mockConnection) Close() error             { m.closed = true; return nil }
func (m *mockConnection) IsClosed() bool           { return m.closed }
func (m *mockConnection) Context() context.Context { return m.ctx }

func (m *mockConnection) eventTypes() []string {
	types := make([]string, 0, len(m.received))
	for _, ev := range m.received {
		types = append(types, ev.Type)
	}
	return types
}

func TestHub_BroadcastToTopicReachesOnlySubscribers(t *testing.T) {
	h := newTestHub()
	ctx := context.Background()

	a := newMockConnection("a")
	b := newMockConnection("b")
	h.Attach(a)
	h.Attach(b)
	h.Subscribe(a, 42)

	h.NotifyVoteUpdate(ctx, 42, domain.VoteUpdate{TotalVotes: 1, UserID: 9})

	require.Len(t, a.received, 1)
	assert.Empty(t, b.received)
	assert.Equal(t, EventVoteUpdate, a.received[0].Type)
	assert.Equal(t, int64(42), a.received[0].PollID)

	// B subscribes late and the next update reaches both.
	h.Subscribe(b, 42)
	h.NotifyVoteUpdate(ctx, 42, domain.VoteUpdate{TotalVotes: 2, UserID: 9})

	assert.Len(t, a.received, 2)
	assert.Len(t, b.received, 1)
}

func TestHub_SendFailureEvictsOnlyFailingConnection(t *testing.T) {
	h := newTestHub()
	ctx := context.Background()

	good1 := newMockConnection("good1")
	bad := newMockConnection("bad")
	bad.failSends = true
	good2 := newMockConnection("good2")

	for _, c := range []*mockConnection{good1, bad, good2} {
		h.Attach(c)
		h.Subscribe(c, 7)
	}

	h.BroadcastToTopic(ctx, 7, VoteUpdateEvent(7, domain.VoteUpdate{TotalVotes: 1}))

	assert.Len(t, good1.received, 1)
	assert.Len(t, good2.received, 1)
	assert.True(t, bad.closed, "failing connection must be closed")

	subscribers := h.registry.SubscribersOf(7)
	assert.Len(t, subscribers, 2)
	assert.NotContains(t, subscribers, Connection(bad))
	assert.Equal(t, 2, h.ConnectionCount())
}

func TestHub_DisconnectRemovesAllSubscriptions(t *testing.T) {
	h := newTestHub()
	ctx := context.Background()

	conn := newMockConnection("c1")
	h.Attach(conn)
	h.Subscribe(conn, 7)

	h.Disconnect(conn)

	assert.True(t, conn.closed)
	assert.Zero(t, h.ConnectionCount())
	assert.Zero(t, h.SubscriptionCount())

	// A later broadcast for poll 7 delivers to nobody and does not error.
	h.NotifyVoteUpdate(ctx, 7, domain.VoteUpdate{TotalVotes: 3})
	assert.Empty(t, conn.received)

	// Disconnect is idempotent.
	h.Disconnect(conn)
	assert.Zero(t, h.ConnectionCount())
}

func TestHub_GlobalEventsReachEveryConnection(t *testing.T) {
	h := newTestHub()
	ctx := context.Background()

	subscribed := newMockConnection("subscribed")
	idle := newMockConnection("idle")
	h.Attach(subscribed)
	h.Attach(idle)
	h.Subscribe(subscribed, 1)

	h.NotifyPollCreated(ctx, domain.PollRecord{ID: 99, Title: "lunch spot"})
	h.NotifyPollDeleted(ctx, 99)

	assert.Equal(t, []string{EventPollCreated, EventPollDeleted}, subscribed.eventTypes())
	assert.Equal(t, []string{EventPollCreated, EventPollDeleted}, idle.eventTypes())
}

func TestHub_NotifyPollUpdatedIsGlobal(t *testing.T) {
	h := newTestHub()

	idle := newMockConnection("idle")
	h.Attach(idle)

	h.NotifyPollUpdated(context.Background(), 5, domain.PollRecord{ID: 5, IsActive: false})

	require.Len(t, idle.received, 1)
	assert.Equal(t, EventPollUpdated, idle.received[0].Type)
	assert.Equal(t, int64(5), idle.received[0].PollID)
}

func TestHub_SendDirectFailureEvicts(t *testing.T) {
	h := newTestHub()

	bad := newMockConnection("bad")
	bad.failSends = true
	h.Attach(bad)
	h.Subscribe(bad, 3)

	h.SendDirect(context.Background(), bad, PongEvent())

	assert.True(t, bad.closed)
	assert.Zero(t, h.ConnectionCount())
	assert.Empty(t, h.registry.SubscribersOf(3))
}

func TestHub_PerConnectionDeliveryOrder(t *testing.T) {
	h := newTestHub()
	ctx := context.Background()

	conn := newMockConnection("c1")
	h.Attach(conn)
	h.Subscribe(conn, 11)

	h.NotifyVoteUpdate(ctx, 11, domain.VoteUpdate{TotalVotes: 1})
	h.NotifyLikeUpdate(ctx, 11, domain.LikeUpdate{TotalLikes: 1, IsLiked: true})
	h.NotifyVoteUpdate(ctx, 11, domain.VoteUpdate{TotalVotes: 2})

	assert.Equal(t, []string{EventVoteUpdate, EventLikeUpdate, EventVoteUpdate}, conn.eventTypes())
}

func TestHub_ShutdownClosesEverything(t *testing.T) {
	h := newTestHub()

	a := newMockConnection("a")
	b := newMockConnection("b")
	h.Attach(a)
	h.Attach(b)
	h.Subscribe(a, 1)

	h.Shutdown()

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Zero(t, h.ConnectionCount())
	assert.Zero(t, h.SubscriptionCount())
}
