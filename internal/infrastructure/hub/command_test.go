package hub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessage_Subscribe(t *testing.T) {
	h := newTestHub()
	conn := newMockConnection("c1")
	h.Attach(conn)

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"subscribe","poll_id":42}`))

	assert.Contains(t, h.registry.SubscribersOf(42), Connection(conn))
	require.Len(t, conn.received, 1)
	assert.Equal(t, EventSubscribed, conn.received[0].Type)
	assert.Equal(t, int64(42), conn.received[0].PollID)
}

func TestHandleMessage_Unsubscribe(t *testing.T) {
	h := newTestHub()
	conn := newMockConnection("c1")
	h.Attach(conn)
	h.Subscribe(conn, 42)

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"unsubscribe","poll_id":42}`))

	assert.Empty(t, h.registry.SubscribersOf(42))
	require.Len(t, conn.received, 1)
	assert.Equal(t, EventUnsubscribed, conn.received[0].Type)
	assert.Equal(t, int64(42), conn.received[0].PollID)
}

func TestHandleMessage_Ping(t *testing.T) {
	h := newTestHub()
	conn := newMockConnection("c1")
	h.Attach(conn)

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"ping"}`))

	require.Len(t, conn.received, 1)
	assert.Equal(t, EventPong, conn.received[0].Type)
}

func TestHandleMessage_MalformedJSONIsDropped(t *testing.T) {
	h := newTestHub()
	conn := newMockConnection("c1")
	h.Attach(conn)
	h.Subscribe(conn, 1)

	h.HandleMessage(context.Background(), conn, []byte(`{not json`))

	// No reply, no state change, connection stays open.
	assert.Empty(t, conn.received)
	assert.False(t, conn.closed)
	assert.Equal(t, 1, h.SubscriptionCount())
}

func TestHandleMessage_UnknownTypeIsIgnored(t *testing.T) {
	h := newTestHub()
	conn := newMockConnection("c1")
	h.Attach(conn)

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"shout","poll_id":1}`))

	assert.Empty(t, conn.received)
	assert.False(t, conn.closed)
	assert.Empty(t, h.registry.SubscribersOf(1))
}

func TestHandleMessage_SubscribeWithoutPollID(t *testing.T) {
	h := newTestHub()
	conn := newMockConnection("c1")
	h.Attach(conn)

	h.HandleMessage(context.Background(), conn, []byte(`{"type":"subscribe"}`))

	assert.Empty(t, conn.received)
	assert.Zero(t, h.SubscriptionCount())
}
