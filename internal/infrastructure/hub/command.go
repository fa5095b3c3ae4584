package hub

import (
	"context"
	"encoding/json"
)

const (
	commandSubscribe   = "subscribe"
	commandUnsubscribe = "unsubscribe"
	commandPing        = "ping"
)

// clientMessage is the inbound control message shape.
type clientMessage struct {
	Type   string `json:"type"`
	PollID int64  `json:"poll_id"`
}

// HandleMessage interprets one inbound control message from a
// connection. Malformed or unknown traffic is logged and dropped — it
// never terminates the connection or surfaces an error to the client.
func (h *Hub) HandleMessage(ctx context.Context, conn Connection, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.logger.Warnf("connection %s sent malformed message, dropping: %v", conn.ID(), err)
		return
	}

	switch msg.Type {
	case commandSubscribe:
		if msg.PollID == 0 {
			h.logger.Debugf("connection %s subscribe without poll_id, dropping", conn.ID())
			return
		}
		h.Subscribe(conn, msg.PollID)
		h.SendDirect(ctx, conn, SubscribedEvent(msg.PollID))

	case commandUnsubscribe:
		if msg.PollID == 0 {
			h.logger.Debugf("connection %s unsubscribe without poll_id, dropping", conn.ID())
			return
		}
		h.Unsubscribe(conn, msg.PollID)
		h.SendDirect(ctx, conn, UnsubscribedEvent(msg.PollID))

	case commandPing:
		h.SendDirect(ctx, conn, PongEvent())

	default:
		h.logger.Debugf("connection %s sent unknown message type %q, dropping", conn.ID(), msg.Type)
	}
}
