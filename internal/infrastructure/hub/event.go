package hub

import "github.com/atul262002/Real-Time-Opinion-Polling-Platform/internal/domain"

// Outbound event types. vote_update and like_update are topic-scoped;
// the poll lifecycle events go to every connected client.
const (
	EventConnected    = "connected"
	EventSubscribed   = "subscribed"
	EventUnsubscribed = "unsubscribed"
	EventPong         = "pong"
	EventVoteUpdate   = "vote_update"
	EventLikeUpdate   = "like_update"
	EventPollCreated  = "poll_created"
	EventPollUpdated  = "poll_update"
	EventPollDeleted  = "poll_deleted"
)

// Event is a single outbound message. Events are transient: built,
// fanned out once, and dropped. PollID is zero for global events that
// are not tied to one poll.
type Event struct {
	Type   string `json:"type"`
	PollID int64  `json:"poll_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ConnectedEvent greets a new stream so the client learns its
// connection id.
func ConnectedEvent(connectionID string) *Event {
	return &Event{Type: EventConnected, Data: map[string]string{"connection_id": connectionID}}
}

func SubscribedEvent(pollID int64) *Event {
	return &Event{Type: EventSubscribed, PollID: pollID}
}

func UnsubscribedEvent(pollID int64) *Event {
	return &Event{Type: EventUnsubscribed, PollID: pollID}
}

func PongEvent() *Event {
	return &Event{Type: EventPong}
}

func VoteUpdateEvent(pollID int64, update domain.VoteUpdate) *Event {
	return &Event{Type: EventVoteUpdate, PollID: pollID, Data: update}
}

func LikeUpdateEvent(pollID int64, update domain.LikeUpdate) *Event {
	return &Event{Type: EventLikeUpdate, PollID: pollID, Data: update}
}

func PollCreatedEvent(record domain.PollRecord) *Event {
	return &Event{Type: EventPollCreated, Data: record}
}

func PollUpdatedEvent(pollID int64, record domain.PollRecord) *Event {
	return &Event{Type: EventPollUpdated, PollID: pollID, Data: record}
}

func PollDeletedEvent(pollID int64) *Event {
	return &Event{Type: EventPollDeleted, PollID: pollID}
}
