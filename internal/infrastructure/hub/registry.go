package hub

import "sync"

// Registry is the in-memory subscription index. It keeps a forward
// index (poll -> subscribers) and a reverse index (connection -> polls)
// that are updated together under one lock, so an edge exists in one
// index if and only if it exists in the other.
//
// Readers get snapshot copies: broadcast iteration must survive a
// concurrent disconnect without corruption or double-processing.
type Registry struct {
	mu      sync.RWMutex
	byTopic map[int64]map[Connection]struct{}
	byConn  map[Connection]map[int64]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byTopic: make(map[int64]map[Connection]struct{}),
		byConn:  make(map[Connection]map[int64]struct{}),
	}
}

// Register adds a connection with an empty topic set.
func (r *Registry) Register(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byConn[conn]; !ok {
		r.byConn[conn] = make(map[int64]struct{})
	}
}

// Subscribe adds the connection/topic edge to both indices. Idempotent.
// Reports whether a new edge was created.
func (r *Registry) Subscribe(conn Connection, topic int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	topics, ok := r.byConn[conn]
	if !ok {
		topics = make(map[int64]struct{})
		r.byConn[conn] = topics
	}
	if _, ok := topics[topic]; ok {
		return false
	}

	topics[topic] = struct{}{}
	subscribers, ok := r.byTopic[topic]
	if !ok {
		subscribers = make(map[Connection]struct{})
		r.byTopic[topic] = subscribers
	}
	subscribers[conn] = struct{}{}
	return true
}

// Unsubscribe removes the edge from both indices. Idempotent. A topic
// whose subscriber set becomes empty is dropped entirely so churn
// across many short-lived polls does not grow the index.
func (r *Registry) Unsubscribe(conn Connection, topic int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeEdge(conn, topic)
}

func (r *Registry) removeEdge(conn Connection, topic int64) bool {
	topics, ok := r.byConn[conn]
	if !ok {
		return false
	}
	if _, ok := topics[topic]; !ok {
		return false
	}

	delete(topics, topic)
	if subscribers, ok := r.byTopic[topic]; ok {
		delete(subscribers, conn)
		if len(subscribers) == 0 {
			delete(r.byTopic, topic)
		}
	}
	return true
}

// RemoveConnection removes every edge involving the connection and the
// connection itself in one atomic step. Safe to call on a connection
// with zero subscriptions, or one that was already removed. Returns
// whether the connection was present and how many edges were dropped.
func (r *Registry) RemoveConnection(conn Connection) (removed bool, edges int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	topics, ok := r.byConn[conn]
	if !ok {
		return false, 0
	}

	for topic := range topics {
		r.removeEdge(conn, topic)
		edges++
	}
	delete(r.byConn, conn)
	return true, edges
}

// SubscribersOf returns a snapshot of the topic's subscriber set.
func (r *Registry) SubscribersOf(topic int64) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subscribers := r.byTopic[topic]
	snapshot := make([]Connection, 0, len(subscribers))
	for conn := range subscribers {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// AllConnections returns a snapshot of every registered connection.
func (r *Registry) AllConnections() []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]Connection, 0, len(r.byConn))
	for conn := range r.byConn {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// TopicsOf returns a snapshot of the topics a connection subscribes to.
func (r *Registry) TopicsOf(conn Connection) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	topics := r.byConn[conn]
	snapshot := make([]int64, 0, len(topics))
	for topic := range topics {
		snapshot = append(snapshot, topic)
	}
	return snapshot
}

func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}

func (r *Registry) SubscriptionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, topics := range r.byConn {
		n += len(topics)
	}
	return n
}
