package chat

import (
	"sort"
	"sync"
)

// ConnID identifies a registered connection for the lifetime of the process.
// IDs are assigned from a monotonic counter at registration time, so a
// recycled transport handle can never collide with an earlier session.
type ConnID uint64

// NoExclude is passed to Broadcast when every connection should receive
// the message. Valid IDs start at 1.
const NoExclude ConnID = 0

// Conn is the transport-level handle the chat core delivers to.
type Conn interface {
	Send(data []byte) error
}

// Entry pairs a live connection with its chosen nickname.
type Entry struct {
	ID       ConnID
	Nickname string
	Conn     Conn
}

// Registry tracks live chat sessions. It is mutated only by register,
// unregister and the broadcaster's dead-connection pruning.
type Registry struct {
	mu      sync.RWMutex
	nextID  ConnID
	entries map[ConnID]Entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ConnID]Entry)}
}

// Register inserts a new entry and returns its assigned ID. The entry is
// visible to broadcasts immediately.
func (r *Registry) Register(c Conn, nickname string) ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.entries[id] = Entry{ID: id, Nickname: nickname, Conn: c}
	return id
}

// Unregister removes the entry and returns its nickname. ok is false when
// the connection was never registered or already pruned; callers must then
// skip the leave announcement.
func (r *Registry) Unregister(id ConnID) (nickname string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return "", false
	}
	delete(r.entries, id)
	return e.Nickname, true
}

// Snapshot returns a point-in-time copy of all entries ordered by ID.
// Iterating the copy is safe while other goroutines join or leave.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
