package chat

import (
	"sort"
	"sync"
)

// SessionRegistry maps session ids to their histories. Histories are created
// lazily on first reference and never evicted. The registry is constructed by
// the application entry point and passed to whatever needs it; it is not a
// package-level singleton.
//
// The mutex guards the map only. The History returned by GetOrCreate is
// shared, not copied, and is itself unsynchronized: concurrent turns against
// the same session id are undefined behavior.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*History
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*History)}
}

// GetOrCreate returns the history for the given session id, creating it on
// first reference. Repeated calls with the same id return the same pointer.
func (r *SessionRegistry) GetOrCreate(sessionID string) *History {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.sessions[sessionID]
	if !ok {
		h = &History{}
		r.sessions[sessionID] = h
	}
	return h
}

// Sessions returns the known session ids in sorted order.
func (r *SessionRegistry) Sessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
