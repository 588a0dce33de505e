package realtime

import (
	"sync"
)

// Registry owns the two connection indexes: project subscriber sets and
// per-user connection sets. The cleanup-on-empty invariant is enforced here
// so no caller can leak an empty set into either map.
type Registry struct {
	mu sync.RWMutex

	// projectID -> subscriber set
	projects map[int64]map[*Conn]struct{}
	// userID -> connection set (multiple tabs/devices per user)
	users map[int64]map[*Conn]struct{}
	// conn -> its subscribed project IDs, for O(subs) removal
	subs map[*Conn]map[int64]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		projects: make(map[int64]map[*Conn]struct{}),
		users:    make(map[int64]map[*Conn]struct{}),
		subs:     make(map[*Conn]map[int64]struct{}),
	}
}

func (r *Registry) Register(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.users[c.UserID]
	if !ok {
		set = make(map[*Conn]struct{})
		r.users[c.UserID] = set
	}
	set[c] = struct{}{}
	r.subs[c] = make(map[int64]struct{})
}

// Subscribe is idempotent: adding a connection already in the set changes
// nothing.
func (r *Registry) Subscribe(c *Conn, projectID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, registered := r.subs[c]; !registered {
		return
	}

	set, ok := r.projects[projectID]
	if !ok {
		set = make(map[*Conn]struct{})
		r.projects[projectID] = set
	}
	set[c] = struct{}{}
	r.subs[c][projectID] = struct{}{}
}

func (r *Registry) Unsubscribe(c *Conn, projectID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unsubscribeLocked(c, projectID)
}

func (r *Registry) unsubscribeLocked(c *Conn, projectID int64) {
	if set, ok := r.projects[projectID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.projects, projectID)
		}
	}
	if subs, ok := r.subs[c]; ok {
		delete(subs, projectID)
	}
}

// RemoveConnection drops the connection from both indexes and from every
// project set it subscribed to.
func (r *Registry) RemoveConnection(c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for projectID := range r.subs[c] {
		r.unsubscribeLocked(c, projectID)
	}
	delete(r.subs, c)

	if set, ok := r.users[c.UserID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.users, c.UserID)
		}
	}
}

// SubscribersOf snapshots the subscriber set so callers can iterate without
// holding the registry lock during socket writes.
func (r *Registry) SubscribersOf(projectID int64) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.projects[projectID]
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

func (r *Registry) ConnectionsOf(userID int64) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.users[userID]
	out := make([]*Conn, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

// AllConnections snapshots every registered connection, for heartbeat sweeps.
func (r *Registry) AllConnections() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Conn, 0, len(r.subs))
	for c := range r.subs {
		out = append(out, c)
	}
	return out
}

// IsSubscribed reports project membership for one connection.
func (r *Registry) IsSubscribed(c *Conn, projectID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.subs[c][projectID]
	return ok
}

// HasProject reports whether any subscriber set exists for the project,
// empty sets never linger so existence implies at least one member.
func (r *Registry) HasProject(projectID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.projects[projectID]
	return ok
}

// HasUser reports whether the user has any live connection.
func (r *Registry) HasUser(userID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[userID]
	return ok
}
