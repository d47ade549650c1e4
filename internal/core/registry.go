package core

import "sync"

// Registry is the set of currently open connections, keyed by client ID.
type Registry struct {
	mu      sync.RWMutex
	members map[string]*Client
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{members: make(map[string]*Client)}
}

// Add inserts a client. Returns false if the ID is already registered.
func (r *Registry) Add(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.members[c.ID]; exists {
		return false
	}
	r.members[c.ID] = c
	return true
}

// Remove deletes a client by identity. Returns false if it was not a member.
func (r *Registry) Remove(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, exists := r.members[c.ID]; !exists || cur != c {
		return false
	}
	delete(r.members, c.ID)
	return true
}

// Snapshot copies the current members. Order is unspecified.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.members))
	for _, c := range r.members {
		out = append(out, c)
	}
	return out
}

// Len returns the number of members.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
