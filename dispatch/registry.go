package dispatch

import "sync"

// Registry binds an in-flight request id to a human-readable label
// (its payload's String form) for as long as it is being served. The
// Dispatcher registers and forgets these bindings; it does not read
// them back itself.
type Registry struct {
	mu        sync.RWMutex
	idToLabel map[string]string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{idToLabel: make(map[string]string)}
}

// Register binds id to label, overwriting any previous binding.
func (r *Registry) Register(id, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idToLabel[id] = label
}

// Label returns the label bound to id, if any.
func (r *Registry) Label(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	label, ok := r.idToLabel[id]
	return label, ok
}

// Forget drops id's binding. Called once a request has finished being
// served, so the registry does not grow without bound.
func (r *Registry) Forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.idToLabel, id)
}
