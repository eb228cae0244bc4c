package timer

import "sync"

// Registry is the set of game ids currently receiving ticks. It is an
// explicit component owned by the driver and handed to the orchestrator, not
// process-global state. Register and Unregister are idempotent.
type Registry struct {
	mu    sync.Mutex
	games map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{games: make(map[string]struct{})}
}

// Register adds a game id. Safe to call redundantly.
func (r *Registry) Register(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[gameID] = struct{}{}
}

// Unregister removes a game id. Safe to call redundantly.
func (r *Registry) Unregister(gameID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, gameID)
}

// Contains reports whether the game id is registered.
func (r *Registry) Contains(gameID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.games[gameID]
	return ok
}

// IDs returns a detached snapshot of the registered game ids.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	return ids
}
