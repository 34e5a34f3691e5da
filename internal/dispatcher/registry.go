package dispatcher

import (
	"sync"

	"github.com/icanthink42/alpha-solve-analytical/internal/dispatcher/handler"
)

// Registry holds registered handlers in registration order. Order matters:
// it is the tiebreak when two applicable handlers probe at the same
// priority.
type Registry struct {
	mu       sync.RWMutex
	handlers []handler.Handler
	byName   map[string]handler.Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]handler.Handler)}
}

// Register adds a handler. Registering a name twice replaces the earlier
// handler but keeps its position.
func (r *Registry) Register(h handler.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := h.Name()
	if _, ok := r.byName[name]; ok {
		for i, existing := range r.handlers {
			if existing.Name() == name {
				r.handlers[i] = h
				break
			}
		}
	} else {
		r.handlers = append(r.handlers, h)
	}
	r.byName[name] = h
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Handlers returns the handlers in registration order.
func (r *Registry) Handlers() []handler.Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]handler.Handler, len(r.handlers))
	copy(out, r.handlers)
	return out
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Unregister removes the handler registered under name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return
	}
	delete(r.byName, name)
	for i, h := range r.handlers {
		if h.Name() == name {
			r.handlers = append(r.handlers[:i], r.handlers[i+1:]...)
			break
		}
	}
}
