package kind

import (
	"fmt"
	"strings"
	"sync"
)

// Registry holds the data kinds in registration order.
type Registry struct {
	mu    sync.RWMutex
	kinds []Kind
	index map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a kind. Names are unique.
func (r *Registry) Register(k Kind) error {
	name := k.Name()
	if name == "" {
		return fmt.Errorf("kind has no name")
	}
	if k.Executor == nil {
		return fmt.Errorf("kind %s has no executor", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[name]; ok {
		return fmt.Errorf("kind %s is already registered", name)
	}
	r.index[name] = len(r.kinds)
	r.kinds = append(r.kinds, k)
	return nil
}

// Get returns the kind registered under name.
func (r *Registry) Get(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[strings.TrimSpace(name)]
	if !ok {
		return Kind{}, false
	}
	return r.kinds[i], true
}

// All returns every kind in registration order.
func (r *Registry) All() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Kind(nil), r.kinds...)
}

// FindMatching returns the first kind, in registration order, whose column
// signature equals columns.
func (r *Registry) FindMatching(columns []string) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range r.kinds {
		if k.Schema.Matches(columns) {
			return k, nil
		}
	}
	return Kind{}, Invalidf("no data kind matches columns %v", columns)
}
