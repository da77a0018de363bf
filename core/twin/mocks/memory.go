package mocks

import (
	"context"
	"fmt"
	"sync"

	"twin-sync/core/twin"
)

// MemoryRegistry is an in-memory twin.Client.
type MemoryRegistry struct {
	mu     sync.Mutex
	shells map[string]*twin.Shell
	order  []string

	// Calls counts invocations per method name.
	Calls map[string]int
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{shells: map[string]*twin.Shell{}, Calls: map[string]int{}}
}

// Shells returns a copy of every registered shell in creation order.
func (r *MemoryRegistry) Shells() []twin.Shell {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]twin.Shell, 0, len(r.order))
	for _, id := range r.order {
		if s, ok := r.shells[id]; ok {
			cp := *s
			cp.Submodels = append([]twin.Submodel(nil), s.Submodels...)
			out = append(out, cp)
		}
	}
	return out
}

// Put registers shell directly.
func (r *MemoryRegistry) Put(shell twin.Shell) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := shell
	r.shells[shell.ID] = &cp
	r.order = append(r.order, shell.ID)
}

func (r *MemoryRegistry) LookupShells(_ context.Context, ids map[string]string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["LookupShells"]++

	var out []string
	for _, id := range r.order {
		s, ok := r.shells[id]
		if !ok {
			continue
		}
		match := true
		for k, v := range ids {
			if s.SpecificAssetIDs[k] != v {
				match = false
				break
			}
		}
		if match {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *MemoryRegistry) CreateShell(_ context.Context, shell twin.Shell) (twin.Shell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["CreateShell"]++

	if _, ok := r.shells[shell.ID]; ok {
		return twin.Shell{}, fmt.Errorf("shell %s already exists", shell.ID)
	}
	cp := shell
	r.shells[shell.ID] = &cp
	r.order = append(r.order, shell.ID)
	return shell, nil
}

func (r *MemoryRegistry) UpdateSpecificAssetIDs(_ context.Context, shellID string, ids map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["UpdateSpecificAssetIDs"]++

	s, ok := r.shells[shellID]
	if !ok {
		return fmt.Errorf("shell %s: %w", shellID, twin.ErrNotFound)
	}
	s.SpecificAssetIDs = ids
	return nil
}

func (r *MemoryRegistry) ListSubmodels(_ context.Context, shellID string) ([]twin.Submodel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["ListSubmodels"]++

	s, ok := r.shells[shellID]
	if !ok {
		return nil, fmt.Errorf("shell %s: %w", shellID, twin.ErrNotFound)
	}
	return append([]twin.Submodel(nil), s.Submodels...), nil
}

func (r *MemoryRegistry) CreateSubmodel(_ context.Context, shellID string, submodel twin.Submodel) (twin.Submodel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["CreateSubmodel"]++

	s, ok := r.shells[shellID]
	if !ok {
		return twin.Submodel{}, fmt.Errorf("shell %s: %w", shellID, twin.ErrNotFound)
	}
	s.Submodels = append(s.Submodels, submodel)
	return submodel, nil
}

func (r *MemoryRegistry) DeleteSubmodel(_ context.Context, shellID, submodelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls["DeleteSubmodel"]++

	s, ok := r.shells[shellID]
	if !ok {
		return fmt.Errorf("shell %s: %w", shellID, twin.ErrNotFound)
	}
	for i, sm := range s.Submodels {
		if sm.ID == submodelID {
			s.Submodels = append(s.Submodels[:i], s.Submodels[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("submodel %s: %w", submodelID, twin.ErrNotFound)
}
