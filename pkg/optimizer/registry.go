// Package optimizer keeps the catalogue of transformation passes each backend contributes.
package optimizer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sameehj/hlsflow/pkg/metrics"
	"github.com/sameehj/hlsflow/pkg/types"
)

var (
	ErrDuplicate = errors.New("pass already registered")
	ErrNotFound  = errors.New("pass not registered")
	ErrInvalid   = errors.New("invalid pass")
)

type passKey struct {
	backend string
	id      string
}

// Registry stores passes keyed by (backend, id) and remembers registration order per backend.
//
// Registration is expected to finish before concurrent readers appear; the lock only
// keeps readers consistent.
type Registry struct {
	mu      sync.RWMutex
	passes  map[passKey]types.Pass
	ordered map[string][]string
	scopes  []string
}

func NewRegistry() *Registry {
	return &Registry{
		passes:  make(map[passKey]types.Pass),
		ordered: make(map[string][]string),
	}
}

// Register adds a pass. The same id may exist once per backend scope.
func (r *Registry) Register(id, backend string, pred types.Predicate) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalid)
	}
	backend = types.BackendName(backend)
	key := passKey{backend: backend, id: id}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.passes[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, describe(backend, id))
	}
	r.passes[key] = types.Pass{ID: id, Backend: backend, Predicate: pred}
	if _, seen := r.ordered[backend]; !seen {
		r.scopes = append(r.scopes, backend)
	}
	r.ordered[backend] = append(r.ordered[backend], id)
	metrics.RecordPassRegistered(backend)
	return nil
}

// MustRegister panics on error. Meant for static pass tables.
func (r *Registry) MustRegister(id, backend string, pred types.Predicate) {
	if err := r.Register(id, backend, pred); err != nil {
		panic(err)
	}
}

// PassesFor lists the pass ids registered for backend in registration order.
// Unscoped passes are only returned for backend "".
func (r *Registry) PassesFor(backend string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.ordered[types.BackendName(backend)]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func (r *Registry) Get(backend, id string) (types.Pass, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.passes[passKey{backend: types.BackendName(backend), id: id}]
	return p, ok
}

// Backends returns every scope that has at least one pass, in first-registration order.
func (r *Registry) Backends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.scopes))
	copy(out, r.scopes)
	return out
}

// Applicable reports whether the pass should run on layerType. A pass without
// a predicate applies to every layer.
func (r *Registry) Applicable(backend, id, layerType string) (bool, error) {
	p, ok := r.Get(backend, id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, describe(types.BackendName(backend), id))
	}
	if p.Predicate == nil {
		return true, nil
	}
	return p.Predicate.Match(layerType), nil
}

func describe(backend, id string) string {
	if backend == "" {
		return id
	}
	return backend + "/" + id
}
