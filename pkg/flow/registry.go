// Package flow registers named pass pipelines, composes them through prerequisites
// and expands them into the ordered pass sequence a build executes.
package flow

import (
	"sync"

	"github.com/sameehj/hlsflow/pkg/metrics"
	"github.com/sameehj/hlsflow/pkg/types"
)

// Registry stores flows by key. Flows are immutable once registered.
type Registry struct {
	mu    sync.RWMutex
	flows map[types.FlowKey]types.Flow
	order []types.FlowKey
}

func NewRegistry() *Registry {
	return &Registry{flows: make(map[types.FlowKey]types.Flow)}
}

// Register stores a new flow under (backend, name) and returns its key.
//
// Every requirement must already be registered, so flows are built leaf first.
// Nothing is stored when an error is returned.
func (r *Registry) Register(name, backend string, passes []string, requires []types.FlowKey) (types.FlowKey, error) {
	key := types.Key(backend, name)
	if name == "" {
		return key, flowErr(ErrInvalid, key, "flow name is required")
	}
	for _, req := range requires {
		if req == key {
			return key, flowErr(ErrCycle, key, "flow requires itself")
		}
	}
	if len(passes) == 0 && len(requires) == 0 {
		return key, &Error{Kind: ErrEmptyFlow, Key: key}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.flows[key]; exists {
		return key, &Error{Kind: ErrDuplicate, Key: key}
	}
	for _, req := range requires {
		if _, ok := r.flows[req]; !ok {
			return key, flowErr(ErrNotFound, key, "required flow %s is not registered", req)
		}
	}

	r.flows[key] = types.Flow{
		Name:     name,
		Backend:  key.Backend,
		Passes:   append([]string(nil), passes...),
		Requires: append([]types.FlowKey(nil), requires...),
	}
	r.order = append(r.order, key)
	metrics.RecordFlowRegistered(key.Backend)
	return key, nil
}

// Get returns a copy of the stored flow.
func (r *Registry) Get(key types.FlowKey) (types.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.flows[key]
	if !ok {
		return types.Flow{}, &Error{Kind: ErrNotFound, Key: key}
	}
	return f.Clone(), nil
}

func (r *Registry) Lookup(backend, name string) (types.Flow, error) {
	return r.Get(types.Key(backend, name))
}

func (r *Registry) Has(key types.FlowKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.flows[key]
	return ok
}

// FlowsFor lists the keys registered for backend, in registration order.
func (r *Registry) FlowsFor(backend string) []types.FlowKey {
	backend = types.BackendName(backend)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []types.FlowKey
	for _, k := range r.order {
		if k.Backend == backend {
			out = append(out, k)
		}
	}
	return out
}

// Keys lists every registered key in registration order.
func (r *Registry) Keys() []types.FlowKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]types.FlowKey(nil), r.order...)
}

// Validate walks the whole requirement graph and reports the first cycle or
// dangling requirement it finds.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	const (
		white = iota
		gray
		black
	)
	color := make(map[types.FlowKey]int, len(r.flows))
	var path []types.FlowKey

	var visit func(k types.FlowKey) error
	visit = func(k types.FlowKey) error {
		color[k] = gray
		path = append(path, k)
		for _, req := range r.flows[k].Requires {
			if _, ok := r.flows[req]; !ok {
				return flowErr(ErrNotFound, k, "required flow %s is not registered", req)
			}
			switch color[req] {
			case gray:
				return flowErr(ErrCycle, req, "%s", cyclePath(path, req))
			case white:
				if err := visit(req); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[k] = black
		return nil
	}

	for _, k := range r.order {
		if color[k] != white {
			continue
		}
		if err := visit(k); err != nil {
			return err
		}
	}
	return nil
}

func cyclePath(path []types.FlowKey, start types.FlowKey) string {
	out := ""
	begun := false
	for _, k := range path {
		if k == start {
			begun = true
		}
		if begun {
			out += k.String() + " -> "
		}
	}
	return out + start.String()
}
