package flow

import "github.com/sameehj/hlsflow/pkg/types"

// Expand resolves keys into the ordered pass sequence a build executes.
//
// Each flow's requirements run, in order, before its own passes, and every flow is
// expanded at most once per call. A pass listed by two different flows appears twice.
func (r *Registry) Expand(keys ...types.FlowKey) ([]types.PassRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	done := make(map[types.FlowKey]bool)
	active := make(map[types.FlowKey]bool)
	var out []types.PassRef

	var visit func(k types.FlowKey) error
	visit = func(k types.FlowKey) error {
		if done[k] {
			return nil
		}
		if active[k] {
			return &Error{Kind: ErrCycle, Key: k}
		}
		f, ok := r.flows[k]
		if !ok {
			return &Error{Kind: ErrNotFound, Key: k}
		}
		active[k] = true
		for _, req := range f.Requires {
			if err := visit(req); err != nil {
				return err
			}
		}
		for _, p := range f.Passes {
			out = append(out, types.PassRef{ID: p, Flow: k})
		}
		active[k] = false
		done[k] = true
		return nil
	}

	for _, k := range keys {
		if err := visit(k); err != nil {
			return nil, err
		}
	}
	return out, nil
}
