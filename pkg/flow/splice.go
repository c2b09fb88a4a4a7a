package flow

import "github.com/sameehj/hlsflow/pkg/types"

// Splice inserts Insert immediately before Anchor in a requirement list.
type Splice struct {
	Anchor types.FlowKey
	Insert types.FlowKey
}

// SpliceBefore returns a copy of requires with insert placed before the first
// occurrence of anchor. The input slice is never modified.
func SpliceBefore(requires []types.FlowKey, anchor, insert types.FlowKey) ([]types.FlowKey, error) {
	idx := -1
	for i, k := range requires {
		if k == anchor {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, flowErr(ErrAnchorNotFound, anchor, "cannot insert %s", insert)
	}

	out := make([]types.FlowKey, 0, len(requires)+1)
	out = append(out, requires[:idx]...)
	out = append(out, insert)
	out = append(out, requires[idx:]...)
	return out, nil
}

// ApplySplices applies each splice in turn to a copy of base.
func ApplySplices(base []types.FlowKey, splices ...Splice) ([]types.FlowKey, error) {
	out := append([]types.FlowKey(nil), base...)
	for _, s := range splices {
		next, err := SpliceBefore(out, s.Anchor, s.Insert)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}

// InheritRequires copies the requirement list of another flow, typically a base
// backend's default flow, and applies splices to the copy.
func (r *Registry) InheritRequires(from types.FlowKey, splices ...Splice) ([]types.FlowKey, error) {
	base, err := r.Get(from)
	if err != nil {
		return nil, err
	}
	return ApplySplices(base.Requires, splices...)
}
