package flow

import (
	"github.com/sameehj/hlsflow/pkg/types"
	"k8s.io/apimachinery/pkg/util/sets"
)

// ComputeExtras returns the passes of all that appear in none of the groups,
// in the order of all. The result is always a fresh slice.
func ComputeExtras(all []string, groups ...[]string) []string {
	known := sets.New[string]()
	for _, g := range groups {
		known.Insert(g...)
	}
	out := make([]string, 0, len(all))
	for _, p := range all {
		if !known.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Unreached returns the passes, in their given order, that no expansion of roots reaches.
func (r *Registry) Unreached(passes []string, roots ...types.FlowKey) ([]string, error) {
	covered := sets.New[string]()
	for _, root := range roots {
		refs, err := r.Expand(root)
		if err != nil {
			return nil, err
		}
		covered.Insert(types.IDs(refs)...)
	}
	return ComputeExtras(passes, sets.List(covered)), nil
}
