package backend

import (
	"github.com/sameehj/hlsflow/pkg/flow"
	"github.com/sameehj/hlsflow/pkg/types"
)

// Backend is the outcome of a completed setup.
type Backend struct {
	Name        string
	Base        string
	Default     types.FlowKey
	Init        types.FlowKey
	Writer      types.FlowKey
	FIFODepth   types.FlowKey
	Extras      types.FlowKey
	ExtraPasses []string
}

func (b *Backend) HasExtras() bool    { return b.Extras.Name != "" }
func (b *Backend) HasFIFODepth() bool { return b.FIFODepth.Name != "" }

// BuildRoots lists the flows a build runs, in order: the default flow, the extras
// flow when there is one, then the writer.
func (b *Backend) BuildRoots() []types.FlowKey {
	roots := []types.FlowKey{b.Default}
	if b.HasExtras() {
		roots = append(roots, b.Extras)
	}
	return append(roots, b.Writer)
}

// BuildSequence expands the build roots into the pass order a build executes.
func (b *Backend) BuildSequence(flows *flow.Registry) ([]types.PassRef, error) {
	return flows.Expand(b.BuildRoots()...)
}

// Check returns the passes registered for the backend that none of its flows reach.
// An empty result means no pass is orphaned.
func Check(env *Env, b *Backend) ([]string, error) {
	return env.Flows.Unreached(env.Passes.PassesFor(b.Name), env.Flows.FlowsFor(b.Name)...)
}

// Register dispatches to RegisterBase or RegisterDerived depending on d.Base.
func Register(env *Env, d Descriptor) (*Backend, error) {
	if d.Derived() {
		return RegisterDerived(env, d)
	}
	return RegisterBase(env, d)
}
