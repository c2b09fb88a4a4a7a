package backend

import (
	"github.com/sameehj/hlsflow/pkg/flow"
	"github.com/sameehj/hlsflow/pkg/metrics"
	"github.com/sameehj/hlsflow/pkg/types"
)

// RegisterBase builds the flows of a backend that extends no other backend.
//
// Its default flow requires optimize, init_layers, each optimizer group, extras
// (when present) and apply_templates, in that order. write and
// fifo_depth_optimization both require the default flow.
func RegisterBase(env *Env, d Descriptor) (*Backend, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	name := types.BackendName(d.Name)
	b := &Backend{Name: name}
	s := newSetup(env, name, basePlan)
	optimize := types.Key("", OptimizeFlow)

	var groupKeys []types.FlowKey
	var fifoPasses []string
	var templates types.FlowKey

	s.step(StageInitializers, func() (err error) {
		b.Init, err = env.Flows.Register(InitLayersFlow, name, d.Initializers, []types.FlowKey{optimize})
		return err
	})
	s.step(StageOptimizers, func() error {
		for _, g := range d.Optimizers {
			k, err := env.Flows.Register(g.Name, name, g.Passes, []types.FlowKey{b.Init})
			if err != nil {
				return err
			}
			groupKeys = append(groupKeys, k)
		}
		return nil
	})
	s.step(StageTemplates, func() (err error) {
		templates, err = env.Flows.Register(TemplatesFlow, name, d.Templates, []types.FlowKey{b.Init})
		return err
	})
	s.step(StageExtras, func() error {
		if d.FIFODepthPass != "" {
			fifoPasses = append([]string{d.FIFODepthPass}, d.Writer...)
		}
		groups := [][]string{d.Initializers, d.Templates, d.Writer, fifoPasses}
		for _, g := range d.Optimizers {
			groups = append(groups, g.Passes)
		}
		return registerExtras(env, b, groups...)
	})
	s.step(StageDefault, func() (err error) {
		requires := []types.FlowKey{optimize, b.Init}
		requires = append(requires, groupKeys...)
		if b.HasExtras() {
			requires = append(requires, b.Extras)
		}
		requires = append(requires, templates)
		b.Default, err = env.Flows.Register(types.DefaultFlowName, name, nil, requires)
		return err
	})
	s.step(StageWriter, func() (err error) {
		b.Writer, err = env.Flows.Register(WriterFlow, name, d.Writer, []types.FlowKey{b.Default})
		return err
	})
	s.step(StageFIFOOpt, func() (err error) {
		if len(fifoPasses) == 0 {
			return nil
		}
		b.FIFODepth, err = env.Flows.Register(FIFODepthFlow, name, fifoPasses, []types.FlowKey{b.Default})
		return err
	})
	if err := s.done(); err != nil {
		return nil, err
	}
	s.logger.Info("base backend registered", "default", b.Default.String(), "extras", len(b.ExtraPasses))
	return b, nil
}

// registerExtras folds passes outside the named groups into an extras flow that
// requires only the backend's init_layers flow. Nothing is registered when every
// pass is already covered.
func registerExtras(env *Env, b *Backend, groups ...[]string) error {
	extras := flow.ComputeExtras(env.Passes.PassesFor(b.Name), groups...)
	metrics.RecordExtraPasses(b.Name, len(extras))
	if len(extras) == 0 {
		return nil
	}
	k, err := env.Flows.Register(ExtrasFlow, b.Name, extras, []types.FlowKey{b.Init})
	if err != nil {
		return err
	}
	b.Extras = k
	b.ExtraPasses = extras
	env.logger().Warn("passes outside the core flows", "backend", b.Name, "passes", extras)
	return nil
}
