package backend

import (
	"fmt"

	"github.com/sameehj/hlsflow/pkg/flow"
	"github.com/sameehj/hlsflow/pkg/types"
)

// RegisterDerived builds the flows of a backend that extends d.Base.
//
// The base backend must already be registered. Its default flow is not modified:
// the derived default flow requires a copy of the base requirements with the
// derived validation flow spliced before base init_layers and the derived template
// flow spliced before base apply_templates. The default flow is registered last,
// so a failed setup never leaves one behind.
func RegisterDerived(env *Env, d Descriptor) (*Backend, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	if !d.Derived() {
		return nil, fmt.Errorf("backend %s does not extend another backend", d.Name)
	}
	name := types.BackendName(d.Name)
	base := types.BackendName(d.Base)
	b := &Backend{Name: name, Base: base}
	s := newSetup(env, name, derivedPlan)

	var (
		baseInit      = types.Key(base, InitLayersFlow)
		baseTemplates = types.Key(base, TemplatesFlow)
		baseDefault   = types.Key(base, types.DefaultFlowName)

		validation types.FlowKey
		templates  types.FlowKey
		fifoPasses []string
	)

	s.step(StageInitializers, func() (err error) {
		b.Init, err = env.Flows.Register(InitLayersFlow, name, d.Initializers, []types.FlowKey{types.Key("", OptimizeFlow)})
		return err
	})
	s.step(StageValidation, func() (err error) {
		validation, err = env.Flows.Register(ValidationFlow, name, d.Validators, []types.FlowKey{baseInit})
		return err
	})
	s.step(StageTemplates, func() (err error) {
		templates, err = env.Flows.Register(TemplatesFlow, name, d.Templates, []types.FlowKey{baseInit})
		return err
	})
	s.step(StageWriter, func() (err error) {
		b.Writer, err = env.Flows.Register(WriterFlow, name, d.Writer, []types.FlowKey{baseDefault})
		return err
	})
	s.step(StageFIFOOpt, func() (err error) {
		if d.FIFODepthPass == "" {
			return nil
		}
		// The project is written again after FIFO depths change.
		fifoPasses = append([]string{d.FIFODepthPass}, d.Writer...)
		b.FIFODepth, err = env.Flows.Register(FIFODepthFlow, name, fifoPasses, []types.FlowKey{baseDefault})
		return err
	})
	s.step(StageExtras, func() error {
		// fifoPasses repeats the writer passes; the subtraction is kept as declared.
		return registerExtras(env, b, d.Initializers, d.Writer, fifoPasses)
	})
	s.step(StageDefault, func() error {
		requires, err := env.Flows.InheritRequires(baseDefault,
			flow.Splice{Anchor: baseInit, Insert: validation},
			flow.Splice{Anchor: baseTemplates, Insert: templates},
		)
		if err != nil {
			return err
		}
		b.Default, err = env.Flows.Register(types.DefaultFlowName, name, nil, requires)
		return err
	})
	if err := s.done(); err != nil {
		return nil, err
	}
	s.logger.Info("derived backend registered", "base", base, "default", b.Default.String(), "extras", len(b.ExtraPasses))
	return b, nil
}
