package backend

import (
	"fmt"

	"github.com/sameehj/hlsflow/pkg/types"
)

// RegisterCommon registers the unscoped convert and optimize flows every backend builds on.
func RegisterCommon(env *Env, c Common) (types.FlowKey, error) {
	var requires []types.FlowKey
	if len(c.Convert) > 0 {
		convert, err := env.Flows.Register(ConvertFlow, "", c.Convert, nil)
		if err != nil {
			return types.FlowKey{}, fmt.Errorf("register %s: %w", ConvertFlow, err)
		}
		requires = append(requires, convert)
	}
	optimize, err := env.Flows.Register(OptimizeFlow, "", c.Optimize, requires)
	if err != nil {
		return types.FlowKey{}, fmt.Errorf("register %s: %w", OptimizeFlow, err)
	}
	env.logger().Info("common flows registered", "flow", optimize.String())
	return optimize, nil
}
