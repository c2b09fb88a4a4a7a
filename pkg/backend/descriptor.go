// Package backend composes the flows of base and derived code-generation backends.
//
// A base backend (vivado) builds its pipeline on the unscoped convert and optimize
// flows. A derived backend (vitis) builds its own sub-flows against the base flows and
// registers a default flow whose requirements are a spliced copy of the base default.
package backend

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sameehj/hlsflow/pkg/flow"
	"github.com/sameehj/hlsflow/pkg/optimizer"
	"github.com/sameehj/hlsflow/pkg/types"
)

// Flow names every backend registers.
const (
	ConvertFlow    = "convert"
	OptimizeFlow   = "optimize"
	InitLayersFlow = "init_layers"
	ValidationFlow = "validation"
	TemplatesFlow  = "apply_templates"
	WriterFlow     = "write"
	FIFODepthFlow  = "fifo_depth_optimization"
	ExtrasFlow     = "extras"
)

// Common lists the passes of the backend-independent flows.
type Common struct {
	Convert  []string `yaml:"convert" json:"convert"`
	Optimize []string `yaml:"optimize" json:"optimize"`
}

// OptimizerGroup is a named base-backend flow that runs after layer initialization.
type OptimizerGroup struct {
	Name   string   `yaml:"name" json:"name"`
	Passes []string `yaml:"passes" json:"passes"`
}

// Descriptor declares which passes a backend contributes to each of its flows.
// Base is empty for a base backend and names the extended backend otherwise.
type Descriptor struct {
	Name          string           `yaml:"name" json:"name"`
	Base          string           `yaml:"base,omitempty" json:"base,omitempty"`
	Initializers  []string         `yaml:"initializers" json:"initializers"`
	Optimizers    []OptimizerGroup `yaml:"optimizers,omitempty" json:"optimizers,omitempty"`
	Validators    []string         `yaml:"validators,omitempty" json:"validators,omitempty"`
	Templates     []string         `yaml:"templates" json:"templates"`
	Writer        []string         `yaml:"writer" json:"writer"`
	FIFODepthPass string           `yaml:"fifoDepthPass,omitempty" json:"fifoDepthPass,omitempty"`
}

func (d Descriptor) Derived() bool { return types.BackendName(d.Base) != "" }

func (d Descriptor) validate() error {
	if types.BackendName(d.Name) == "" {
		return fmt.Errorf("backend name is required")
	}
	if types.BackendName(d.Base) == types.BackendName(d.Name) {
		return fmt.Errorf("backend %s cannot extend itself", d.Name)
	}
	if len(d.Writer) == 0 {
		return fmt.Errorf("backend %s declares no writer passes", d.Name)
	}
	if d.Derived() && len(d.Optimizers) > 0 {
		return fmt.Errorf("backend %s: optimizer groups are only supported on base backends", d.Name)
	}
	return nil
}

// Env carries the registries one generation run composes flows into.
type Env struct {
	Passes *optimizer.Registry
	Flows  *flow.Registry
	Logger *slog.Logger
	RunID  string
}

// NewEnv returns an Env with empty registries and a fresh run id.
func NewEnv(logger *slog.Logger) *Env {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	return &Env{
		Passes: optimizer.NewRegistry(),
		Flows:  flow.NewRegistry(),
		Logger: logger.With("run_id", id),
		RunID:  id,
	}
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}
