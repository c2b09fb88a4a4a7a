package backend

import (
	"fmt"
	"log/slog"

	"github.com/sameehj/hlsflow/pkg/metrics"
)

// Stage is one step of backend setup. Each stage runs at most once, in plan order.
type Stage int

const (
	StageInit Stage = iota
	StageInitializers
	StageOptimizers
	StageValidation
	StageTemplates
	StageWriter
	StageFIFOOpt
	StageExtras
	StageDefault
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "INIT"
	case StageInitializers:
		return "BUILD_INITIALIZERS"
	case StageOptimizers:
		return "BUILD_OPTIMIZERS"
	case StageValidation:
		return "BUILD_VALIDATION"
	case StageTemplates:
		return "BUILD_TEMPLATES"
	case StageWriter:
		return "BUILD_WRITER"
	case StageFIFOOpt:
		return "BUILD_FIFO_OPT"
	case StageExtras:
		return "COMPUTE_EXTRAS"
	case StageDefault:
		return "BUILD_DEFAULT"
	case StageDone:
		return "DONE"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

var (
	basePlan = []Stage{
		StageInitializers, StageOptimizers, StageTemplates, StageExtras,
		StageDefault, StageWriter, StageFIFOOpt,
	}
	derivedPlan = []Stage{
		StageInitializers, StageValidation, StageTemplates, StageWriter,
		StageFIFOOpt, StageExtras, StageDefault,
	}
)

// setup drives the stages of a single backend construction.
type setup struct {
	backend string
	plan    []Stage
	next    int
	stage   Stage
	logger  *slog.Logger
	err     error
}

func newSetup(env *Env, backend string, plan []Stage) *setup {
	return &setup{
		backend: backend,
		plan:    plan,
		stage:   StageInit,
		logger:  env.logger().With("backend", backend),
	}
}

// step runs fn as stage next. Stages of the plan may be skipped but never
// revisited. After the first failure every later step is a no-op.
func (s *setup) step(next Stage, fn func() error) {
	if s.err != nil {
		return
	}
	pos := -1
	for i := s.next; i < len(s.plan); i++ {
		if s.plan[i] == next {
			pos = i
			break
		}
	}
	if pos < 0 {
		s.err = fmt.Errorf("setup %s: stage %s not allowed after %s", s.backend, next, s.stage)
		return
	}
	s.next = pos + 1
	s.stage = next
	s.logger.Debug("backend setup stage", "stage", next.String())
	if err := fn(); err != nil {
		metrics.RecordSetupFailure(s.backend, next.String())
		s.logger.Error("backend setup failed", "stage", next.String(), "error", err)
		s.err = fmt.Errorf("setup %s: %s: %w", s.backend, next, err)
	}
}

func (s *setup) done() error {
	if s.err != nil {
		return s.err
	}
	s.stage = StageDone
	return nil
}
