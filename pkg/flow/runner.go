package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sameehj/hlsflow/pkg/types"
)

// Handler applies one pass. It reports whether the model changed.
type Handler interface {
	Apply(ctx context.Context, pass types.PassRef) (bool, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, pass types.PassRef) (bool, error)

func (f HandlerFunc) Apply(ctx context.Context, pass types.PassRef) (bool, error) {
	return f(ctx, pass)
}

// DryRun accepts every pass without touching anything.
var DryRun = HandlerFunc(func(context.Context, types.PassRef) (bool, error) { return false, nil })

// Runner executes expanded flows pass by pass.
type Runner struct {
	registry *Registry
	handler  Handler
	store    StateStore
	logger   *slog.Logger
}

// NewRunner constructs a Runner backed by a registry.
func NewRunner(registry *Registry, handler Handler) *Runner {
	return &Runner{
		registry: registry,
		handler:  handler,
		store:    NewMemoryStateStore(),
		logger:   slog.Default(),
	}
}

func (r *Runner) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

func (r *Runner) SetStateStore(store StateStore) {
	if store != nil {
		r.store = store
	}
}

// Run expands key and applies its passes in order. The returned run is populated
// even when an error is returned; a flow that cannot be expanded yields a failed
// run with no steps.
func (r *Runner) Run(ctx context.Context, key types.FlowKey) (*types.FlowRun, error) {
	run := &types.FlowRun{
		ID:        uuid.New().String(),
		Flow:      key,
		State:     types.FlowStateRunning,
		StartedAt: time.Now(),
	}
	refs, err := r.registry.Expand(key)
	if err != nil {
		r.finish(run, types.FlowStateFailed, err.Error(), 0)
		return run, err
	}

	run.Steps = make([]types.StepStatus, len(refs))
	for i, ref := range refs {
		run.Steps[i] = types.StepStatus{Pass: ref, State: types.StepStateWaiting}
	}
	logger := r.logger.With("run_id", run.ID, "flow", key.String())
	logger.Info("starting flow run", "passes", len(refs))

	for i, ref := range refs {
		if err := ctx.Err(); err != nil {
			r.finish(run, types.FlowStateCancelled, err.Error(), i)
			return run, err
		}

		changed, err := r.handler.Apply(ctx, ref)
		if err != nil {
			run.Steps[i].State = types.StepStateFailed
			run.Steps[i].Error = err.Error()
			r.finish(run, types.FlowStateFailed, fmt.Sprintf("pass %s failed: %v", ref.ID, err), i+1)
			logger.Error("pass failed", "pass", ref.ID, "from", ref.Flow.String(), "error", err)
			return run, fmt.Errorf("pass %s (flow %s): %w", ref.ID, ref.Flow, err)
		}
		run.Steps[i].State = types.StepStateCompleted
		run.Steps[i].Changed = changed
		logger.Debug("pass applied", "pass", ref.ID, "from", ref.Flow.String(), "changed", changed)
	}

	r.finish(run, types.FlowStateCompleted, "", len(refs))
	logger.Info("flow completed", "elapsed", time.Since(run.StartedAt))
	return run, nil
}

// finish marks steps from index onward as skipped and persists the run.
func (r *Runner) finish(run *types.FlowRun, state types.FlowState, msg string, from int) {
	for i := from; i < len(run.Steps); i++ {
		run.Steps[i].State = types.StepStateSkipped
	}
	end := time.Now()
	run.EndedAt = &end
	run.State = state
	run.Error = msg
	if err := r.store.Save(*run); err != nil {
		r.logger.Warn("persist flow run", "run_id", run.ID, "error", err)
	}
}
