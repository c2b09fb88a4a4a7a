package flow

import (
	"fmt"
	"sync"

	"github.com/sameehj/hlsflow/pkg/types"
)

// StateStore keeps flow run snapshots for the lifetime of the process.
type StateStore interface {
	Save(types.FlowRun) error
	Load(id string) (types.FlowRun, error)
}

type MemoryStateStore struct {
	mu   sync.RWMutex
	runs map[string]types.FlowRun
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{runs: make(map[string]types.FlowRun)}
}

func (s *MemoryStateStore) Save(run types.FlowRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.Steps = append([]types.StepStatus(nil), run.Steps...)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStateStore) Load(id string) (types.FlowRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return types.FlowRun{}, fmt.Errorf("flow run not found: %s", id)
	}
	return run, nil
}
