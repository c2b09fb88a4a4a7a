package types

import "time"

// FlowRun represents a single execution of an expanded flow.
type FlowRun struct {
	ID        string       `yaml:"id" json:"id"`
	Flow      FlowKey      `yaml:"flow" json:"flow"`
	State     FlowState    `yaml:"state" json:"state"`
	StartedAt time.Time    `yaml:"startedAt" json:"startedAt"`
	EndedAt   *time.Time   `yaml:"endedAt,omitempty" json:"endedAt,omitempty"`
	Steps     []StepStatus `yaml:"steps" json:"steps"`
	Error     string       `yaml:"error,omitempty" json:"error,omitempty"`
}

type FlowState string

const (
	FlowStatePending   FlowState = "pending"
	FlowStateRunning   FlowState = "running"
	FlowStateCompleted FlowState = "completed"
	FlowStateFailed    FlowState = "failed"
	FlowStateCancelled FlowState = "cancelled"
)

// StepStatus records the outcome of one pass application.
type StepStatus struct {
	Pass    PassRef   `yaml:"pass" json:"pass"`
	State   StepState `yaml:"state" json:"state"`
	Changed bool      `yaml:"changed" json:"changed"`
	Error   string    `yaml:"error,omitempty" json:"error,omitempty"`
}

type StepState string

const (
	StepStateWaiting   StepState = "waiting"
	StepStateCompleted StepState = "completed"
	StepStateFailed    StepState = "failed"
	StepStateSkipped   StepState = "skipped"
)
