package operations

import (
	"context"
	"time"
)

// Stage is a single step of a pipeline run
type Stage interface {
	// ID returns the unique identifier for this stage
	ID() string

	// Name returns the human-readable name for this stage
	Name() string

	// Execute transforms state.Dataset in place and records its counters
	Execute(ctx context.Context, state *RunState) error
}

// StepStatus represents the current status of a stage
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// StepState represents the runtime state of a stage
type StepState struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Status        StepStatus    `json:"status"`
	StartTime     time.Time     `json:"start_time"`
	Duration      time.Duration `json:"duration"`
	InputRecords  int           `json:"input_records"`
	OutputRecords int           `json:"output_records"`
	Error         string        `json:"error,omitempty"`
}

// NewStepState creates a pending stage state
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:     id,
		Name:   name,
		Status: StepStatusPending,
	}
}

// Start marks the stage active
func (s *StepState) Start(now time.Time, inputRecords int) {
	s.Status = StepStatusActive
	s.StartTime = now
	s.InputRecords = inputRecords
}

// Complete marks the stage completed
func (s *StepState) Complete(now time.Time, outputRecords int) {
	s.Status = StepStatusCompleted
	s.Duration = now.Sub(s.StartTime)
	s.OutputRecords = outputRecords
}

// Fail marks the stage failed
func (s *StepState) Fail(now time.Time, err error) {
	s.Status = StepStatusFailed
	s.Duration = now.Sub(s.StartTime)
	if err != nil {
		s.Error = err.Error()
	}
}

// BaseStage provides the identity part of a Stage
type BaseStage struct {
	id   string
	name string
}

// NewBaseStage creates a new base stage
func NewBaseStage(id, name string) BaseStage {
	return BaseStage{id: id, name: name}
}

// ID returns the stage ID
func (s *BaseStage) ID() string {
	return s.id
}

// Name returns the stage name
func (s *BaseStage) Name() string {
	return s.name
}
