package operations

import (
	"time"

	"routecleaner/internal/dataset"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunState carries one run's dataset and counters from stage to stage.
// It belongs to a single run and is not shared.
type RunState struct {
	ID        string
	Status    RunStatus
	StartTime time.Time
	EndTime   time.Time

	// Dataset is the current intermediate result
	Dataset *dataset.Dataset

	Steps []*StepState

	InputRows         int
	UniqueRows        int
	DuplicatesRemoved int
	PreferredRecords  int
	Uncategorized     int
	Groups            int
	SeparatorRows     int
	GroupSizes        map[string]int

	Error error
}

// NewRunState creates a pending run over ds
func NewRunState(id string, ds *dataset.Dataset) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		Dataset:   ds,
		InputRows: ds.Len(),
	}
}

// Start marks the run as running
func (s *RunState) Start(now time.Time) {
	s.Status = RunStatusRunning
	s.StartTime = now
}

// Complete marks the run as completed
func (s *RunState) Complete(now time.Time) {
	s.Status = RunStatusCompleted
	s.EndTime = now
}

// Fail marks the run as failed
func (s *RunState) Fail(now time.Time, err error) {
	s.Status = RunStatusFailed
	s.EndTime = now
	s.Error = err
}

// Duration returns the run duration so far
func (s *RunState) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary snapshots the run counters
func (s *RunState) Summary() *Summary {
	sum := &Summary{
		RunID:             s.ID,
		Status:            s.Status,
		InputRows:         s.InputRows,
		UniqueRows:        s.UniqueRows,
		DuplicatesRemoved: s.DuplicatesRemoved,
		PreferredRecords:  s.PreferredRecords,
		Uncategorized:     s.Uncategorized,
		Groups:            s.Groups,
		SeparatorRows:     s.SeparatorRows,
		GroupSizes:        s.GroupSizes,
		Duration:          s.Duration(),
	}
	if s.Status == RunStatusCompleted && s.Dataset != nil {
		sum.OutputRows = s.Dataset.Len()
	}
	for _, step := range s.Steps {
		sum.Stages = append(sum.Stages, *step)
	}
	return sum
}
