package operations

import (
	"log/slog"
	"time"
)

// Summary reports what one pipeline run did
type Summary struct {
	RunID             string         `json:"run_id"`
	Status            RunStatus      `json:"status"`
	InputRows         int            `json:"input_rows"`
	UniqueRows        int            `json:"unique_rows"`
	DuplicatesRemoved int            `json:"duplicates_removed"`
	PreferredRecords  int            `json:"preferred_records"`
	Uncategorized     int            `json:"uncategorized"`
	Groups            int            `json:"groups"`
	SeparatorRows     int            `json:"separator_rows"`
	OutputRows        int            `json:"output_rows"`
	GroupSizes        map[string]int `json:"group_sizes,omitempty"`
	Duration          time.Duration  `json:"duration"`
	Stages            []StepState    `json:"stages,omitempty"`
}

// LogValue implements slog.LogValuer
func (s *Summary) LogValue() slog.Value {
	if s == nil {
		return slog.Value{}
	}
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.String("status", string(s.Status)),
		slog.Int("input_rows", s.InputRows),
		slog.Int("unique_rows", s.UniqueRows),
		slog.Int("duplicates_removed", s.DuplicatesRemoved),
		slog.Int("uncategorized", s.Uncategorized),
		slog.Int("groups", s.Groups),
		slog.Int("separator_rows", s.SeparatorRows),
		slog.Int("output_rows", s.OutputRows),
		slog.Duration("duration", s.Duration),
	)
}
