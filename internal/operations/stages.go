package operations

import (
	"context"

	"routecleaner/internal/dataprocessing"
)

// Stage IDs
const (
	StageIDSort    = "sort"
	StageIDDedupe  = "dedupe"
	StageIDSegment = "segment"
)

// SortStage orders records by the configured sort keys
type SortStage struct {
	BaseStage
	sorter *dataprocessing.ColumnSorter
}

// NewSortStage creates a sort stage
func NewSortStage(keys []string) *SortStage {
	return &SortStage{
		BaseStage: NewBaseStage(StageIDSort, "Sort"),
		sorter:    dataprocessing.NewColumnSorter(keys...),
	}
}

// Execute implements Stage
func (s *SortStage) Execute(_ context.Context, state *RunState) error {
	sorted, err := s.sorter.Sort(state.Dataset)
	if err != nil {
		return err
	}
	state.Dataset = sorted
	return nil
}

// DedupeStage drops duplicate deliveries, preferring records whose priority
// column is filled
type DedupeStage struct {
	BaseStage
	deduplicator *dataprocessing.PriorityDeduplicator
}

// NewDedupeStage creates a dedupe stage
func NewDedupeStage(identityKey []string, priorityColumn string) *DedupeStage {
	return &DedupeStage{
		BaseStage:    NewBaseStage(StageIDDedupe, "Deduplicate"),
		deduplicator: dataprocessing.NewPriorityDeduplicator(identityKey, priorityColumn),
	}
}

// Execute implements Stage
func (s *DedupeStage) Execute(_ context.Context, state *RunState) error {
	unique, stats, err := s.deduplicator.DeduplicateWithStats(state.Dataset)
	if err != nil {
		return err
	}
	state.Dataset = unique
	state.UniqueRows = stats.UniqueRecords
	state.DuplicatesRemoved = stats.DuplicatesRemoved
	state.PreferredRecords = stats.PreferredRecords
	return nil
}

// SegmentStage groups records by route in category order with separator
// rows between groups
type SegmentStage struct {
	BaseStage
	segmenter *dataprocessing.CategoricalSegmenter
}

// NewSegmentStage creates a segment stage
func NewSegmentStage(column string, order []string, separatorSize int) *SegmentStage {
	return &SegmentStage{
		BaseStage: NewBaseStage(StageIDSegment, "Segment"),
		segmenter: dataprocessing.NewCategoricalSegmenter(column, order, separatorSize),
	}
}

// Execute implements Stage
func (s *SegmentStage) Execute(_ context.Context, state *RunState) error {
	segmented, stats, err := s.segmenter.SegmentWithStats(state.Dataset)
	if err != nil {
		return err
	}
	state.Dataset = segmented
	state.Uncategorized = stats.Uncategorized
	state.Groups = stats.Groups
	state.SeparatorRows = stats.SeparatorRows
	state.GroupSizes = stats.GroupSizes
	return nil
}
