package dataprocessing

import (
	"fmt"

	"routecleaner/internal/dataset"
	apperrors "routecleaner/internal/errors"
)

// CategoricalSegmenter groups records by a ranked list of category labels and
// appends a run of blank separator rows after every non-empty group.
// Records whose label is not ranked are dropped.
type CategoricalSegmenter struct {
	column        string
	order         []string
	separatorSize int
}

// NewCategoricalSegmenter creates a segmenter
func NewCategoricalSegmenter(column string, order []string, separatorSize int) *CategoricalSegmenter {
	return &CategoricalSegmenter{
		column:        column,
		order:         append([]string(nil), order...),
		separatorSize: separatorSize,
	}
}

// SegmentStatistics describes one segmentation pass
type SegmentStatistics struct {
	InputRecords  int
	Groups        int
	Uncategorized int
	SeparatorRows int
	OutputRecords int
	// GroupSizes maps each emitted label to its record count.
	GroupSizes map[string]int
}

// Segment returns the grouped dataset
func (s *CategoricalSegmenter) Segment(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out, _, err := s.SegmentWithStats(ds)
	return out, err
}

// SegmentWithStats performs segmentation and returns statistics
func (s *CategoricalSegmenter) SegmentWithStats(ds *dataset.Dataset) (*dataset.Dataset, SegmentStatistics, error) {
	if s.separatorSize < 0 {
		return nil, SegmentStatistics{}, apperrors.NewAppValidationError("separator_size",
			fmt.Sprintf("must be non-negative, got %d", s.separatorSize))
	}

	rank := make(map[string]int, len(s.order))
	for i, label := range s.order {
		if _, dup := rank[label]; dup {
			return nil, SegmentStatistics{}, apperrors.NewAppValidationError("category_order",
				fmt.Sprintf("label %q listed more than once", label))
		}
		rank[label] = i
	}

	pos, err := ds.Schema().Lookup(s.column)
	if err != nil {
		return nil, SegmentStatistics{}, err
	}
	col := pos[0]

	stats := SegmentStatistics{
		InputRecords: ds.Len(),
		GroupSizes:   make(map[string]int),
	}

	buckets := make([][]dataset.Record, len(s.order))
	for i := 0; i < ds.Len(); i++ {
		r := ds.Record(i)
		v := r[col]
		if v.IsBlank() {
			stats.Uncategorized++
			continue
		}
		k, ok := rank[v.String()]
		if !ok {
			stats.Uncategorized++
			continue
		}
		buckets[k] = append(buckets[k], r)
	}

	width := ds.Schema().Len()
	var out []dataset.Record
	for k, group := range buckets {
		if len(group) == 0 {
			continue
		}
		out = append(out, group...)
		for n := 0; n < s.separatorSize; n++ {
			out = append(out, dataset.BlankRecord(width))
		}
		stats.Groups++
		stats.GroupSizes[s.order[k]] = len(group)
	}

	stats.SeparatorRows = stats.Groups * s.separatorSize
	stats.OutputRecords = len(out)
	return ds.Derive(out), stats, nil
}

// SegmentByCategory is shorthand for
// NewCategoricalSegmenter(column, order, separatorSize).Segment(ds)
func SegmentByCategory(ds *dataset.Dataset, column string, order []string, separatorSize int) (*dataset.Dataset, error) {
	return NewCategoricalSegmenter(column, order, separatorSize).Segment(ds)
}
