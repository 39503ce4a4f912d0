package dataprocessing

import (
	"sort"

	"routecleaner/internal/dataset"
)

// ColumnSorter orders records ascending by an ordered list of columns
type ColumnSorter struct {
	keys []string
}

// NewColumnSorter creates a sorter over the given key columns
func NewColumnSorter(keys ...string) *ColumnSorter {
	return &ColumnSorter{keys: append([]string(nil), keys...)}
}

// Sort returns a new dataset sorted by the sorter's keys. The sort is stable:
// rows equal on every key keep their input order. Blank cells sort after
// every present value, independently for each key.
func (s *ColumnSorter) Sort(ds *dataset.Dataset) (*dataset.Dataset, error) {
	positions, err := ds.Schema().Lookup(s.keys...)
	if err != nil {
		return nil, err
	}

	records := ds.Records()
	if len(positions) == 0 || len(records) < 2 {
		return ds.Derive(records), nil
	}

	sort.SliceStable(records, func(i, j int) bool {
		for _, p := range positions {
			if c := dataset.Compare(records[i][p], records[j][p]); c != 0 {
				return c < 0
			}
		}
		return false
	})

	return ds.Derive(records), nil
}

// SortByColumns is shorthand for NewColumnSorter(keys...).Sort(ds)
func SortByColumns(ds *dataset.Dataset, keys []string) (*dataset.Dataset, error) {
	return NewColumnSorter(keys...).Sort(ds)
}
