package dataprocessing

import (
	"routecleaner/internal/dataset"
)

// PriorityDeduplicator keeps one record per identity-key tuple. When a
// priority column is set, a record with a non-blank priority value wins
// over blank siblings in the same group.
type PriorityDeduplicator struct {
	identityKey    []string
	priorityColumn string
}

// NewPriorityDeduplicator creates a deduplicator. An empty priorityColumn
// disables the priority reorder.
func NewPriorityDeduplicator(identityKey []string, priorityColumn string) *PriorityDeduplicator {
	return &PriorityDeduplicator{
		identityKey:    append([]string(nil), identityKey...),
		priorityColumn: priorityColumn,
	}
}

// DedupeStatistics describes one deduplication pass
type DedupeStatistics struct {
	InputRecords      int
	UniqueRecords     int
	DuplicatesRemoved int
	// PreferredRecords counts retained records whose priority value is set.
	PreferredRecords int
}

// Deduplicate returns the first record of each identity group after moving
// prioritized records to the front. Output order is that reordered sequence
// restricted to the retained records.
func (d *PriorityDeduplicator) Deduplicate(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out, _, err := d.DeduplicateWithStats(ds)
	return out, err
}

// DeduplicateWithStats performs deduplication and returns statistics
func (d *PriorityDeduplicator) DeduplicateWithStats(ds *dataset.Dataset) (*dataset.Dataset, DedupeStatistics, error) {
	schema := ds.Schema()
	keyPos, err := schema.Lookup(d.identityKey...)
	if err != nil {
		return nil, DedupeStatistics{}, err
	}

	priorityPos := -1
	if d.priorityColumn != "" {
		pos, err := schema.Lookup(d.priorityColumn)
		if err != nil {
			return nil, DedupeStatistics{}, err
		}
		priorityPos = pos[0]
	}

	records := ds.Records()
	if priorityPos >= 0 {
		records = partitionByPriority(records, priorityPos)
	}

	seen := make(map[string]struct{}, len(records))
	kept := make([]dataset.Record, 0, len(records))
	stats := DedupeStatistics{InputRecords: len(records)}

	for _, r := range records {
		key := r.Key(keyPos)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
		if priorityPos >= 0 && !r[priorityPos].IsBlank() {
			stats.PreferredRecords++
		}
	}

	stats.UniqueRecords = len(kept)
	stats.DuplicatesRemoved = stats.InputRecords - stats.UniqueRecords
	return ds.Derive(kept), stats, nil
}

// partitionByPriority moves rows with a non-blank value at pos ahead of the
// rest, keeping relative order within both halves.
func partitionByPriority(records []dataset.Record, pos int) []dataset.Record {
	out := make([]dataset.Record, 0, len(records))
	for _, r := range records {
		if !r[pos].IsBlank() {
			out = append(out, r)
		}
	}
	for _, r := range records {
		if r[pos].IsBlank() {
			out = append(out, r)
		}
	}
	return out
}

// DeduplicateWithPriority is shorthand for
// NewPriorityDeduplicator(identityKey, priorityColumn).Deduplicate(ds)
func DeduplicateWithPriority(ds *dataset.Dataset, identityKey []string, priorityColumn string) (*dataset.Dataset, error) {
	return NewPriorityDeduplicator(identityKey, priorityColumn).Deduplicate(ds)
}
