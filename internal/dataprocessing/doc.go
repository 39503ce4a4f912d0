// Package dataprocessing loads delivery exports and applies the cleaning
// transforms to them.
//
// # Architecture
//
// The package is organized into four components:
//
// 1. Parser: reads xlsx or csv exports into a dataset (ParseFile, ParseReader)
// 2. ColumnSorter: stable multi-key sort with blanks last
// 3. PriorityDeduplicator: one record per identity tuple, preferring records
// whose priority column is filled
// 4. CategoricalSegmenter: groups records by route label in a fixed order,
// drops unknown labels and inserts blank separator rows after each group
//
// A Summarizer reports per-route record counts of a cleaned sheet.
//
// # Usage
//
//	ds, err := dataprocessing.ParseFile("export.xlsx", dataprocessing.ParseOptions{})
//	if err != nil {
//	    return err
//	}
//	ds, err = dataprocessing.SortByColumns(ds, []string{"Δρομολόγιο", "Περιοχή"})
//	ds, err = dataprocessing.DeduplicateWithPriority(ds, identityKey, "Αιτιολογία")
//	ds, err = dataprocessing.SegmentByCategory(ds, "Δρομολόγιο", order, 6)
//
// Every transform returns a new dataset and leaves its input untouched.
//
// # Error Handling
//
// Columns missing from the dataset are reported as SCHEMA errors and invalid
// parameters as VALIDATION errors (see internal/errors). An empty dataset is
// not an error.
package dataprocessing
