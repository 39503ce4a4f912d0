// Package datasettest builds dataset fixtures for tests. It lives apart from
// testutil so packages below dataset can use the logging helpers.
package datasettest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"routecleaner/internal/dataset"
)

// DatasetBuilder assembles datasets for tests. Cells are given as Go values:
// nil and "" are blank, numbers become numeric cells, strings text cells.
type DatasetBuilder struct {
	t       testing.TB
	columns []string
	rows    []dataset.Record
}

// NewDatasetBuilder starts a dataset with the given columns
func NewDatasetBuilder(t testing.TB, columns ...string) *DatasetBuilder {
	return &DatasetBuilder{t: t, columns: columns}
}

// Row appends a record. Missing trailing cells are blank.
func (b *DatasetBuilder) Row(cells ...interface{}) *DatasetBuilder {
	b.t.Helper()
	require.LessOrEqual(b.t, len(cells), len(b.columns), "row wider than schema")

	rec := dataset.BlankRecord(len(b.columns))
	for i, c := range cells {
		rec[i] = dataset.FromAny(c)
	}
	b.rows = append(b.rows, rec)
	return b
}

// Blank appends n separator rows
func (b *DatasetBuilder) Blank(n int) *DatasetBuilder {
	for i := 0; i < n; i++ {
		b.rows = append(b.rows, dataset.BlankRecord(len(b.columns)))
	}
	return b
}

// Build returns the dataset, failing the test on schema errors
func (b *DatasetBuilder) Build() *dataset.Dataset {
	b.t.Helper()
	schema, err := dataset.NewSchema(b.columns...)
	require.NoError(b.t, err)
	ds, err := dataset.New(schema, b.rows)
	require.NoError(b.t, err)
	return ds
}

// Table renders a dataset as rows of plain Go values (nil, string, float64)
// for comparison with go-cmp or testify.
func Table(ds *dataset.Dataset) [][]interface{} {
	out := make([][]interface{}, ds.Len())
	for i := 0; i < ds.Len(); i++ {
		r := ds.Record(i)
		row := make([]interface{}, len(r))
		for j, v := range r {
			row[j] = v.Any()
		}
		out[i] = row
	}
	return out
}

// Column renders one column as strings, blanks as "".
func Column(t testing.TB, ds *dataset.Dataset, name string) []string {
	t.Helper()
	values, err := ds.Column(name)
	require.NoError(t, err)
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
