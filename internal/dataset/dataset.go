// Package dataset holds the in-memory tabular model the cleaning pipeline
// operates on: a schema of unique column names and an ordered list of
// records. Datasets are immutable once built; every transform derives a new
// one.
package dataset

import (
	"fmt"

	apperrors "routecleaner/internal/errors"
)

// Dataset is an ordered sequence of records sharing one schema.
type Dataset struct {
	schema  Schema
	records []Record
}

// New builds a dataset, checking that every record matches the schema width.
// The records slice is copied; the rows themselves are not.
func New(schema Schema, records []Record) (*Dataset, error) {
	for i, r := range records {
		if len(r) != schema.Len() {
			return nil, apperrors.NewAppValidationError("records",
				fmt.Sprintf("row %d has %d cells, schema has %d columns", i, len(r), schema.Len()))
		}
	}
	return &Dataset{schema: schema, records: append([]Record(nil), records...)}, nil
}

// Empty returns a dataset with the schema and no rows.
func Empty(schema Schema) *Dataset {
	return &Dataset{schema: schema}
}

// Schema returns the dataset's schema.
func (d *Dataset) Schema() Schema { return d.schema }

// Len returns the number of rows, separators included.
func (d *Dataset) Len() int { return len(d.records) }

// Record returns row i.
func (d *Dataset) Record(i int) Record { return d.records[i] }

// Records returns the rows in order. The slice is a copy.
func (d *Dataset) Records() []Record {
	return append([]Record(nil), d.records...)
}

// Value returns the cell at row i in the named column. Unknown columns
// yield Blank.
func (d *Dataset) Value(i int, column string) Value {
	p := d.schema.Index(column)
	if p < 0 {
		return Blank
	}
	return d.records[i][p]
}

// Column returns every value in the named column, in row order.
func (d *Dataset) Column(column string) ([]Value, error) {
	pos, err := d.schema.Lookup(column)
	if err != nil {
		return nil, err
	}
	out := make([]Value, len(d.records))
	for i, r := range d.records {
		out[i] = r[pos[0]]
	}
	return out, nil
}

// Derive returns a dataset with the same schema and the given rows. Callers
// must only pass rows of the right width, typically rows taken from d.
func (d *Dataset) Derive(records []Record) *Dataset {
	return &Dataset{schema: d.schema, records: records}
}
