package dataset

import (
	"fmt"

	apperrors "routecleaner/internal/errors"
)

// Schema is an ordered list of unique column names.
type Schema struct {
	columns []string
	index   map[string]int
}

// NewSchema builds a schema. Column names must be unique; use
// dataprocessing.NormalizeHeaders to disambiguate raw header rows first.
func NewSchema(columns ...string) (Schema, error) {
	s := Schema{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range s.columns {
		if _, dup := s.index[c]; dup {
			return Schema{}, apperrors.NewAppValidationError("columns", fmt.Sprintf("duplicate column %q", c))
		}
		s.index[c] = i
	}
	return s, nil
}

// MustSchema is NewSchema for fixed column lists. It panics on duplicates.
func MustSchema(columns ...string) Schema {
	s, err := NewSchema(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Columns returns a copy of the column names in order.
func (s Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Len returns the number of columns.
func (s Schema) Len() int { return len(s.columns) }

// Index returns the position of a column, or -1.
func (s Schema) Index(column string) int {
	if i, ok := s.index[column]; ok {
		return i
	}
	return -1
}

// Has reports whether the column exists.
func (s Schema) Has(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Lookup resolves column names to positions. The first missing column is
// reported as a schema error.
func (s Schema) Lookup(columns ...string) ([]int, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		pos, ok := s.index[c]
		if !ok {
			return nil, apperrors.NewSchemaError(c, s.columns)
		}
		idx[i] = pos
	}
	return idx, nil
}

// Equal reports whether both schemas list the same columns in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s.columns) != len(o.columns) {
		return false
	}
	for i := range s.columns {
		if s.columns[i] != o.columns[i] {
			return false
		}
	}
	return true
}
