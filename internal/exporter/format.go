package exporter

import (
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"routecleaner/internal/dataset"
)

// cellText renders a value for CSV output. Blanks are empty fields.
func cellText(v dataset.Value) string {
	if v.IsBlank() {
		return ""
	}
	return v.String()
}

// cellValue maps a value to what excelize stores: nil leaves the cell
// unwritten, numbers stay numeric.
func cellValue(v dataset.Value) interface{} {
	return v.Any()
}

// columnWidths returns, per column, the longest rendered value in runes,
// header included, clamped to the widest column a workbook allows.
func columnWidths(ds *dataset.Dataset) []float64 {
	columns := ds.Schema().Columns()
	widths := make([]int, len(columns))
	for j, name := range columns {
		widths[j] = utf8.RuneCountInString(name)
	}
	for i := 0; i < ds.Len(); i++ {
		for j, v := range ds.Record(i) {
			if n := utf8.RuneCountInString(cellText(v)); n > widths[j] {
				widths[j] = n
			}
		}
	}

	out := make([]float64, len(widths))
	for j, w := range widths {
		out[j] = float64(w)
		if out[j] > excelize.MaxColumnWidth {
			out[j] = excelize.MaxColumnWidth
		}
		if out[j] < 1 {
			out[j] = 1
		}
	}
	return out
}
