package exporter

import (
	"encoding/csv"
	"io"
	"log/slog"

	"routecleaner/internal/dataset"
	apperrors "routecleaner/internal/errors"
	"routecleaner/internal/files"
)

// utf8BOM helps Excel recognize UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger    *slog.Logger
	manager   *files.Manager
	BOMPrefix bool
}

// NewCSVWriter creates a CSV writer that prefixes output with a UTF-8 BOM
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{
		logger:    logger,
		manager:   files.NewManager(logger),
		BOMPrefix: true,
	}
}

// Format implements Writer
func (cw *CSVWriter) Format() files.Format { return files.FormatCSV }

// Write writes the header and every record of ds to w
func (cw *CSVWriter) Write(w io.Writer, ds *dataset.Dataset) error {
	if cw.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return apperrors.NewIOError("write BOM", "", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ds.Schema().Columns()); err != nil {
		return apperrors.NewIOError("write headers", "", err)
	}

	row := make([]string, ds.Schema().Len())
	for i := 0; i < ds.Len(); i++ {
		for j, v := range ds.Record(i) {
			row[j] = cellText(v)
		}
		if err := writer.Write(row); err != nil {
			return apperrors.NewIOError("write record", "", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewIOError("flush", "", err)
	}

	cw.logger.Debug("CSV written",
		slog.Int("columns", ds.Schema().Len()),
		slog.Int("record_count", ds.Len()))
	return nil
}

// WriteFile writes ds to path atomically
func (cw *CSVWriter) WriteFile(path string, ds *dataset.Dataset) error {
	return cw.manager.WriteAtomic(path, func(w io.Writer) error {
		return cw.Write(w, ds)
	})
}
