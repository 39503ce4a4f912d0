package exporter

import (
	"io"
	"log/slog"

	"routecleaner/internal/config"
	"routecleaner/internal/dataset"
	"routecleaner/internal/files"
)

// Writer renders a dataset: a header row of column names, then one row per
// record.
type Writer interface {
	Write(w io.Writer, ds *dataset.Dataset) error
	WriteFile(path string, ds *dataset.Dataset) error
	Format() files.Format
}

// ForFormat returns the writer for an output format.
func ForFormat(format files.Format, cfg config.OutputConfig, logger *slog.Logger) (Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch format {
	case files.FormatCSV:
		return NewCSVWriter(logger), nil
	case files.FormatXLSX:
		return NewWorkbookWriter(cfg.SheetName, logger), nil
	default:
		f, err := files.ParseFormat(string(format))
		if err != nil {
			return nil, err
		}
		return ForFormat(f, cfg, logger)
	}
}
