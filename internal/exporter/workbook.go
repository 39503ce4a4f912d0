package exporter

import (
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"routecleaner/internal/config"
	"routecleaner/internal/dataset"
	apperrors "routecleaner/internal/errors"
	"routecleaner/internal/files"
)

// WorkbookWriter writes a dataset as a single-sheet xlsx workbook with each
// column sized to its longest value.
type WorkbookWriter struct {
	sheet   string
	logger  *slog.Logger
	manager *files.Manager
}

// NewWorkbookWriter creates a workbook writer. An empty sheet name means
// the default sheet name.
func NewWorkbookWriter(sheet string, logger *slog.Logger) *WorkbookWriter {
	if sheet == "" {
		sheet = config.DefaultSheetName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{
		sheet:   sheet,
		logger:  logger,
		manager: files.NewManager(logger),
	}
}

// Format implements Writer
func (ww *WorkbookWriter) Format() files.Format { return files.FormatXLSX }

// Write encodes ds as a workbook to w. Blank cells are left unwritten, so
// separator rows come out empty.
func (ww *WorkbookWriter) Write(w io.Writer, ds *dataset.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if first := f.GetSheetName(0); first != ww.sheet {
		if err := f.SetSheetName(first, ww.sheet); err != nil {
			return apperrors.NewAppValidationError("sheet_name", err.Error())
		}
	}

	sw, err := f.NewStreamWriter(ww.sheet)
	if err != nil {
		return apperrors.NewIOError("open sheet writer", ww.sheet, err)
	}

	for j, width := range columnWidths(ds) {
		if err := sw.SetColWidth(j+1, j+1, width); err != nil {
			return apperrors.NewIOError("set column width", ww.sheet, err)
		}
	}

	columns := ds.Schema().Columns()
	header := make([]interface{}, len(columns))
	for j, name := range columns {
		header[j] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return apperrors.NewIOError("write header", ww.sheet, err)
	}

	for i := 0; i < ds.Len(); i++ {
		rec := ds.Record(i)
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = cellValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewIOError("write row", ww.sheet, err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return apperrors.NewIOError("write row", ww.sheet, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return apperrors.NewIOError("flush sheet", ww.sheet, err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return apperrors.NewIOError("write workbook", "", err)
	}

	ww.logger.Debug("Workbook written",
		slog.String("sheet", ww.sheet),
		slog.Int("columns", len(columns)),
		slog.Int("rows", ds.Len()))
	return nil
}

// WriteFile writes the workbook to path, replacing any existing file only
// once the new one is complete.
func (ww *WorkbookWriter) WriteFile(path string, ds *dataset.Dataset) error {
	return ww.manager.WriteAtomic(path, func(w io.Writer) error {
		return ww.Write(w, ds)
	})
}
