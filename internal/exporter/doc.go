// Package exporter writes cleaned route sheets.
//
// This package contains two writers behind the Writer interface:
//
// WorkbookWriter: a single-sheet xlsx workbook with a header row and each
// column sized to its longest value. Blank cells are left unwritten.
//
// CSVWriter: UTF-8 CSV with a BOM for Excel compatibility.
//
// Example usage:
//
//	w, err := exporter.ForFormat(files.FormatXLSX, cfg.Output, logger)
//	if err != nil {
//	    return err
//	}
//	err = w.WriteFile("ΔΡΟΜΟΛΟΓΙΑ 02.01.2025.xlsx", cleaned)
package exporter
