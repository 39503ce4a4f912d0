// Package files provides file system operations for route sheet cleaning.
//
// It contains four components:
//
// Format: maps file extensions to the spreadsheet formats the loader and
// writers understand (xlsx, csv).
//
// Discovery: finds cleanable spreadsheets in a directory for batch runs,
// skipping office lock files and previously generated outputs.
//
// Validator: checks that an input file exists, is readable and is a
// supported spreadsheet before any parsing starts.
//
// Manager: output-side helpers. Output names follow the
// "<prefix> <date>.<ext>" convention and files are written atomically.
//
// Example usage:
//
//	name := files.OutputName(cfg.Output, time.Now())
//	// "ΔΡΟΜΟΛΟΓΙΑ 19.10.2026.xlsx" when run on 18.10.2026
//
//	found, err := files.NewDiscovery(".").FindSpreadsheets("incoming", cfg.Output.Prefix)
package files
