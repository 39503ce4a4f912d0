package files

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "routecleaner/internal/errors"
)

// Format is a supported spreadsheet encoding
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Extension returns the file extension including the dot
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type used when serving the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// ParseFormat resolves a user-supplied format name. The empty string
// resolves to xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "", "xlsx", "xlsm":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", apperrors.NewAppValidationError("format",
			fmt.Sprintf("unsupported format %q (want xlsx or csv)", s))
	}
}

// DetectFormat derives the format from a file name's extension
func DetectFormat(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", apperrors.NewAppValidationError("format",
			fmt.Sprintf("cannot detect format of %q without an extension", filepath.Base(path)))
	}
	if strings.EqualFold(ext, ".xls") {
		return "", apperrors.NewAppValidationError("format",
			"legacy .xls workbooks are not supported; save the file as .xlsx")
	}
	return ParseFormat(ext)
}

// IsSpreadsheet reports whether the name has a supported extension
func IsSpreadsheet(name string) bool {
	_, err := DetectFormat(name)
	return err == nil
}
