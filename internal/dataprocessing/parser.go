package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"routecleaner/internal/dataset"
	apperrors "routecleaner/internal/errors"
	"routecleaner/internal/files"
)

// ParseOptions selects how a spreadsheet is read
type ParseOptions struct {
	// Format of the input. Empty means detect from the file name (ParseFile)
	// or xlsx (ParseReader).
	Format files.Format
	// Sheet to read from a workbook. Empty means the first sheet.
	Sheet string
	// Logger receives parse diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

func (o ParseOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// ParseFile reads a delivery export (xlsx or csv) into a dataset. The first
// row is the header; see NormalizeHeaders for how header cells become column
// names.
func ParseFile(filePath string, opts ParseOptions) (*dataset.Dataset, error) {
	if opts.Format == "" {
		format, err := files.DetectFormat(filePath)
		if err != nil {
			return nil, err
		}
		opts.Format = format
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, apperrors.NewIOError("open", filePath, err)
	}
	defer f.Close()

	ds, err := ParseReader(f, opts)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok {
			appErr.WithContext("path", filePath)
		}
		return nil, err
	}
	return ds, nil
}

// ParseReader reads a spreadsheet from r. The whole input is consumed.
func ParseReader(r io.Reader, opts ParseOptions) (*dataset.Dataset, error) {
	var (
		rows [][]dataset.Value
		err  error
	)

	switch opts.Format {
	case files.FormatCSV:
		rows, err = readCSV(r)
	case files.FormatXLSX, "":
		rows, err = readWorkbook(r, opts.Sheet)
	default:
		return nil, apperrors.NewAppValidationError("format", fmt.Sprintf("unsupported format %q", opts.Format))
	}
	if err != nil {
		return nil, err
	}

	ds, err := buildDataset(rows)
	if err != nil {
		return nil, err
	}

	opts.logger().Debug("Spreadsheet parsed",
		slog.String("format", string(opts.Format)),
		slog.Int("columns", ds.Schema().Len()),
		slog.Int("rows", ds.Len()))
	return ds, nil
}

// readWorkbook returns the typed cells of one sheet. Numeric cells become
// numbers only when their displayed text is numeric too, so date- and
// percent-formatted cells keep the text the user sees.
func readWorkbook(r io.Reader, sheet string) ([][]dataset.Value, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("sheet %q", sheet)).
			WithContext("sheets", strings.Join(f.GetSheetList(), ", "))
	}

	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	rows := make([][]dataset.Value, len(formatted))
	for i, row := range formatted {
		values := make([]dataset.Value, len(row))
		for j, text := range row {
			if strings.TrimSpace(text) == "" {
				continue
			}
			rawText := text
			if i < len(raw) && j < len(raw[i]) {
				rawText = raw[i][j]
			}
			values[j] = workbookCell(f, sheet, i, j, text, rawText)
		}
		rows[i] = values
	}
	return rows, nil
}

func workbookCell(f *excelize.File, sheet string, row, col int, text, rawText string) dataset.Value {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return textValue(text)
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil || (typ != excelize.CellTypeUnset && typ != excelize.CellTypeNumber) {
		return textValue(text)
	}

	num, err := strconv.ParseFloat(strings.TrimSpace(rawText), 64)
	if err != nil || math.IsInf(num, 0) {
		return textValue(text)
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(text), ",", ""), 64); err != nil {
		return textValue(text)
	}
	return dataset.Number(num)
}

// readCSV reads UTF-8 CSV, dropping a leading byte order mark. Rows may have
// differing lengths.
func readCSV(r io.Reader) ([][]dataset.Value, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]dataset.Value
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewParsingError("failed to read csv", err)
		}

		values := make([]dataset.Value, len(record))
		for j, field := range record {
			values[j] = csvCell(field)
		}
		rows = append(rows, values)
	}
	return rows, nil
}

// csvCell types a CSV field. A field is a number only when it is already in
// canonical form, so codes like "007" or "1e3" stay text.
func csvCell(field string) dataset.Value {
	text := strings.TrimSpace(field)
	if text == "" {
		return dataset.Blank
	}
	num, err := cast.ToFloat64E(text)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) || cast.ToString(num) != text {
		return textValue(text)
	}
	return dataset.Number(num)
}

// textValue trims and NFC-normalizes cell text so that composed and
// decomposed accents compare equal in identity keys.
func textValue(s string) dataset.Value {
	return dataset.String(norm.NFC.String(strings.TrimSpace(s)))
}

// buildDataset turns typed rows into a dataset. Row 0 is the header; rows
// with no present cell are skipped; short rows are padded with blanks.
func buildDataset(rows [][]dataset.Value) (*dataset.Dataset, error) {
	if len(rows) == 0 {
		return dataset.Empty(dataset.MustSchema()), nil
	}

	width := 0
	for _, row := range rows {
		if n := trimmedLen(row); n > width {
			width = n
		}
	}

	header := make([]string, width)
	for j := 0; j < width && j < len(rows[0]); j++ {
		header[j] = rows[0][j].String()
	}

	schema, err := dataset.NewSchema(NormalizeHeaders(header)...)
	if err != nil {
		return nil, err
	}

	records := make([]dataset.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := dataset.BlankRecord(width)
		copy(rec, row[:trimmedLen(row)])
		if rec.IsBlank() {
			continue
		}
		records = append(records, rec)
	}

	return dataset.New(schema, records)
}

// trimmedLen is the row length without trailing blank cells
func trimmedLen(row []dataset.Value) int {
	n := len(row)
	for n > 0 && row[n-1].IsBlank() {
		n--
	}
	return n
}

// NormalizeHeaders turns raw header cells into unique column names. Empty
// cells become "Unnamed: <index>" and repeated names get ".1", ".2", ...
// suffixes in order of appearance, skipping suffixes already taken.
func NormalizeHeaders(raw []string) []string {
	names := make([]string, len(raw))
	for i, h := range raw {
		h = norm.NFC.String(strings.TrimSpace(h))
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		names[i] = h
	}

	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}

	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		count := seen[n]
		seen[n] = count + 1
		if count == 0 {
			out[i] = n
			continue
		}
		candidate := fmt.Sprintf("%s.%d", n, count)
		for taken[candidate] {
			count++
			candidate = fmt.Sprintf("%s.%d", n, count)
		}
		seen[n] = count + 1
		taken[candidate] = true
		out[i] = candidate
	}
	return out
}
