package dataprocessing

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"routecleaner/internal/dataset"
	"routecleaner/internal/errors"
)

// Summarizer builds per-route summaries of a cleaned route sheet, the
// companion report printed next to the workbook.
type Summarizer struct {
	logger     *slog.Logger
	column     string
	order      []string
	dateFormat string
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	CategoryColumn string   // Column holding the route label
	CategoryOrder  []string // Route labels in sheet order
	DateFormat     string   // Format of generated_at in JSON output
}

// RouteSummary is the record count of one route in the cleaned sheet.
type RouteSummary struct {
	Route   string  `json:"route" csv:"Route"`
	Rank    int     `json:"rank" csv:"Rank"`
	Records int     `json:"records" csv:"Records"`
	Share   float64 `json:"share_percent" csv:"SharePercent"`
}

// NewSummarizer creates a route summarizer.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.DateFormat == "" {
		config.DateFormat = time.RFC3339
	}

	return &Summarizer{
		logger:     logger,
		column:     config.CategoryColumn,
		order:      append([]string(nil), config.CategoryOrder...),
		dateFormat: config.DateFormat,
	}
}

// GenerateFromDataset counts the non-separator records of each route, in
// category order. Routes with no records are omitted.
func (s *Summarizer) GenerateFromDataset(ctx context.Context, ds *dataset.Dataset) ([]RouteSummary, error) {
	values, err := ds.Column(s.column)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "generating route summaries",
		slog.String("column", s.column),
		slog.Int("record_count", len(values)))

	counts := make(map[string]int, len(s.order))
	total := 0
	for i, v := range values {
		if ds.Record(i).IsBlank() || v.IsBlank() {
			continue
		}
		counts[v.String()]++
		total++
	}

	summaries := make([]RouteSummary, 0, len(counts))
	for rank, route := range s.order {
		n := counts[route]
		if n == 0 {
			continue
		}
		summaries = append(summaries, RouteSummary{
			Route:   route,
			Rank:    rank + 1,
			Records: n,
			Share:   float64(n) * 100 / float64(total),
		})
	}

	s.logger.InfoContext(ctx, "generated route summaries",
		slog.Int("route_count", len(summaries)),
		slog.Int("record_count", total))

	return summaries, nil
}

// WriteCSV writes route summaries to a CSV file.
func (s *Summarizer) WriteCSV(ctx context.Context, path string, summaries []RouteSummary) error {
	err := createReport(path, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		if err := writer.Write([]string{"Route", "Rank", "Records", "SharePercent"}); err != nil {
			return errors.NewIOError("write header", path, err)
		}
		for _, summary := range summaries {
			row := []string{
				summary.Route,
				fmt.Sprintf("%d", summary.Rank),
				fmt.Sprintf("%d", summary.Records),
				fmt.Sprintf("%.2f", summary.Share),
			}
			if err := writer.Write(row); err != nil {
				return errors.NewIOError("write row", path, err)
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return errors.NewIOError("flush", path, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "wrote route summaries to CSV",
		slog.String("path", path),
		slog.Int("summary_count", len(summaries)))
	return nil
}

// WriteJSON writes route summaries with metadata to a JSON file.
func (s *Summarizer) WriteJSON(ctx context.Context, path string, summaries []RouteSummary) error {
	total := 0
	for _, summary := range summaries {
		total += summary.Records
	}
	jsonData := map[string]interface{}{
		"routes":       summaries,
		"count":        len(summaries),
		"records":      total,
		"generated_at": time.Now().Format(s.dateFormat),
		"format":       "route_summary_v1",
	}

	err := createReport(path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(jsonData); err != nil {
			return errors.NewIOError("encode", path, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "wrote route summaries to JSON",
		slog.String("path", path),
		slog.Int("summary_count", len(summaries)))
	return nil
}

// Write picks CSV or JSON from the file extension.
func (s *Summarizer) Write(ctx context.Context, path string, summaries []RouteSummary) error {
	if filepath.Ext(path) == ".json" {
		return s.WriteJSON(ctx, path, summaries)
	}
	return s.WriteCSV(ctx, path, summaries)
}

// createReport creates path, runs write against it and closes it. A close
// failure is returned as an IO error.
func createReport(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewIOError("create directory", filepath.Dir(path), err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewIOError("create", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.NewIOError("close", path, cerr)
		}
	}()

	return write(file)
}
