package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routecleaner/internal/config"
	"routecleaner/internal/dataprocessing"
	apperrors "routecleaner/internal/errors"
	"routecleaner/internal/files"
	"routecleaner/internal/operations"
	"routecleaner/internal/shared/testutil"
	"routecleaner/internal/shared/testutil/datasettest"
)

const deliveriesCSV = "name,addr,route,note\n" +
	"b,B1,Y,\n" +
	"a,A1,X,\n" +
	"a,A1,X,call first\n" +
	"z,Z1,Z,\n"

const cleanedCSV = "\ufeffname,addr,route,note\n" +
	"a,A1,X,call first\n" +
	",,,\n" +
	"b,B1,Y,\n" +
	",,,\n"

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Pipeline = config.PipelineConfig{
		IdentityKey:    []string{"addr", "route"},
		PriorityColumn: "note",
		SortKeys:       []string{"route", "name"},
		CategoryColumn: "route",
		CategoryOrder:  []string{"X", "Y"},
		SeparatorSize:  1,
	}
	cfg.Output.Prefix = "ROUTES"
	return cfg
}

func testClock() time.Time {
	return time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, cfg *config.Config) (*CleaningService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	svc, err := NewCleaningService(cfg, WithLogger(logger), WithClock(testClock))
	require.NoError(t, err)
	return svc, handler
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewCleaningService(t *testing.T) {
	svc, err := NewCleaningService(nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSeparatorSize, svc.Config().Pipeline.SeparatorSize)

	cfg := testConfig()
	cfg.Pipeline.SeparatorSize = -1
	_, err = NewCleaningService(cfg)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	cfg = testConfig()
	cfg.Output.Format = "ods"
	_, err = NewCleaningService(cfg)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestRunPipeline_ReaderToWriter(t *testing.T) {
	svc, handler := newTestService(t, testConfig())

	var out bytes.Buffer
	res, err := svc.RunPipeline(context.Background(),
		Input{Reader: strings.NewReader(deliveriesCSV), Name: "deliveries.csv"},
		Output{Writer: &out, Format: files.FormatCSV})
	require.NoError(t, err)

	assert.Equal(t, cleanedCSV, out.String())
	assert.Equal(t, files.FormatCSV, res.Format)
	assert.Empty(t, res.OutputPath)

	require.NotNil(t, res.Summary)
	assert.Equal(t, operations.RunStatusCompleted, res.Summary.Status)
	assert.Equal(t, 4, res.Summary.InputRows)
	assert.Equal(t, 3, res.Summary.UniqueRows)
	assert.Equal(t, 1, res.Summary.DuplicatesRemoved)
	assert.Equal(t, 1, res.Summary.Uncategorized)
	assert.Equal(t, 4, res.Summary.OutputRows)

	assert.Equal(t, []dataprocessing.RouteSummary{
		{Route: "X", Rank: 1, Records: 1, Share: 50},
		{Route: "Y", Rank: 2, Records: 1, Share: 50},
	}, res.Routes)

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Route sheet written")
	testutil.AssertLogAttr(t, handler, "component", "cleaning_service")
}

func TestRunPipeline_SeparatorOverride(t *testing.T) {
	svc, _ := newTestService(t, testConfig())

	var out bytes.Buffer
	res, err := svc.RunPipeline(context.Background(),
		Input{Reader: strings.NewReader(deliveriesCSV), Format: files.FormatCSV},
		Output{Writer: &out, Format: files.FormatCSV},
		WithSeparatorSize(0))
	require.NoError(t, err)

	assert.Equal(t, "\ufeffname,addr,route,note\na,A1,X,call first\nb,B1,Y,\n", out.String())
	assert.Zero(t, res.Summary.SeparatorRows)

	_, err = svc.RunPipeline(context.Background(),
		Input{Reader: strings.NewReader(deliveriesCSV), Format: files.FormatCSV},
		Output{Writer: &out, Format: files.FormatCSV},
		WithSeparatorSize(-3))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestRunPipeline_Errors(t *testing.T) {
	svc, _ := newTestService(t, testConfig())
	ctx := context.Background()

	t.Run("no input", func(t *testing.T) {
		_, err := svc.RunPipeline(ctx, Input{}, Output{Writer: &bytes.Buffer{}})
		assert.ErrorIs(t, err, ErrNoInput)
	})

	t.Run("no output", func(t *testing.T) {
		_, err := svc.RunPipeline(ctx,
			Input{Reader: strings.NewReader(deliveriesCSV), Format: files.FormatCSV},
			Output{})
		assert.ErrorIs(t, err, ErrNoOutput)
	})

	t.Run("missing column", func(t *testing.T) {
		var out bytes.Buffer
		_, err := svc.RunPipeline(ctx,
			Input{Reader: strings.NewReader("name,addr\na,A1\n"), Format: files.FormatCSV},
			Output{Writer: &out})
		require.Error(t, err)
		assert.True(t, apperrors.IsSchemaError(err))
		assert.Zero(t, out.Len(), "nothing is written when the pipeline fails")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.RunPipeline(ctx,
			Input{Path: filepath.Join(t.TempDir(), "absent.csv")},
			Output{Writer: &bytes.Buffer{}})
		require.Error(t, err)
		assert.True(t, apperrors.IsIOError(err))
	})

	t.Run("unsupported upload name", func(t *testing.T) {
		_, err := svc.RunPipeline(ctx,
			Input{Reader: strings.NewReader(deliveriesCSV), Name: "deliveries.xls"},
			Output{Writer: &bytes.Buffer{}})
		require.Error(t, err)
		assert.True(t, apperrors.IsValidationError(err))
	})
}

func TestProcessFile(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "deliveries.csv", deliveriesCSV)
	svc, _ := newTestService(t, testConfig())

	res, err := svc.ProcessFile(context.Background(), input)
	require.NoError(t, err)

	want := filepath.Join(dir, "ROUTES 19.10.2026.xlsx")
	assert.Equal(t, want, res.OutputPath)
	assert.Equal(t, input, res.InputPath)
	assert.Equal(t, files.FormatXLSX, res.Format)

	// separator rows are blank and skipped on load
	ds, err := dataprocessing.ParseFile(want, dataprocessing.ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "addr", "route", "note"}, ds.Schema().Columns())
	assert.Equal(t, []string{"a", "b"}, datasettest.Column(t, ds, "name"))
}

func TestProcessFile_Overrides(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "deliveries.csv", deliveriesCSV)
	svc, _ := newTestService(t, testConfig())

	t.Run("format", func(t *testing.T) {
		res, err := svc.ProcessFile(context.Background(), input, WithOutputFormat(files.FormatCSV))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "ROUTES 19.10.2026.csv"), res.OutputPath)

		data, err := os.ReadFile(res.OutputPath)
		require.NoError(t, err)
		assert.Equal(t, cleanedCSV, string(data))
	})

	t.Run("output path and report", func(t *testing.T) {
		out := filepath.Join(dir, "custom", "sheet.csv")
		report := filepath.Join(dir, "custom", "routes.json")

		res, err := svc.ProcessFile(context.Background(), input,
			WithOutputPath(out),
			WithSummaryReport(report))
		require.NoError(t, err)
		assert.Equal(t, out, res.OutputPath)
		assert.Equal(t, files.FormatCSV, res.Format)
		assert.Equal(t, report, res.ReportPath)

		data, err := os.ReadFile(report)
		require.NoError(t, err)
		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Equal(t, float64(2), doc["count"])
		assert.Equal(t, float64(2), doc["records"])
	})
}

func TestProcessFile_WriteFailures(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	input := writeInput(t, dir, "deliveries.csv", deliveriesCSV)
	blocker := writeInput(t, dir, "blocker", "x")
	svc, _ := newTestService(t, testConfig())

	t.Run("report fails before sheet", func(t *testing.T) {
		out := filepath.Join(dir, "kept", "sheet.csv")

		_, err := svc.ProcessFile(ctx, input,
			WithOutputPath(out),
			WithSummaryReport(filepath.Join(blocker, "routes.json")))
		require.Error(t, err)
		assert.True(t, apperrors.IsIOError(err))
		assert.NoFileExists(t, out)
	})

	t.Run("sheet failure removes report", func(t *testing.T) {
		report := filepath.Join(dir, "reports", "routes.json")

		_, err := svc.ProcessFile(ctx, input,
			WithOutputPath(filepath.Join(blocker, "sheet.csv")),
			WithSummaryReport(report))
		require.Error(t, err)
		assert.True(t, apperrors.IsIOError(err))
		assert.NoFileExists(t, report)
	})
}

func TestProcessDirectory(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "north.csv", deliveriesCSV)
	writeInput(t, dir, "south.csv", "name,addr,route,note\nq,Q1,Y,\n")
	writeInput(t, dir, "broken.csv", "name,addr\nx,X1\n")
	writeInput(t, dir, "~$north.xlsx", "lock")
	writeInput(t, dir, "notes.txt", "ignored")
	writeInput(t, dir, "ROUTES 18.10.2026 old.csv", deliveriesCSV)

	svc, handler := newTestService(t, testConfig())

	results, err := svc.ProcessDirectory(context.Background(), dir,
		WithOutputFormat(files.FormatCSV),
		WithSummaryReport("summary.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsSchemaError(err))
	assert.Contains(t, err.Error(), "broken.csv")

	require.Len(t, results, 2)
	assert.Equal(t, filepath.Join(dir, "ROUTES 19.10.2026 north.csv"), results[0].OutputPath)
	assert.Equal(t, filepath.Join(dir, "ROUTES 19.10.2026 north.summary.csv"), results[0].ReportPath)
	assert.Equal(t, filepath.Join(dir, "ROUTES 19.10.2026 south.csv"), results[1].OutputPath)
	assert.FileExists(t, results[1].OutputPath)
	assert.FileExists(t, results[1].ReportPath)
	assert.NoFileExists(t, filepath.Join(dir, "ROUTES 19.10.2026 broken.csv"))

	testutil.AssertLogContains(t, handler, slog.LevelError, "Batch file failed")
	testutil.AssertLogAttr(t, handler, "succeeded", int64(2))
}

func TestProcessDirectory_Empty(t *testing.T) {
	svc, _ := newTestService(t, testConfig())

	results, err := svc.ProcessDirectory(context.Background(), t.TempDir())
	assert.Nil(t, results)
	assert.True(t, errors.Is(err, ErrNoFilesFound))

	_, err = svc.ProcessDirectory(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.True(t, apperrors.IsIOError(err))
}

func TestProcessDirectory_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "north.csv", deliveriesCSV)
	svc, _ := newTestService(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.ProcessDirectory(ctx, dir)
	assert.Empty(t, results)
	assert.ErrorIs(t, err, context.Canceled)
}
