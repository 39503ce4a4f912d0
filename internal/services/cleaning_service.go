package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"routecleaner/internal/config"
	"routecleaner/internal/dataprocessing"
	"routecleaner/internal/dataset"
	"routecleaner/internal/exporter"
	"routecleaner/internal/files"
	"routecleaner/internal/infrastructure"
	"routecleaner/internal/operations"
)

// Input names where a run reads its spreadsheet from. Path wins over Reader.
type Input struct {
	Path   string
	Reader io.Reader
	// Name is the original file name of Reader, used to detect its format.
	Name string
	// Format overrides detection.
	Format files.Format
	// Sheet selects a workbook sheet. Empty means the first one.
	Sheet string
}

// Output names where a run writes the cleaned sheet. Writer wins over Path.
type Output struct {
	Path   string
	Writer io.Writer
	// Format overrides the format derived from Path and the configuration.
	Format files.Format
}

// Result describes one completed run
type Result struct {
	InputPath  string                        `json:"input_path,omitempty"`
	OutputPath string                        `json:"output_path,omitempty"`
	Format     files.Format                  `json:"format"`
	Summary    *operations.Summary           `json:"summary"`
	Routes     []dataprocessing.RouteSummary `json:"routes,omitempty"`
	ReportPath string                        `json:"report_path,omitempty"`
}

// CleaningService loads delivery exports, runs the cleaning pipeline over
// them and writes the route sheet
type CleaningService struct {
	cfg       config.Config
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *infrastructure.PipelineMetrics
	now       func() time.Time
	validator *files.Validator
	discovery *files.Discovery
}

// Option configures a CleaningService
type Option func(*CleaningService)

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *CleaningService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer sets the tracer handed to every pipeline run
func WithTracer(tracer trace.Tracer) Option {
	return func(s *CleaningService) { s.tracer = tracer }
}

// WithMetrics sets the metrics handed to every pipeline run
func WithMetrics(metrics *infrastructure.PipelineMetrics) Option {
	return func(s *CleaningService) { s.metrics = metrics }
}

// WithClock replaces time.Now for output naming and run timing
func WithClock(now func() time.Time) Option {
	return func(s *CleaningService) { s.now = now }
}

// RunOption adjusts a single run
type RunOption func(*runSettings)

type runSettings struct {
	separatorSize *int
	outputPath    string
	format        files.Format
	reportPath    string
}

// WithSeparatorSize overrides the configured number of separator rows
func WithSeparatorSize(n int) RunOption {
	return func(r *runSettings) { r.separatorSize = &n }
}

// WithOutputPath overrides the generated output file name
func WithOutputPath(path string) RunOption {
	return func(r *runSettings) { r.outputPath = path }
}

// WithOutputFormat overrides the configured output format
func WithOutputFormat(format files.Format) RunOption {
	return func(r *runSettings) { r.format = format }
}

// WithSummaryReport also writes the per-route summary to path, as JSON when
// path ends in .json and CSV otherwise
func WithSummaryReport(path string) RunOption {
	return func(r *runSettings) { r.reportPath = path }
}

// NewCleaningService creates a service for cfg. A nil cfg means
// config.Default(). The pipeline and output settings are validated up front.
func NewCleaningService(cfg *config.Config, opts ...Option) (*CleaningService, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if _, err := operations.NewPipeline(cfg.Pipeline); err != nil {
		return nil, err
	}
	if _, err := files.ParseFormat(cfg.Output.Format); err != nil {
		return nil, err
	}

	s := &CleaningService{
		cfg:    *cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = infrastructure.WithComponent(s.logger, "cleaning_service")
	s.validator = files.NewValidator(s.logger)
	s.discovery = files.NewDiscovery("")

	s.logger.Info("CleaningService initialized",
		slog.Int("separator_size", cfg.Pipeline.SeparatorSize),
		slog.Int("categories", len(cfg.Pipeline.CategoryOrder)),
		slog.String("output_format", cfg.Output.Format))
	return s, nil
}

// Config returns the service configuration
func (s *CleaningService) Config() config.Config {
	return s.cfg
}

// RunPipeline loads in, cleans it and writes the result to out, preceded by
// the summary report when one is requested. A failed run leaves no report
// or output file behind.
func (s *CleaningService) RunPipeline(ctx context.Context, in Input, out Output, opts ...RunOption) (*Result, error) {
	settings := applyRunOptions(opts)
	ctx = infrastructure.EnsureTraceID(ctx)

	pipeline, err := s.pipeline(settings)
	if err != nil {
		return nil, err
	}

	ds, err := s.load(ctx, in)
	if err != nil {
		return nil, err
	}

	cleaned, summary, err := pipeline.Run(ctx, ds)
	if err != nil {
		return nil, err
	}

	format, err := s.outputFormat(out, settings)
	if err != nil {
		return nil, err
	}

	res := &Result{
		InputPath:  in.Path,
		OutputPath: out.Path,
		Format:     format,
		Summary:    summary,
	}
	if out.Writer != nil {
		res.OutputPath = ""
	}

	if err := s.report(ctx, cleaned, settings.reportPath, res); err != nil {
		return nil, err
	}
	if err := s.write(ctx, cleaned, out, format); err != nil {
		if res.ReportPath != "" {
			if rmErr := os.Remove(res.ReportPath); rmErr != nil {
				s.logger.WarnContext(ctx, "Failed to remove summary report",
					slog.String("path", res.ReportPath),
					slog.String("error", rmErr.Error()))
			}
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "Route sheet written",
		slog.String("input", inputName(in)),
		slog.String("output", res.OutputPath),
		slog.String("format", string(format)),
		slog.Int("output_rows", summary.OutputRows))
	return res, nil
}

// ProcessFile cleans the spreadsheet at path into the configured output
// location, next to the input unless an output directory is configured
func (s *CleaningService) ProcessFile(ctx context.Context, path string, opts ...RunOption) (*Result, error) {
	settings := applyRunOptions(opts)

	outPath := settings.outputPath
	if outPath == "" {
		outPath = files.OutputPath(s.outputConfig(settings), path, s.now())
	}

	return s.RunPipeline(ctx, Input{Path: path}, Output{Path: outPath, Format: settings.format}, opts...)
}

// ProcessDirectory cleans every spreadsheet in dir, each into its own
// output. Earlier outputs of the tool and office lock files are skipped.
// A failing file does not stop the batch: the results of the files that
// succeeded are returned together with the joined errors of the rest.
func (s *CleaningService) ProcessDirectory(ctx context.Context, dir string, opts ...RunOption) ([]*Result, error) {
	settings := applyRunOptions(opts)

	inputs, err := s.discovery.FindSpreadsheets(dir, s.cfg.Output.Prefix)
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFilesFound, dir)
	}

	s.logger.InfoContext(ctx, "Batch started",
		slog.String("dir", dir),
		slog.Int("files", len(inputs)))

	outCfg := s.outputConfig(settings)
	now := s.now()

	var (
		results []*Result
		errs    []error
	)
	for _, f := range inputs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		outPath := files.BatchOutputPath(outCfg, f.Path, now)
		fileOpts := append(append([]RunOption(nil), opts...), WithOutputPath(outPath))
		if settings.reportPath != "" {
			fileOpts = append(fileOpts, WithSummaryReport(batchReportPath(outPath, settings.reportPath)))
		}

		res, err := s.ProcessFile(ctx, f.Path, fileOpts...)
		if err != nil {
			s.logger.ErrorContext(ctx, "Batch file failed",
				slog.String("file", f.Name),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		results = append(results, res)
	}

	s.logger.InfoContext(ctx, "Batch finished",
		slog.String("dir", dir),
		slog.Int("succeeded", len(results)),
		slog.Int("failed", len(errs)))
	return results, errors.Join(errs...)
}

func applyRunOptions(opts []RunOption) runSettings {
	var r runSettings
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (s *CleaningService) pipeline(settings runSettings) (*operations.Pipeline, error) {
	cfg := s.cfg.Pipeline
	if settings.separatorSize != nil {
		cfg = cfg.WithSeparatorSize(*settings.separatorSize)
	}
	return operations.NewPipeline(cfg,
		operations.WithLogger(s.logger),
		operations.WithTracer(s.tracer),
		operations.WithMetrics(s.metrics),
		operations.WithClock(s.now))
}

func (s *CleaningService) outputConfig(settings runSettings) config.OutputConfig {
	cfg := s.cfg.Output
	if settings.format != "" {
		cfg.Format = string(settings.format)
	}
	return cfg
}

func (s *CleaningService) load(ctx context.Context, in Input) (*dataset.Dataset, error) {
	opts := dataprocessing.ParseOptions{
		Format: in.Format,
		Sheet:  in.Sheet,
		Logger: s.logger,
	}

	var (
		ds  *dataset.Dataset
		err error
	)
	switch {
	case in.Path != "":
		var format files.Format
		if format, err = s.validator.ValidateInputFile(in.Path); err != nil {
			return nil, err
		}
		if opts.Format == "" {
			opts.Format = format
		}
		ds, err = dataprocessing.ParseFile(in.Path, opts)
	case in.Reader != nil:
		if opts.Format == "" && in.Name != "" {
			if opts.Format, err = files.DetectFormat(in.Name); err != nil {
				return nil, err
			}
		}
		ds, err = dataprocessing.ParseReader(in.Reader, opts)
	default:
		return nil, ErrNoInput
	}
	if err != nil {
		return nil, err
	}

	infrastructure.AddSpanEvent(ctx, "input.loaded",
		attribute.String("input", inputName(in)),
		attribute.Int("rows", ds.Len()))
	return ds, nil
}

// outputFormat resolves the format: explicit, then the run override, then
// the output path extension, then the configuration
func (s *CleaningService) outputFormat(out Output, settings runSettings) (files.Format, error) {
	if out.Format != "" {
		return out.Format, nil
	}
	if settings.format != "" {
		return settings.format, nil
	}
	if out.Writer == nil && out.Path != "" {
		if format, err := files.DetectFormat(out.Path); err == nil {
			return format, nil
		}
	}
	return files.ParseFormat(s.cfg.Output.Format)
}

func (s *CleaningService) write(ctx context.Context, ds *dataset.Dataset, out Output, format files.Format) error {
	w, err := exporter.ForFormat(format, s.cfg.Output, s.logger)
	if err != nil {
		return err
	}

	switch {
	case out.Writer != nil:
		err = w.Write(out.Writer, ds)
	case out.Path != "":
		err = w.WriteFile(out.Path, ds)
	default:
		return ErrNoOutput
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}
	return nil
}

func (s *CleaningService) report(ctx context.Context, ds *dataset.Dataset, path string, res *Result) error {
	summarizer := dataprocessing.NewSummarizer(s.logger, dataprocessing.SummarizerConfig{
		CategoryColumn: s.cfg.Pipeline.CategoryColumn,
		CategoryOrder:  s.cfg.Pipeline.CategoryOrder,
	})
	routes, err := summarizer.GenerateFromDataset(ctx, ds)
	if err != nil {
		return err
	}
	res.Routes = routes

	if path == "" {
		return nil
	}
	if err := summarizer.Write(ctx, path, routes); err != nil {
		return err
	}
	res.ReportPath = path
	return nil
}

// batchReportPath names a per-file summary report after the file's output,
// keeping the extension of the requested report
func batchReportPath(outputPath, reportPath string) string {
	ext := filepath.Ext(reportPath)
	if ext == "" {
		ext = ".csv"
	}
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".summary" + ext
}

func inputName(in Input) string {
	if in.Path != "" {
		return in.Path
	}
	return in.Name
}
