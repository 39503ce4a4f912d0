package operations

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"routecleaner/internal/config"
	"routecleaner/internal/dataset"
	"routecleaner/internal/infrastructure"
)

// Pipeline runs sort, dedupe and segment over a dataset
type Pipeline struct {
	cfg     config.PipelineConfig
	stages  []Stage
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
	now     func() time.Time
	newID   func() string
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer records a span per run and per stage
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = tracer }
}

// WithMetrics records run and stage counters
func WithMetrics(metrics *infrastructure.PipelineMetrics) Option {
	return func(p *Pipeline) { p.metrics = metrics }
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunIDs replaces the run id generator, for tests
func WithRunIDs(newID func() string) Option {
	return func(p *Pipeline) { p.newID = newID }
}

// NewPipeline validates cfg and builds the three stages from it
func NewPipeline(cfg config.PipelineConfig, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, WrapError(err, "", "invalid pipeline configuration")
	}

	p := &Pipeline{
		cfg: cfg,
		stages: []Stage{
			NewSortStage(cfg.SortKeys),
			NewDedupeStage(cfg.IdentityKey, cfg.PriorityColumn),
			NewSegmentStage(cfg.CategoryColumn, cfg.CategoryOrder, cfg.SeparatorSize),
		},
		logger: slog.Default(),
		now:    time.Now,
		newID:  infrastructure.GenerateTraceID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the pipeline parameters
func (p *Pipeline) Config() config.PipelineConfig {
	return p.cfg
}

// Stages returns the stage IDs in execution order
func (p *Pipeline) Stages() []string {
	ids := make([]string, len(p.stages))
	for i, s := range p.stages {
		ids[i] = s.ID()
	}
	return ids
}

// Run cleans ds. It returns the cleaned dataset and a summary, or the first
// stage error wrapped in an OperationError and no dataset. The input is not
// modified. The run id is taken from the context trace id when present.
func (p *Pipeline) Run(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, *Summary, error) {
	runID := infrastructure.GetTraceID(ctx)
	if runID == "" {
		runID = p.newID()
		ctx = infrastructure.WithTraceID(ctx, runID)
	}

	state := NewRunState(runID, ds)
	state.Start(p.now())

	ot := NewOperationTracer(p.tracer, p.metrics)
	ctx, span := ot.TraceRun(ctx, runID, ds.Len())

	logger := p.logger.With(slog.String("run_id", runID))
	logger.InfoContext(ctx, "Pipeline run started",
		slog.Int("input_rows", ds.Len()),
		slog.Int("columns", ds.Schema().Len()))

	for _, stage := range p.stages {
		if err := p.runStage(ctx, ot, logger, stage, state); err != nil {
			state.Fail(p.now(), err)
			summary := state.Summary()
			ot.RecordRunCompletion(ctx, span, summary, err)
			logger.ErrorContext(ctx, "Pipeline run failed",
				slog.String("stage", stage.ID()),
				slog.String("error", err.Error()))
			return nil, summary, err
		}
	}

	state.Complete(p.now())
	summary := state.Summary()
	ot.RecordRunCompletion(ctx, span, summary, nil)
	logger.InfoContext(ctx, "Pipeline run completed", slog.Any("summary", summary))

	return state.Dataset, summary, nil
}

func (p *Pipeline) runStage(ctx context.Context, ot *OperationTracer, logger *slog.Logger, stage Stage, state *RunState) error {
	step := NewStepState(stage.ID(), stage.Name())
	state.Steps = append(state.Steps, step)

	ctx, span := ot.TraceStage(ctx, state.ID, stage.ID())
	step.Start(p.now(), state.Dataset.Len())
	logger.DebugContext(ctx, "Stage started",
		slog.String("stage", stage.ID()),
		slog.Int("input_records", step.InputRecords))

	if err := stage.Execute(ctx, state); err != nil {
		wrapped := WrapError(err, stage.ID(), stage.Name()+" failed")
		step.Fail(p.now(), wrapped)
		ot.RecordStageCompletion(ctx, span, step, wrapped)
		return wrapped
	}

	step.Complete(p.now(), state.Dataset.Len())
	ot.RecordStageCompletion(ctx, span, step, nil)
	logger.DebugContext(ctx, "Stage completed",
		slog.String("stage", stage.ID()),
		slog.Int("output_records", step.OutputRecords),
		slog.Duration("duration", step.Duration))
	return nil
}
