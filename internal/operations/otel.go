package operations

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"routecleaner/internal/infrastructure"
)

const (
	TracerName = "routecleaner.pipeline"
)

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs.
// The zero tracer uses the global tracer provider and records no metrics.
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer recording spans on tracer and
// counters on metrics. Either may be nil.
func NewOperationTracer(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *OperationTracer {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &OperationTracer{tracer: tracer, metrics: metrics}
}

// TraceRun creates a span for the entire run
func (ot *OperationTracer) TraceRun(ctx context.Context, runID string, inputRows int) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.input_rows", inputRows),
		),
	)
}

// TraceStage creates a span for one stage
func (ot *OperationTracer) TraceStage(ctx context.Context, runID, stageID string) (context.Context, trace.Span) {
	return ot.tracer.Start(ctx, fmt.Sprintf("pipeline.stage.%s", stageID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("stage.id", stageID),
		),
	)
}

// RecordStageCompletion ends a stage span and records its duration
func (ot *OperationTracer) RecordStageCompletion(ctx context.Context, span trace.Span, step *StepState, err error) {
	span.SetAttributes(
		attribute.Int("stage.input_records", step.InputRecords),
		attribute.Int("stage.output_records", step.OutputRecords),
		attribute.Float64("stage.duration_seconds", step.Duration.Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	ot.metrics.RecordStage(ctx, step.ID, step.Duration, err == nil)
}

// RecordRunCompletion ends the run span and records the run counters
func (ot *OperationTracer) RecordRunCompletion(ctx context.Context, span trace.Span, summary *Summary, err error) {
	span.SetAttributes(
		attribute.String("run.status", string(summary.Status)),
		attribute.Int("run.output_rows", summary.OutputRows),
		attribute.Int("run.duplicates_removed", summary.DuplicatesRemoved),
		attribute.Int("run.uncategorized", summary.Uncategorized),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	ot.metrics.RecordRun(ctx, infrastructure.RunResult{
		Status:            string(summary.Status),
		Duration:          summary.Duration,
		RecordsIn:         summary.InputRows,
		RecordsOut:        summary.OutputRows,
		DuplicatesRemoved: summary.DuplicatesRemoved,
		Uncategorized:     summary.Uncategorized,
	})
}
