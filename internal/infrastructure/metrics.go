package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PipelineMetrics holds the cleaning pipeline and HTTP instruments.
// All record methods are safe on a nil receiver.
type PipelineMetrics struct {
	RunsTotal         metric.Int64Counter
	RunDuration       metric.Float64Histogram
	StageDuration     metric.Float64Histogram
	RecordsIn         metric.Int64Counter
	RecordsOut        metric.Int64Counter
	DuplicatesRemoved metric.Int64Counter
	Uncategorized     metric.Int64Counter

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// RunResult is what one pipeline run reports to the metrics
type RunResult struct {
	Status            string
	Duration          time.Duration
	RecordsIn         int
	RecordsOut        int
	DuplicatesRemoved int
	Uncategorized     int
}

// NewPipelineMetrics creates the instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	var (
		m   PipelineMetrics
		err error
	)

	if m.RunsTotal, err = meter.Int64Counter("pipeline_runs",
		metric.WithDescription("Pipeline runs by status")); err != nil {
		return nil, err
	}
	if m.RunDuration, err = meter.Float64Histogram("pipeline_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.StageDuration, err = meter.Float64Histogram("pipeline_stage_duration_seconds",
		metric.WithDescription("Pipeline stage duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if m.RecordsIn, err = meter.Int64Counter("pipeline_records_in",
		metric.WithDescription("Records read into the pipeline")); err != nil {
		return nil, err
	}
	if m.RecordsOut, err = meter.Int64Counter("pipeline_records_out",
		metric.WithDescription("Records written, separator rows included")); err != nil {
		return nil, err
	}
	if m.DuplicatesRemoved, err = meter.Int64Counter("pipeline_duplicates_removed",
		metric.WithDescription("Records dropped as duplicates")); err != nil {
		return nil, err
	}
	if m.Uncategorized, err = meter.Int64Counter("pipeline_uncategorized_dropped",
		metric.WithDescription("Records dropped for a route outside the category order")); err != nil {
		return nil, err
	}
	if m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordRun records one finished pipeline run
func (m *PipelineMetrics) RecordRun(ctx context.Context, r RunResult) {
	if m == nil {
		return
	}
	status := metric.WithAttributes(attribute.String("status", r.Status))

	m.RunsTotal.Add(ctx, 1, status)
	m.RunDuration.Record(ctx, r.Duration.Seconds(), status)
	m.RecordsIn.Add(ctx, int64(r.RecordsIn))
	m.RecordsOut.Add(ctx, int64(r.RecordsOut))
	m.DuplicatesRemoved.Add(ctx, int64(r.DuplicatesRemoved))
	m.Uncategorized.Add(ctx, int64(r.Uncategorized))
}

// RecordStage records one stage execution
func (m *PipelineMetrics) RecordStage(ctx context.Context, stage string, d time.Duration, success bool) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	m.StageDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status)))
}

// RecordHTTPRequest records one served request
func (m *PipelineMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status))
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, d.Seconds(), attrs)
}
