// Package operations runs the route-sheet cleaning pipeline.
//
// A Pipeline executes three stages in a fixed order over one in-memory
// dataset:
//
//	sort -> dedupe -> segment
//
// Core Components:
//
// Pipeline: built from a config.PipelineConfig, it validates the parameters
// once at construction and then runs any number of datasets. Runs share no
// mutable state, so one Pipeline may serve concurrent callers.
//
// Stage: a single step of the run. Each stage reads the dataset from the
// RunState, replaces it with its result and records its counters.
//
// OperationError: wraps a stage failure with the stage id. It unwraps to the
// underlying errors.AppError, so callers can still classify failures with
// errors.IsSchemaError and friends.
//
// Example usage:
//
//	p, err := operations.NewPipeline(cfg.Pipeline, operations.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	cleaned, summary, err := p.Run(ctx, ds)
//
// Any stage failure aborts the run; no partial output is returned.
package operations
