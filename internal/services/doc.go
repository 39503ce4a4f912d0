// Package services implements the business logic layer of routecleaner.
// It sits between the transports (CLI and HTTP) and the cleaning pipeline,
// so loading, cleaning and writing a route sheet is one call whichever
// surface triggered it.
//
// # Services
//
// CleaningService runs the pipeline over spreadsheet inputs:
//
//	svc, err := services.NewCleaningService(cfg,
//	    services.WithLogger(logger),
//	    services.WithMetrics(metrics))
//	if err != nil {
//	    return err
//	}
//
//	// one file, output named after the configured prefix and tomorrow's date
//	res, err := svc.ProcessFile(ctx, "export.xlsx")
//
//	// any reader to any writer
//	res, err = svc.RunPipeline(ctx,
//	    services.Input{Reader: upload, Name: "export.csv"},
//	    services.Output{Writer: w, Format: files.FormatXLSX},
//	    services.WithSeparatorSize(2))
//
// ProcessDirectory cleans every spreadsheet of a directory, each into its own
// output, and joins the per-file errors.
//
// HealthService reports liveness and readiness for the HTTP surface.
//
// # Errors
//
// Failures keep the AppError classification of the layer that raised them
// (SCHEMA, VALIDATION, IO, PARSING), so transports can map them without
// knowing which stage failed.
package services
