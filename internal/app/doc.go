// Package app wires the route cleaner HTTP server together: configuration,
// OpenTelemetry, the cleaning and health services, the chi router with its
// middleware chain, and graceful shutdown.
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
