// Package http implements the HTTP handlers of the route cleaner service.
// Handlers stay thin: they parse and validate the request, call the
// services layer and render the result. Every error goes through
// errors.ErrorHandler so clients always receive RFC 7807 problem details.
//
// # Endpoints
//
//	POST /api/v1/clean           upload an export, receive the route sheet
//	POST /api/v1/clean/summary   upload an export, receive the run summary as JSON
//	GET  /api/v1/clean/settings  active pipeline and output settings
//	GET  /api/health[/ready|/live]
//	GET  /api/version
//	GET  /metrics                Prometheus exposition
//
// The clean upload is multipart/form-data with a "file" part and optional
// "rows", "format" and "sheet" fields, which may also be given as query
// parameters.
package http
