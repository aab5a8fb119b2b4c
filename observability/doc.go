// Package observability provides a metrics extension for fluxury. The
// MetricsExtension implements lifecycle hooks to record counters for
// registrations, store creation, dispatches and state changes.
//
// For per-callback tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
