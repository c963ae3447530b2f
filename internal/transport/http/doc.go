// Package http implements the optional status server of a decode run.
//
// Routes:
//
//	GET /health        liveness plus whether the run has finished
//	GET /metrics       Prometheus exposition, when metrics are enabled
//	GET /api/summary   live RunSummary with reject ratio and top reasons
//
// Errors are rendered as errors.ErrorResponse JSON bodies.
package http
