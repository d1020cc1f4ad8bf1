// Package observability provides structured logging and metrics for the
// intake processor.
//
// This package implements:
//   - zap logger construction from LOG_LEVEL / LOG_FORMAT
//   - Prometheus collectors for file outcomes, stage latency and
//     notifications
package observability
