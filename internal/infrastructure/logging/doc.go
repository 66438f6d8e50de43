// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for log shippers
//   - Development: colored console output
//
// Request-scoped loggers carry the request id and resolved origin so every
// pipeline stage logs with the same correlation fields.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	reqLog := logger.ForRequest(reqID, "https://example.com/")
//	reqLog.Info("advisor skipped", zap.String("reason", "no credential"))
package logging
