// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework.
//
// # Context Awareness
//
// WithRayID extracts the RayID from a Fiber context and attaches it to the log entry, so all
// logs of one request can be correlated. WithBatch does the same for background batch tasks,
// tagging every entry with the batch id and its data kind.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Encoding: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	l := logger.WithBatch(log, batchID, "part-as-planned")
//	l.Warn("Row failed", zap.Int("row", 3), zap.Error(err))
package logger
