// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance suited for CLI use (console
// encoding with colored level caps) as well as a json format for running
// under other tooling.
//
// # Run Correlation
//
// Every apply or reset pass is tagged with a run ID. The WithRun helper
// generates the ID and attaches it to the logger, ensuring that all log
// lines belonging to a single pass can be correlated after the fact.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: console (default for a CLI tool) or json
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	runLog, runID := logger.WithRun(log)
//	runLog.Info("apply pass started")
package logger
