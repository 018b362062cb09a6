// Package logging assembles structured slog loggers and formatting helpers used
// across camtrace.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the run ID, phase, and file being processed. NewFromConfig tees
// human output on stderr with JSON lines in the configured log directory.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
package logging
