// Package trace provides structured event capture for the dispatch
// core.
//
// This package defines the Logger interface and Event types for
// recording slot lifecycle and dispatch activity: registrations,
// arm/disarm transitions, deliveries, dropped events and errors. It is
// separate from operational logging (slog) - trace capture provides a
// complete machine-readable record for debugging callback wiring.
//
// # Basic Usage
//
// Components accept a Logger; pass NoopLogger to disable capture:
//
//	// For development: log to console via slog
//	logger := trace.NewSlogAdapter(slog.Default())
//
//	// For analysis: write to binary file
//	logger, _ := trace.NewFileLogger("/tmp/board.htrace")
//
//	// Both: use MultiLogger
//	logger := trace.NewMultiLogger(adapter, file)
//
// # File Format
//
// Trace files use CBOR encoding with .htrace extension. The
// halio-trace CLI tool provides viewing and statistics.
package trace
