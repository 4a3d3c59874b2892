// Package logging assembles the structured slog loggers used across the
// converter.
//
// It owns the console and JSON handlers, centralizes level parsing, and
// exposes attr helpers so pipeline and rewriter code tag log lines with the
// same field names (component, file, document, stage, run_id). A no-op logger
// is provided for tests and wiring code that cannot fail.
package logging
