// Package logging assembles the structured slog loggers used by the CLI, the
// HTTP API and the catalog pipeline.
//
// It owns the console and JSON handlers, level parsing, output fan-out to
// stderr plus the daily log file, and a small set of attribute helpers and
// standardized keys (component, event_type, error_hint, impact,
// correlation_id). Context helpers tag log lines with the API request
// ID carried by a context.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
