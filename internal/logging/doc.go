// Package logging assembles structured slog loggers and formatting helpers used
// across urldeck.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so enrichment code can tag log
// lines with run identifiers, epochs, and entry identities. A no-op logger is
// provided for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits records with the same shape.
package logging
