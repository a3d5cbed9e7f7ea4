// Package logging constructs slog loggers for auditflow.
//
// Console output is a compact single-line format meant for interactive use;
// json output mirrors the same fields for machine consumption. Components
// attach themselves with NewComponentLogger so every record carries a
// component attribute.
package logging
