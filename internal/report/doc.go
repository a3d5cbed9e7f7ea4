// Package report writes session results to disk: an indented JSON snapshot
// of the audit, derived metrics, and benchmark, plus the raw llms.txt dump.
// Writes are atomic so interrupted exports never leave partial files.
package report
