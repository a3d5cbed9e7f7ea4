// Package main hosts the auditflow CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into HTTP
// calls against the audit service: starting and watching audits, running
// benchmarks, chatting about results, and exporting snapshots. It centralizes
// configuration resolution, session lookup, and logging setup so subcommands
// can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
