// Package history records audit sessions in a local SQLite database so that
// a later invocation can pick up a session started earlier. The store keeps
// one row per session with its root URL, last known status, and page count.
package history
