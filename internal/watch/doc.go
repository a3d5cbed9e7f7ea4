// Package watch drives the repeated status fetches that keep session state
// fresh while the service works asynchronously.
//
// Each watcher is a sequential fetch-store-sleep loop bound to a context, so
// at most one request per session is ever in flight and cancelling the
// context stops the loop at the next suspension point - there are no
// detached timers to orphan. Transport failures during polls retry with
// exponential backoff capped by Settings.BackoffCap; the audit and benchmark
// watchers share the same retry policy.
package watch
