// Package session holds the shared state for one audit session.
//
// The Store is an explicit context object constructed once per session and
// passed by reference to every component that reads or writes session state.
// Writers replace whole fields under a single mutex; there is no partial
// in-place mutation, so the last writer for a field wins.
package session
