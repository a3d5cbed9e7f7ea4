package main

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// acquireWatchLock takes a per-session file lock so two invocations never
// poll the same session at once. The returned release function must be
// called when the watcher stops.
func acquireWatchLock(stateDir, sessionID string) (func(), error) {
	lockPath := filepath.Join(stateDir, "watch-"+sessionID+".lock")
	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire watch lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("session %s is already being watched by another auditflow process", sessionID)
	}
	return func() {
		_ = lock.Unlock()
	}, nil
}
