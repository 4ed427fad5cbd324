package phttp

import "sync"

// lastError is a process-wide diagnostic slot holding the most recent error
// that reached the top of any pipeline. Concurrent requests overwrite each
// other here, so this is a debugging aid only: the authoritative error
// channel is the per-call error return value.
var lastError struct {
	sync.Mutex
	err error
}

// recordLastError stores err in the diagnostic slot. Nil errors are ignored.
func recordLastError(err error) {
	if err == nil {
		return
	}

	lastError.Lock()
	lastError.err = err
	lastError.Unlock()
}

// LastError returns the most recent error recorded by any pipeline in this
// process, or nil. Non-authoritative under concurrency; see the package
// documentation.
func LastError() error {
	lastError.Lock()
	defer lastError.Unlock()

	return lastError.err
}

// ClearLastError empties the diagnostic slot.
func ClearLastError() {
	lastError.Lock()
	lastError.err = nil
	lastError.Unlock()
}
