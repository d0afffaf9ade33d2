// Package gid extracts the calling goroutine's runtime id, for the narrow
// set of call sites in syncutil and workqueue that need to recognize
// reentrant calls from the goroutine currently holding a lock or executing
// a work item. This is deliberately not exposed as a general-purpose
// package: goroutine identity is not part of the Go language, and every
// consumer here uses it only to detect "is this the same goroutine that
// already holds X", never for scheduling or indexing.
package gid

import (
	"bytes"
	"runtime"
	"strconv"
)

// Current parses the calling goroutine's id out of a runtime.Stack dump.
// It is comparatively expensive (a stack trace of the calling goroutine
// alone). It is called on every RecursiveMutex Lock and Unlock, on every
// work-item dispatch, and by the workqueue calls that check for removal or
// waiting from within the running item.
func Current() uint64 {
	buf := make([]byte, 64)
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			buf = buf[:n]
			break
		}
		buf = make([]byte, 2*len(buf))
	}

	// the header line looks like "goroutine 123 [running]:"
	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0
	}
	rest := buf[len(prefix):]
	end := bytes.IndexByte(rest, ' ')
	if end < 0 {
		return 0
	}
	id, err := strconv.ParseUint(string(rest[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
