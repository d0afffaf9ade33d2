// Package logfacility implements a threaded log sink: named Loggers
// deposit lazily-rendered messages into a bounded FIFO owned by a
// Facility, which drains it on a single worker goroutine and fans each
// rendered line out to an ordered chain of Backend implementations.
package logfacility
