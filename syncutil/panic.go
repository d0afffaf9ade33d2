package syncutil

import "fmt"

// Panic formats its arguments with fmt.Sprintf and panics with the result.
// Every Fatal-classified invariant violation in this module (double
// unlock, destroy-while-locked, a work-item functor that panics) routes
// through this single chokepoint, so a crash log always carries a
// consistent, greppable prefix.
func Panic(format string, args ...any) {
	panic(fmt.Sprintf("syncutil: "+format, args...))
}

// Recover runs fn, converting any panic raised by fn into a call to Panic
// carrying the original panic value. workqueue runs every work-item
// functor through it, which also covers the ttcectrl callbacks invoked
// from work items. Cyclic executor callbacks are called directly, so a
// panic in one propagates unchanged; log back-end panics are recovered by
// logfacility and counted as delivery drops.
func Recover(where string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			Panic("panic recovered from %s: %v", where, r)
		}
	}()
	fn()
}
