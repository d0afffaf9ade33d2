package syncutil

import (
	"runtime"
	"sync"

	"github.com/joeycumines/corert/internal/gid"
)

// Mutex is a thin wrapper around sync.Mutex adding the "destroy while
// locked panics" and "double unlock panics" checks named in spec.md
// §4.1. It is non-recursive; see RecursiveMutex for the recursive
// variant.
type Mutex struct {
	mu     sync.Mutex
	locked bool
}

// Lock acquires the mutex, blocking until it is available.
func (m *Mutex) Lock() {
	m.mu.Lock()
	m.locked = true
}

// TryLock attempts to acquire the mutex without blocking, reporting
// whether it succeeded.
func (m *Mutex) TryLock() bool {
	if m.mu.TryLock() {
		m.locked = true
		return true
	}
	return false
}

// Unlock releases the mutex. Unlocking a mutex that is not locked is a
// Fatal condition and calls Panic, matching "destroy-while-locked" and
// "double unlock" in spec.md §4.1 (an unlock with no matching lock is
// the same class of misuse).
func (m *Mutex) Unlock() {
	if !m.locked {
		Panic("Mutex.Unlock: not locked")
	}
	m.locked = false
	m.mu.Unlock()
}

// CheckNotLocked panics if the mutex is currently locked. Intended to be
// called from the owning type's teardown path (Close/Stop), rendering
// "destruction while in use panics".
func (m *Mutex) CheckNotLocked() {
	if m.locked {
		Panic("Mutex: destroyed while locked")
	}
}

// RecursiveMutex is a Mutex that may be locked multiple times by the same
// goroutine, unlocking once per lock call. Goroutine identity is
// determined via the internal gid helper; see that package's doc comment
// for why this is deliberately narrow rather than a general facility.
type RecursiveMutex struct {
	mu    sync.Mutex
	owner uint64
	count int
	held  bool
}

// Lock acquires the mutex. If the calling goroutine already holds it, the
// recursion count is incremented instead of blocking.
func (m *RecursiveMutex) Lock() {
	id := gid.Current()

	m.mu.Lock()
	if m.held && m.owner == id {
		m.count++
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	m.lockSlow(id)
}

func (m *RecursiveMutex) lockSlow(id uint64) {
	for {
		m.mu.Lock()
		if !m.held {
			m.held = true
			m.owner = id
			m.count = 1
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()
		// spin-yield: a cooperative mutex normally blocks the OS thread;
		// here we spin-yield instead, because Go offers no portable
		// "block until released by a specific owner" primitive cheaper
		// than a condition variable, which would need its own mutex.
		runtime.Gosched()
	}
}

// Unlock releases one level of recursion. When the count reaches zero the
// mutex becomes available to other goroutines. Unlocking when not held by
// the calling goroutine is Fatal.
func (m *RecursiveMutex) Unlock() {
	id := gid.Current()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.held || m.owner != id {
		Panic("RecursiveMutex.Unlock: not held by calling goroutine")
	}

	m.count--
	if m.count == 0 {
		m.held = false
		m.owner = 0
	}
}
