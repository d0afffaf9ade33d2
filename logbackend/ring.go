package logbackend

import (
	"sync"

	"github.com/joeycumines/corert/logfacility"
)

// Ring is a fixed-capacity ring buffer of rendered log lines, backing the
// LogHistory CLI command. It implements logfacility.Backend.
type Ring struct {
	mu       sync.Mutex
	buf      []string
	capacity int
	next     int
	full     bool
}

// NewRing constructs a Ring holding at most capacity lines; capacity must
// be positive.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]string, capacity), capacity: capacity}
}

// Process implements logfacility.Backend; severity is not recorded, the
// ring only stores the already-rendered line.
func (r *Ring) Process(line string, _ logfacility.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = line
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}
}

// Last returns up to the last n recorded lines, oldest first. n<=0 or
// n greater than the available count returns everything available.
func (r *Ring) Last(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := r.next
	if r.full {
		count = r.capacity
	}
	if n <= 0 || n > count {
		n = count
	}

	out := make([]string, n)
	start := r.next - n
	for i := 0; i < n; i++ {
		idx := (start + i + r.capacity) % r.capacity
		out[i] = r.buf[idx]
	}
	return out
}

// Clear empties the ring.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next = 0
	r.full = false
	for i := range r.buf {
		r.buf[i] = ""
	}
}
