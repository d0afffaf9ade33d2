package heap

import (
	"sync"

	"github.com/joeycumines/corert/syncutil"
)

// SharedManager wraps a Manager with a mutex and hands out refcounted
// SharedDescriptor handles, standing in for the original's RAII-based
// MemoryDescriptorSPTS joint-ownership model: Go has no destructors, so
// ownership is made explicit instead — the reference returned by Allocate
// and every AddRef must each be matched by a Close, and the underlying Descriptor is only released back to the
// Manager when the last reference closes.
type SharedManager struct {
	mu sync.Mutex
	m  *Manager
}

// NewShared constructs a SharedManager with the same validation as New.
func NewShared(minimumAlignment uint16, baseAddress uint32, size uint32, maxSizeInFirstBucket uint32, nBuckets uint32) (*SharedManager, error) {
	m, err := New(minimumAlignment, baseAddress, size, maxSizeInFirstBucket, nBuckets)
	if err != nil {
		return nil, err
	}
	return &SharedManager{m: m}, nil
}

// Allocate behaves like Manager.Allocate but returns a refcounted handle
// with one reference already held.
func (s *SharedManager) Allocate(size uint32) (*SharedDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.m.Allocate(size)
	if err != nil || d == nil {
		return nil, err
	}
	sd := &SharedDescriptor{owner: s, d: d}
	sd.refs.Store(1)
	return sd, nil
}

// AnyAllocations reports whether any block is currently allocated.
func (s *SharedManager) AnyAllocations() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.AnyAllocations()
}

// Statistics returns a snapshot of the underlying Manager's bookkeeping.
func (s *SharedManager) Statistics() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Statistics()
}

func (s *SharedManager) release(d *Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// the descriptor pool and free list are only ever touched while
	// s.mu is held, so this cannot race with a concurrent Allocate.
	if err := s.m.Release(d); err != nil {
		syncutil.Panic("heap: shared release of live descriptor failed: %v", err)
	}
}
