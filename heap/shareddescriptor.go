package heap

import (
	"fmt"
	"sync/atomic"

	"github.com/joeycumines/corert/syncutil"
)

// SharedDescriptor is a refcounted handle onto a block allocated from a
// SharedManager. AddRef/Close take the place of the original's shared_ptr
// copy/destructor pair.
type SharedDescriptor struct {
	owner *SharedManager
	d     *Descriptor
	refs  atomic.Int64
}

// AddRef increments the reference count and returns the same handle, for
// callers that want to hand out another owning reference without a second
// Allocate.
func (s *SharedDescriptor) AddRef() *SharedDescriptor {
	if s.refs.Add(1) <= 1 {
		syncutil.Panic("heap: AddRef on a SharedDescriptor with no remaining references")
	}
	return s
}

// Close drops one reference. Once the last reference is dropped the
// underlying block is released back to the owning SharedManager; using the
// handle after that is invalid.
func (s *SharedDescriptor) Close() error {
	remaining := s.refs.Add(-1)
	if remaining < 0 {
		return fmt.Errorf("%w: Close called more times than AddRef", ErrInvalidArgument)
	}
	if remaining == 0 {
		s.owner.release(s.d)
	}
	return nil
}

// Start returns the descriptor's starting address.
func (s *SharedDescriptor) Start() uint32 { return s.d.Start() }

// Size returns the descriptor's size in bytes.
func (s *SharedDescriptor) Size() uint32 { return s.d.Size() }
