package syncutil

// Semaphore is a counting semaphore backed by a buffered channel: Post
// sends a token (blocking only once the configured capacity is full),
// Wait receives one (blocking while empty), TryWait is the non-blocking
// receive.
type Semaphore struct {
	tokens chan struct{}
}

// NewSemaphore creates a Semaphore with the given capacity (the maximum
// number of outstanding, un-waited Posts) and initial count.
func NewSemaphore(capacity, initial int) *Semaphore {
	if capacity <= 0 {
		Panic("NewSemaphore: capacity must be positive")
	}
	if initial < 0 || initial > capacity {
		Panic("NewSemaphore: initial out of range")
	}
	s := &Semaphore{tokens: make(chan struct{}, capacity)}
	for i := 0; i < initial; i++ {
		s.tokens <- struct{}{}
	}
	return s
}

// Post increments the semaphore's count, blocking if the capacity is
// already exhausted (i.e. more posts than the consumer has waited for).
func (s *Semaphore) Post() {
	s.tokens <- struct{}{}
}

// Wait blocks until a token is available, then consumes it.
func (s *Semaphore) Wait() {
	<-s.tokens
}

// TryWait consumes a token without blocking, reporting whether one was
// available.
func (s *Semaphore) TryWait() bool {
	select {
	case <-s.tokens:
		return true
	default:
		return false
	}
}
