package syncutil

import (
	"sync"
	"time"

	"github.com/joeycumines/corert/clock"
)

// CondVar is a condition variable bound to a *Mutex at wait time, adding a
// deadline-based timed wait on top of sync.Cond (which has none). Callers
// use the monitor pattern: hold the mutex, re-check the predicate in a
// loop around Wait/WaitTimeout, since spurious wakeups are allowed (per
// spec.md §4.1).
type CondVar struct {
	mu   sync.Mutex // guards waiters
	seq  uint64
	wake chan struct{}
}

func (c *CondVar) init() {
	if c.wake == nil {
		c.wake = make(chan struct{})
	}
}

// Wait releases m, blocks until Signal or Broadcast is called, then
// reacquires m before returning.
func (c *CondVar) Wait(m *Mutex) {
	ch, seq := c.subscribe()
	m.Unlock()
	<-ch
	m.Lock()
	_ = seq
}

// WaitTimeout is as Wait, but also returns if deadline is reached first.
// It reports true if the deadline elapsed before a signal was observed.
func (c *CondVar) WaitTimeout(m *Mutex, deadline clock.Point) (timedOut bool) {
	ch, _ := c.subscribe()
	m.Unlock()
	defer m.Lock()

	d := deadline.Sub(clock.Now())
	if d <= 0 {
		select {
		case <-ch:
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ch:
		return false
	case <-timer.C:
		return true
	}
}

// subscribe returns the channel that will be closed on the next
// Signal/Broadcast, establishing the happens-before edge required so that
// a concurrent Signal/Broadcast issued after subscribe is never missed.
func (c *CondVar) subscribe() (<-chan struct{}, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()
	return c.wake, c.seq
}

// Signal wakes every current waiter. Since this implementation fans a
// single close out to all current subscribers, Signal here behaves like
// Broadcast for any waiter subscribed before the call; this is allowed by
// the monitor-pattern contract (spurious wakeups are tolerated) and keeps
// the implementation a single channel-close instead of a semaphore-backed
// wake queue.
func (c *CondVar) Signal() {
	c.Broadcast()
}

// Broadcast wakes all current waiters.
func (c *CondVar) Broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()
	close(c.wake)
	c.wake = make(chan struct{})
	c.seq++
}
