// Package workqueue implements a single-consumer FIFO work queue with a
// second, time-ordered deferred list, ported from the original
// DeferredWorkQueue.
//
// Locking order, should a caller ever need to hold this queue's mutex
// alongside another package's lock: acquire the other package's lock
// first, then this queue's mutex. flushMu is held while a work item's
// functor runs, and the queue's mutex is taken while it is held, so
// flushMu comes before the queue's mutex.
package workqueue

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/joeycumines/corert/clock"
	"github.com/joeycumines/corert/internal/gid"
	"github.com/joeycumines/corert/syncutil"
)

// Queue is a single-consumer FIFO work queue with a parallel, time-ordered
// deferred list. One goroutine (the consumer, started by calling Work)
// drains both lists; any number of goroutines may Add, Remove, or query
// concurrently.
type Queue struct {
	mu       sync.Mutex
	notEmpty sync.Cond

	normal   list.List // of *normalItem
	deferred list.List // of *deferredItem

	terminate bool
	capacity  int

	// current* describe the item presently executing, if any; current is
	// nil between dispatches. runningGoroutine lets Remove and friends
	// detect a no-op self-removal from within the running item's own
	// functor.
	current          any // *normalItem or *deferredItem
	currentOwner     any
	runningGoroutine uint64
	ownerChanged     sync.Cond

	flushMu sync.Mutex
}

// New constructs an empty Queue.
func New() *Queue {
	q := &Queue{}
	q.notEmpty.L = &q.mu
	q.ownerChanged.L = &q.mu
	return q
}

// Add enqueues a *WorkItem at the tail of the normal FIFO, or a
// *DeferredWorkItem into the sorted deferred list (ordered by eligibility
// time, then FIFO among equal times). Adding a static item that is already
// enqueued or executing returns ErrLogicError. If a test capacity is set
// (see SetCapacityForTesting) and both lists together are already at that
// capacity, Add returns ErrOutOfResource instead of enqueueing — standing
// in for the allocation failure a fixed-size native queue could hit,
// which a Go slice/list backing never will on its own.
func (q *Queue) Add(item any) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && q.normal.Len()+q.deferred.Len() >= q.capacity {
		return ErrOutOfResource
	}

	switch w := item.(type) {
	case *WorkItem:
		return q.addNormal(w.item)
	case *DeferredWorkItem:
		return q.addDeferred(w.item)
	default:
		return ErrInvalidArgument
	}
}

// SetCapacityForTesting bounds the combined length of the normal and
// deferred lists; Add returns ErrOutOfResource once that bound is
// reached. A capacity of 0 (the default) means unlimited. This exists
// purely to exercise ttcectrl's OnBadAllocWQ retry path in tests, since a
// real Go queue backed by container/list never runs out of memory the way
// the original's fixed-size allocator could.
func (q *Queue) SetCapacityForTesting(capacity int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.capacity = capacity
}

func (q *Queue) addNormal(it *normalItem) error {
	if !it.dynamic && it.state != itemDetached {
		return ErrLogicError
	}
	it.state = itemEnqueued
	it.elem = q.normal.PushBack(it)
	q.notEmpty.Broadcast()
	return nil
}

func (q *Queue) addDeferred(it *deferredItem) error {
	if !it.dynamic && it.state != itemDetached {
		return ErrLogicError
	}
	it.state = itemEnqueued

	for e := q.deferred.Front(); e != nil; e = e.Next() {
		existing := e.Value.(*deferredItem)
		if it.at.Before(existing.at) {
			it.elem = q.deferred.InsertBefore(it, e)
			q.notEmpty.Broadcast()
			return nil
		}
	}
	it.elem = q.deferred.PushBack(it)
	q.notEmpty.Broadcast()
	return nil
}

// InsertAtHeadOfList enqueues a normal work item at the head of the normal
// FIFO instead of the tail, for callers that need to jump the line (e.g. a
// restart request that should preempt already-queued work).
func (q *Queue) InsertAtHeadOfList(w *WorkItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	it := w.item
	if !it.dynamic && it.state != itemDetached {
		return ErrLogicError
	}
	it.state = itemEnqueued
	it.elem = q.normal.PushFront(it)
	q.notEmpty.Broadcast()
	return nil
}

// Remove cancels a not-yet-executed item, or blocks until a currently
// executing item finishes — unless called from within that very item's
// own functor, in which case it is a documented no-op.
func (q *Queue) Remove(item any) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var core *itemCore
	switch w := item.(type) {
	case *WorkItem:
		core = &w.item.itemCore
	case *DeferredWorkItem:
		core = &w.item.itemCore
	default:
		return
	}

	for {
		switch core.state {
		case itemDetached:
			return
		case itemEnqueued:
			q.detachFromList(core)
			core.state = itemDetached
			return
		case itemExecuting:
			if gid.Current() == q.runningGoroutine {
				return
			}
			q.ownerChanged.Wait()
		}
	}
}

func (q *Queue) detachFromList(core *itemCore) {
	if core.elem == nil {
		return
	}
	if _, ok := core.elem.Value.(*normalItem); ok {
		q.normal.Remove(core.elem)
	} else {
		q.deferred.Remove(core.elem)
	}
	core.elem = nil
}

// RemoveOwner removes every not-yet-executed static item owned by owner
// from both lists, and blocks until any currently executing item owned by
// owner has finished (unless called from within that item's own functor).
func (q *Queue) RemoveOwner(owner any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeMatching(func(c *itemCore) bool { return c.matchesOwner(owner) })
}

// RemoveOwnerID is RemoveOwner narrowed to items tagged with id.
func (q *Queue) RemoveOwnerID(owner any, id uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeMatching(func(c *itemCore) bool { return c.matchesOwnerID(owner, id) })
}

// removeMatching must be called with q.mu held.
func (q *Queue) removeMatching(match func(*itemCore) bool) {
	for {
		var next *list.Element
		for e := q.normal.Front(); e != nil; e = next {
			next = e.Next()
			it := e.Value.(*normalItem)
			if match(&it.itemCore) {
				q.normal.Remove(e)
				it.elem = nil
				it.state = itemDetached
			}
		}
		for e := q.deferred.Front(); e != nil; e = next {
			next = e.Next()
			it := e.Value.(*deferredItem)
			if match(&it.itemCore) {
				q.deferred.Remove(e)
				it.elem = nil
				it.state = itemDetached
			}
		}

		core := q.currentCore()
		if core != nil && match(core) {
			if gid.Current() == q.runningGoroutine {
				return
			}
			q.ownerChanged.Wait()
			continue
		}
		return
	}
}

func (q *Queue) currentCore() *itemCore {
	switch c := q.current.(type) {
	case *normalItem:
		return &c.itemCore
	case *deferredItem:
		return &c.itemCore
	default:
		return nil
	}
}

// IsAnyInQueue reports whether owner has any item enqueued (not
// necessarily executing) in either list.
func (q *Queue) IsAnyInQueue(owner any) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for e := q.normal.Front(); e != nil; e = e.Next() {
		if e.Value.(*normalItem).matchesOwner(owner) {
			return true
		}
	}
	for e := q.deferred.Front(); e != nil; e = e.Next() {
		if e.Value.(*deferredItem).matchesOwner(owner) {
			return true
		}
	}
	return false
}

// WaitUntilCurrentWorkPackageHasBeenExecuted blocks until the item
// currently executing on behalf of owner (if any) finishes. It is a no-op
// if owner has nothing executing, and a no-op if called from within that
// item's own functor.
func (q *Queue) WaitUntilCurrentWorkPackageHasBeenExecuted(owner any) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.current == nil || q.currentOwner != owner {
			return
		}
		if gid.Current() == q.runningGoroutine {
			return
		}
		q.ownerChanged.Wait()
	}
}

// FlushNonDeferredWorkPackages blocks until every normal item enqueued at
// the moment of the call (including one currently executing) has run. New
// items added concurrently are not waited on.
func (q *Queue) FlushNonDeferredWorkPackages() {
	done := make(chan struct{})
	sentinel := Func(func() { close(done) })

	if err := q.Add(sentinel); err != nil {
		close(done)
		return
	}
	<-done
}

// RequestTermination asks the consumer goroutine running Work to return
// once the current item (if any) finishes, the normal list is empty and no
// deferred item is due; it does not preempt in-flight work. Deferred items
// whose time has not yet come are left in the list, not run.
func (q *Queue) RequestTermination() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.terminate = true
	q.notEmpty.Broadcast()
}

// Work is the consumer-goroutine entry point: it dispatches items in
// priority order (earliest-due deferred item if its time has arrived,
// else the normal FIFO head, else waits for either) until ctx is canceled
// or RequestTermination has been called and the normal list is empty with
// no deferred item due.
func (q *Queue) Work(ctx context.Context) {
	stopWatcher := q.watchCancellation(ctx)
	defer stopWatcher()

	for {
		it, ok := q.next(ctx)
		if !ok {
			return
		}
		q.dispatch(it)
	}
}

// watchCancellation wakes every blocked Wait once ctx is canceled. The
// returned func stops the watcher once Work returns.
func (q *Queue) watchCancellation(ctx context.Context) (stop func()) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			q.mu.Lock()
			q.notEmpty.Broadcast()
			q.mu.Unlock()
		case <-done:
		}
	}()
	return func() { close(done) }
}

func (q *Queue) next(ctx context.Context) (item any, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if ctx.Err() != nil {
			return nil, false
		}

		if e := q.deferred.Front(); e != nil {
			head := e.Value.(*deferredItem)
			if !head.at.After(clock.Now()) {
				q.deferred.Remove(e)
				head.elem = nil
				return head, true
			}
		}

		if e := q.normal.Front(); e != nil {
			head := e.Value.(*normalItem)
			q.normal.Remove(e)
			head.elem = nil
			return head, true
		}

		if q.terminate {
			return nil, false
		}

		if e := q.deferred.Front(); e != nil {
			head := e.Value.(*deferredItem)
			if q.waitUntil(ctx, head.at) {
				return nil, false
			}
			continue
		}

		q.notEmpty.Wait()
	}
}

// waitUntil releases q.mu, blocks until either notEmpty is signaled or
// deadline arrives, then reacquires q.mu. It reports whether ctx was
// canceled while waiting.
func (q *Queue) waitUntil(ctx context.Context, deadline clock.Point) (canceled bool) {
	d := deadline.Sub(clock.Now())
	if d <= 0 {
		return ctx.Err() != nil
	}

	timer := time.AfterFunc(d, func() {
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()

	q.notEmpty.Wait()
	return ctx.Err() != nil
}

func (q *Queue) dispatch(item any) {
	var core *itemCore
	var fn func()

	q.mu.Lock()
	switch it := item.(type) {
	case *normalItem:
		core = &it.itemCore
		fn = it.fn
	case *deferredItem:
		core = &it.itemCore
		fn = it.fn
	}
	q.current = item
	core.state = itemExecuting
	q.currentOwner = core.ownerKey
	q.runningGoroutine = gid.Current()
	q.mu.Unlock()

	q.flushMu.Lock()
	defer q.flushMu.Unlock()
	syncutil.Recover("work item functor", fn)

	q.mu.Lock()
	core.state = itemDetached
	q.current = nil
	q.currentOwner = nil
	q.runningGoroutine = 0
	q.ownerChanged.Broadcast()
	q.mu.Unlock()
}
