package workqueue

import (
	"container/list"

	"github.com/joeycumines/corert/clock"
)

type itemState int32

const (
	itemDetached itemState = iota
	itemEnqueued
	itemExecuting
)

// itemCore holds the fields shared by normal and deferred work items — a
// tagged sum type rather than an inheritance hierarchy, since there are
// only two alternatives and both must share one queue's link fields.
type itemCore struct {
	ownerKey   any
	ownerID    uint32
	hasOwnerID bool
	fn         func()
	dynamic    bool

	// state and elem are only ever touched while the owning Queue's mutex
	// is held.
	state itemState
	elem  *list.Element
}

func (c *itemCore) matchesOwner(owner any) bool {
	return c.ownerKey != nil && c.ownerKey == owner
}

func (c *itemCore) matchesOwnerID(owner any, id uint32) bool {
	return c.matchesOwner(owner) && c.hasOwnerID && c.ownerID == id
}

type normalItem struct {
	itemCore
}

type deferredItem struct {
	itemCore
	at clock.Point
}

// WorkItem is a handle to a normal (FIFO, immediately eligible) work
// package. The zero value is not usable; construct with NewItem, NewWithID,
// or Func.
type WorkItem struct {
	item *normalItem
}

// DeferredWorkItem is a handle to a work package that only becomes
// eligible at or after a point in time. Construct with NewDeferred,
// NewDeferredWithID, or DeferredFunc.
type DeferredWorkItem struct {
	item *deferredItem
}

// NewItem constructs a static WorkItem owned by owner. Static items may be
// removed in bulk via Queue.RemoveOwner and are rejected by Add if already
// enqueued or executing.
func NewItem(owner any, fn func()) *WorkItem {
	return &WorkItem{item: &normalItem{itemCore: itemCore{ownerKey: owner, fn: fn}}}
}

// NewWithID is like NewItem but additionally tags the item with id, enabling
// Queue.RemoveOwnerID.
func NewWithID(owner any, id uint32, fn func()) *WorkItem {
	return &WorkItem{item: &normalItem{itemCore: itemCore{ownerKey: owner, ownerID: id, hasOwnerID: true, fn: fn}}}
}

// Func constructs a dynamic, ownerless WorkItem: a fresh one-shot item
// that can never collide with a prior Add, for fire-and-forget callers.
func Func(fn func()) *WorkItem {
	return &WorkItem{item: &normalItem{itemCore: itemCore{fn: fn, dynamic: true}}}
}

// NewDeferred constructs a static DeferredWorkItem owned by owner, eligible
// at or after at.
func NewDeferred(owner any, at clock.Point, fn func()) *DeferredWorkItem {
	return &DeferredWorkItem{item: &deferredItem{itemCore: itemCore{ownerKey: owner, fn: fn}, at: at}}
}

// NewDeferredWithID is like NewDeferred but additionally tags the item
// with id.
func NewDeferredWithID(owner any, id uint32, at clock.Point, fn func()) *DeferredWorkItem {
	return &DeferredWorkItem{item: &deferredItem{itemCore: itemCore{ownerKey: owner, ownerID: id, hasOwnerID: true, fn: fn}, at: at}}
}

// DeferredFunc constructs a dynamic, ownerless DeferredWorkItem.
func DeferredFunc(at clock.Point, fn func()) *DeferredWorkItem {
	return &DeferredWorkItem{item: &deferredItem{itemCore: itemCore{fn: fn, dynamic: true}, at: at}}
}
