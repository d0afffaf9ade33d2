package workqueue

import "errors"

// ErrInvalidArgument renders spec.md §7's InvalidArgument kind: an
// argument violates a documented constraint (e.g. a nil functor).
var ErrInvalidArgument = errors.New("workqueue: invalid argument")

// ErrLogicError renders spec.md §7's LogicError kind: the call is
// well-formed but violates a usage contract, such as re-adding a static
// WorkItem that is already enqueued or executing.
var ErrLogicError = errors.New("workqueue: logic error")

// ErrOutOfResource models the queue's own injectable capacity cap, not
// host-heap exhaustion (real Go allocation failure is not a recoverable
// error in the language). It exists so ttcectrl's OnBadAllocWQ retry path
// has something concrete to test against.
var ErrOutOfResource = errors.New("workqueue: out of resource")
