package logfacility

import (
	"container/list"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/corert/syncutil"
)

// Facility is a single threaded log sink: any number of Loggers deposit
// lazily-rendered messages into a bounded FIFO, and one worker goroutine
// drains it, rendering each message and delivering it to every registered
// Backend in registration order.
//
// The front (loggers, back-ends, default-level table) is guarded by
// frontMu; the FIFO is guarded separately by queueMu. A Facility never
// holds both at once.
type Facility struct {
	frontMu       sync.Mutex
	loggers       []*Logger
	backends      []Backend
	defaultLevels map[string]Level
	hasDefaults   bool
	started       bool
	stopped       bool

	queueMu   sync.Mutex
	queueCond sync.Cond
	queue     list.List
	terminate bool

	remainingCapacity atomic.Int64

	dropCapacity        atomic.Int64
	dropCreationFailure atomic.Int64
	dropDelivery        atomic.Int64

	workerWG sync.WaitGroup
}

// New constructs a Facility whose FIFO holds up to capacity messages of
// severity below Error at once; Error and Fatal messages are always
// accepted regardless of capacity.
func New(capacity int) (*Facility, error) {
	if capacity < 1 {
		return nil, ErrInvalidArgument
	}
	f := &Facility{}
	f.remainingCapacity.Store(int64(capacity))
	f.queueCond.L = &f.queueMu
	return f, nil
}

// SetDefaultLevels installs the per-name default-level table consulted by
// Register. Passing nil clears it (new registrations get Debug and no
// warning).
func (f *Facility) SetDefaultLevels(levels map[string]Level) {
	f.frontMu.Lock()
	defer f.frontMu.Unlock()
	if levels == nil {
		f.defaultLevels = nil
		f.hasDefaults = false
		return
	}
	cp := make(map[string]Level, len(levels))
	for k, v := range levels {
		cp[k] = v
	}
	f.defaultLevels = cp
	f.hasDefaults = true
}

// Register attaches a new Logger under name, consuming its entry from the
// default-level table if one is installed. If a default table is
// installed but has no entry for name, the logger immediately emits a
// Warning "no default log level deposited" before Register returns.
// Registering the same name twice panics.
func (f *Facility) Register(name string) *Logger {
	f.frontMu.Lock()

	idx := sort.Search(len(f.loggers), func(i int) bool { return f.loggers[i].name >= name })
	if idx < len(f.loggers) && f.loggers[idx].name == name {
		f.frontMu.Unlock()
		syncutil.Panic("logfacility: logger %q already registered", name)
	}

	level := Debug
	warn := false
	if f.hasDefaults {
		if lv, ok := f.defaultLevels[name]; ok {
			level = lv
			delete(f.defaultLevels, name)
		} else {
			warn = true
		}
	}

	logger := newLogger(f, name, level)
	f.loggers = append(f.loggers, nil)
	copy(f.loggers[idx+1:], f.loggers[idx:])
	f.loggers[idx] = logger

	f.frontMu.Unlock()

	if warn {
		logger.Log(Warning, "no default log level deposited")
	}
	return logger
}

// Unregister detaches a Logger previously returned by Register. It is a
// no-op if the logger is not currently registered with this facility
// (e.g. already unregistered).
func (f *Facility) Unregister(l *Logger) {
	f.frontMu.Lock()
	defer f.frontMu.Unlock()
	idx := sort.Search(len(f.loggers), func(i int) bool { return f.loggers[i].name >= l.name })
	if idx < len(f.loggers) && f.loggers[idx] == l {
		f.loggers = append(f.loggers[:idx], f.loggers[idx+1:]...)
	}
}

// Loggers returns a snapshot of the currently registered loggers, sorted
// by name.
func (f *Facility) Loggers() []*Logger {
	f.frontMu.Lock()
	defer f.frontMu.Unlock()
	out := make([]*Logger, len(f.loggers))
	copy(out, f.loggers)
	return out
}

// RegisterBackend appends b to the delivery chain.
func (f *Facility) RegisterBackend(b Backend) {
	f.frontMu.Lock()
	f.backends = append(f.backends, b)
	f.frontMu.Unlock()
}

// UnregisterBackend removes b from the delivery chain; a no-op if b is
// not currently registered.
func (f *Facility) UnregisterBackend(b Backend) {
	f.frontMu.Lock()
	defer f.frontMu.Unlock()
	for i, existing := range f.backends {
		if existing == b {
			f.backends = append(f.backends[:i], f.backends[i+1:]...)
			return
		}
	}
}

// Start launches the worker goroutine. spawn, if non-nil, is used instead
// of a bare `go` statement to launch it (callers can route it through
// their own scheduler/pool); Start panics if called more than once.
func (f *Facility) Start(spawn func(func())) {
	f.frontMu.Lock()
	if f.started {
		f.frontMu.Unlock()
		syncutil.Panic("logfacility: Start called twice")
	}
	f.started = true
	f.frontMu.Unlock()

	f.workerWG.Add(1)
	run := func() {
		defer f.workerWG.Done()
		f.run()
	}
	if spawn != nil {
		spawn(run)
	} else {
		go run()
	}
}

// Stop signals the worker to drain the FIFO and exit, then joins it.
func (f *Facility) Stop() {
	f.queueMu.Lock()
	f.terminate = true
	f.queueCond.Broadcast()
	f.queueMu.Unlock()

	f.workerWG.Wait()

	f.frontMu.Lock()
	f.stopped = true
	f.frontMu.Unlock()
}

// Close enforces the lifecycle precondition: every logger and back-end
// must already be unregistered, and a started worker must already have
// been stopped. Violating either panics.
func (f *Facility) Close() {
	f.frontMu.Lock()
	loggers := len(f.loggers)
	backends := len(f.backends)
	started := f.started
	stopped := f.stopped
	f.frontMu.Unlock()

	if loggers != 0 || backends != 0 {
		syncutil.Panic("Close: %d logger(s) and %d backend(s) still registered", loggers, backends)
	}
	if started && !stopped {
		syncutil.Panic("Close: worker started but never stopped")
	}
}

// enqueue is called by every Logger.Log* overload once the level check
// has already passed. Messages below Error consume one unit of
// remainingCapacity; if none remains, the message is dropped and
// dropCapacity is incremented instead. Error and Fatal messages bypass
// the capacity check entirely.
func (f *Facility) enqueue(msg message) {
	if msg.severity < Error {
		for {
			cur := f.remainingCapacity.Load()
			if cur <= 0 {
				f.dropCapacity.Add(1)
				return
			}
			if f.remainingCapacity.CompareAndSwap(cur, cur-1) {
				break
			}
		}
	}

	f.queueMu.Lock()
	f.queue.PushBack(msg)
	f.queueCond.Signal()
	f.queueMu.Unlock()
}

// next blocks until a message is available or the facility has been told
// to terminate with an empty queue. drained reports whether the queue is
// now empty, i.e. this is a drain point where a drop report may be due.
func (f *Facility) next() (msg message, ok bool, drained bool) {
	f.queueMu.Lock()
	defer f.queueMu.Unlock()

	for f.queue.Len() == 0 {
		if f.terminate {
			return message{}, false, true
		}
		f.queueCond.Wait()
	}

	front := f.queue.Front()
	msg = front.Value.(message)
	f.queue.Remove(front)

	if msg.severity < Error {
		f.remainingCapacity.Add(1)
	}

	return msg, true, f.queue.Len() == 0
}

func (f *Facility) run() {
	for {
		msg, ok, drained := f.next()
		if !ok {
			f.maybeReportDrops()
			return
		}
		f.deliver(msg)
		if drained {
			f.maybeReportDrops()
		}
	}
}

// maybeReportDrops synthesizes and delivers the "N message(s) dropped"
// report once per drain of the FIFO, per §4.5, zeroing the counters it
// reports. If the synthesis itself fails to render, the counters are
// restored so the next drain retries.
func (f *Facility) maybeReportDrops() {
	capacity := f.dropCapacity.Swap(0)
	creation := f.dropCreationFailure.Swap(0)
	delivery := f.dropDelivery.Swap(0)
	total := capacity + creation + delivery
	if total == 0 {
		return
	}

	msg := message{
		severity:  Error,
		source:    "logfacility",
		render:    func() string { return fmt.Sprintf("%d message(s) dropped", total) },
		synthetic: true,
	}
	if !f.deliver(msg) {
		f.dropCreationFailure.Add(total)
	}
}

// deliver renders msg and hands it to every registered back-end. It
// returns false only when rendering the message itself failed (a panic
// recovered from the lazy render/errChain closures), which is reported as
// a creation-failure drop rather than attempted delivery.
func (f *Facility) deliver(msg message) bool {
	text, ok := f.render(msg)
	if !ok {
		if !msg.synthetic {
			f.dropCreationFailure.Add(1)
		}
		return false
	}

	lines := []string{fmt.Sprintf("[%s] %s: %s", strings.ToUpper(msg.severity.String()), msg.source, text)}
	if msg.errChain != nil {
		for i, e := range f.renderChain(msg) {
			lines = append(lines, fmt.Sprintf("        %d: %s", i+1, e))
		}
	}
	full := strings.Join(lines, "\n")

	f.frontMu.Lock()
	backends := append([]Backend(nil), f.backends...)
	f.frontMu.Unlock()

	for _, b := range backends {
		f.deliverOne(b, full, msg.severity)
	}
	return true
}

func (f *Facility) render(msg message) (text string, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return msg.render(), true
}

func (f *Facility) renderChain(msg message) (chain []string) {
	defer func() {
		if recover() != nil {
			chain = nil
		}
	}()
	return msg.errChain()
}

func (f *Facility) deliverOne(b Backend, line string, severity Level) {
	defer func() {
		if recover() != nil {
			f.dropDelivery.Add(1)
		}
	}()
	b.Process(line, severity)
}
