package cyclicexec

import (
	"context"
	"sync"

	"github.com/joeycumines/corert/clock"
)

// Executor drives Callbacks.Sample once per wake-up of a TriggerSource,
// through the four-state machine documented on Run. It does not own its
// own goroutine: callers run it via `go executor.Run(ctx)`.
type Executor struct {
	name        string
	trigger     TriggerSource
	timeout     clock.Span
	isPLLLocked func() bool
	cb          Callbacks

	mu            sync.Mutex
	state         State
	flags         asyncReqFlags
	startDelayCnt uint8
}

// New constructs an Executor. isPLLLocked may be nil to disable lock
// monitoring entirely (the WaitLock->Running and Running state checks
// that reference it are simply skipped).
func New(name string, trigger TriggerSource, timeout clock.Span, isPLLLocked func() bool, cb Callbacks) *Executor {
	if cb.Sample == nil {
		panic("cyclicexec: Callbacks.Sample must be set")
	}
	return &Executor{
		name:        name,
		trigger:     trigger,
		timeout:     timeout,
		isPLLLocked: isPLLLocked,
		cb:          cb,
	}
}

// Name returns the executor's configured name.
func (e *Executor) Name() string { return e.name }

// SetOnStateChange rebinds the OnStateChange callback, for controllers
// (ttcectrl.Controller) that must exist before they can be wired in as a
// listener, since the executor itself must already exist for the
// controller's constructor to hold a reference to it. Intended to be
// called once, before Run starts.
func (e *Executor) SetOnStateChange(fn func(State, StopReason)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cb.OnStateChange = fn
}

// GetCurrentState is safe to call from any goroutine.
func (e *Executor) GetCurrentState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// RequestStartSampling asks the executor to move from Stopped towards
// Running, delaying entry into WaitLock by startDelay additional
// iterations of the Starting state. Safe from any goroutine.
func (e *Executor) RequestStartSampling(startDelay uint8) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flags.requestStart()
	e.startDelayCnt = startDelay
}

// RequestStopSampling asks the executor to move towards Stopped. Safe
// from any goroutine.
func (e *Executor) RequestStopSampling() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flags.requestStop()
}

// Run is the executor's thread body: it loops until ctx is canceled,
// waiting on the trigger source once per iteration and advancing the
// state machine below. It is the caller's responsibility to run this on
// its own goroutine; Run blocks until ctx is canceled.
//
//	stopped:   stop-requested -> emit(stopped, request-stop)
//	           start-requested -> starting, emit(starting, none)
//	starting:  stop-requested -> stopped, emit(stopped, request-stop)
//	           delay counter == 0 -> wait-lock, emit(wait-lock, none)
//	           else -> decrement counter
//	wait-lock: wake-up timed out -> stopped, emit(stopped, trigger-timeout)
//	           stop-requested -> stopped, emit(stopped, request-stop)
//	           no pll predicate, or predicate true ->
//	               running, emit(running, none), OnStart
//	running:   timeout -> OnStop, stopped, emit(stopped, trigger-timeout)
//	           pll predicate false -> OnStop, stopped, emit(stopped, pll-loss-of-lock)
//	           stop-requested -> OnStop, stopped, emit(stopped, request-stop)
//	           else -> Sample(overrun); false return -> OnStop, stopped,
//	               emit(stopped, sample-returned-false)
//
// Cyclic runs after every iteration, in every state. Cancellation is
// polled at the top of each iteration and exits without calling OnStop,
// even from Running.
func (e *Executor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		sig, waited := e.waitForTrigger(ctx)
		if ctx.Err() != nil {
			return
		}

		e.step(sig, waited)
		e.cb.cyclic()
	}
}

// waitForTrigger blocks on e.trigger, using a timeout only in the states
// where a timeout is meaningful (WaitLock, Running); Stopped and Starting
// wait indefinitely for a wake-up, since no timeout-driven transition
// exists for them.
func (e *Executor) waitForTrigger(ctx context.Context) (sig Signal, waited bool) {
	e.mu.Lock()
	state := e.state
	e.mu.Unlock()

	if state == WaitLock || state == Running {
		sig, _ = e.trigger.WaitTimeout(ctx, e.timeout)
		return sig, true
	}
	sig, _ = e.trigger.Wait(ctx)
	return sig, true
}

// step runs one iteration of the state machine. The lock is held only
// while inspecting/mutating e.state and e.flags; callback invocations
// (which may legitimately call back into RequestStopSampling et al. from
// a controller layered on top) always happen after unlocking, so the
// executor never deadlocks against its own callbacks.
func (e *Executor) step(sig Signal, waited bool) {
	e.mu.Lock()

	switch e.state {
	case Stopped:
		switch {
		case e.flags.stop:
			e.flags.stop = false
			e.mu.Unlock()
			e.cb.onStateChange(Stopped, StopReasonRequestStop)
		case e.flags.start:
			e.flags.start = false
			e.state = Starting
			e.mu.Unlock()
			e.cb.onStateChange(Starting, StopReasonNone)
		default:
			e.mu.Unlock()
		}

	case Starting:
		switch {
		case e.flags.stop:
			e.flags.stop = false
			e.state = Stopped
			e.mu.Unlock()
			e.cb.onStateChange(Stopped, StopReasonRequestStop)
		case e.startDelayCnt == 0:
			e.state = WaitLock
			e.mu.Unlock()
			e.cb.onStateChange(WaitLock, StopReasonNone)
		default:
			e.startDelayCnt--
			e.mu.Unlock()
		}

	case WaitLock:
		switch {
		case sig == Timeout:
			e.state = Stopped
			e.mu.Unlock()
			e.cb.onStateChange(Stopped, StopReasonTriggerTimeout)
		case e.flags.stop:
			e.flags.stop = false
			e.state = Stopped
			e.mu.Unlock()
			e.cb.onStateChange(Stopped, StopReasonRequestStop)
		case e.isPLLLocked == nil || e.isPLLLocked():
			e.state = Running
			e.mu.Unlock()
			e.cb.onStateChange(Running, StopReasonNone)
			e.cb.onStart()
		default:
			e.mu.Unlock()
		}

	case Running:
		switch {
		case sig == Timeout:
			e.leaveRunningLocked(StopReasonTriggerTimeout)
		case e.isPLLLocked != nil && !e.isPLLLocked():
			e.leaveRunningLocked(StopReasonPLLLossOfLock)
		case e.flags.stop:
			e.flags.stop = false
			e.leaveRunningLocked(StopReasonRequestStop)
		default:
			e.mu.Unlock()
			if !e.cb.Sample(sig == AlreadySignaledOnce) {
				e.mu.Lock()
				e.leaveRunningLocked(StopReasonSampleReturnedFalse)
			}
		}
	}
}

// leaveRunningLocked must be called with e.mu held and e.state == Running;
// it unlocks before invoking callbacks. OnStop fires before the state
// flips and before OnStateChange, per the invariant on leaving Running.
func (e *Executor) leaveRunningLocked(reason StopReason) {
	e.mu.Unlock()
	e.cb.onStop()
	e.mu.Lock()
	e.state = Stopped
	e.mu.Unlock()
	e.cb.onStateChange(Stopped, reason)
}
