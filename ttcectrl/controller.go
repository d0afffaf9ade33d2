package ttcectrl

import (
	"sync"

	"github.com/joeycumines/corert/cyclicexec"
	"github.com/joeycumines/corert/workqueue"
)

// Controller wraps a cyclicexec.Executor and a workqueue.Queue, exposing
// asynchronous Start/Stop and automatic restart after PLL loss-of-lock.
// Every callback it invokes runs on the work queue's single consumer
// goroutine except OnStarting/OnStopPending, which run synchronously
// within the StartAsync/StopAsync call that triggers them — so no two
// callbacks for one Controller are ever concurrent.
type Controller struct {
	executor *cyclicexec.Executor
	wq       *workqueue.Queue
	cb       Callbacks

	mu                      sync.Mutex
	cond                    sync.Cond
	state                   State
	startLocks              uint8
	restartBudgetConfigured uint8
	remainingRestarts       uint8
}

// New constructs a Controller stopped, fronting executor and dispatching
// its own processing of executor notifications onto wq. It wires itself
// in as executor's OnStateChange callback; executor must not already have
// one set, and Run must not yet be running on it.
func New(executor *cyclicexec.Executor, wq *workqueue.Queue, restartAttemptsAfterLossOfLock uint8, cb Callbacks) *Controller {
	c := &Controller{
		executor:                executor,
		wq:                      wq,
		cb:                      cb,
		restartBudgetConfigured: restartAttemptsAfterLossOfLock,
	}
	c.cond.L = &c.mu
	executor.SetOnStateChange(c.onExecutorStateChange)
	return c
}

// GetCurrentState is safe to call from any goroutine.
func (c *Controller) GetCurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LockStart increments the start-lock counter (0..MaxLocks); while it is
// nonzero, StartAsync returns ResultLocked instead of starting.
func (c *Controller) LockStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startLocks < MaxLocks {
		c.startLocks++
	}
}

// UnlockStart decrements the start-lock counter, saturating at 0.
func (c *Controller) UnlockStart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.startLocks > 0 {
		c.startLocks--
	}
}

// SetRestartAttemptsAfterLossOfLock reconfigures the restart budget used
// the next time RefreshRemainingStartAttempts or StartAsync runs.
func (c *Controller) SetRestartAttemptsAfterLossOfLock(n uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.restartBudgetConfigured = n
}

// RefreshRemainingStartAttempts resets the remaining-restart counter back
// to the configured budget, without otherwise touching state.
func (c *Controller) RefreshRemainingStartAttempts() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remainingRestarts = c.restartBudgetConfigured
}

// RemainingRestartAttempts reports the current restart budget.
func (c *Controller) RemainingRestartAttempts() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingRestarts
}

// StartAsync requests the executor start sampling. It is atomic with
// respect to state: the returned Result and any state change it causes
// are decided under the same critical section.
func (c *Controller) StartAsync(startDelay uint8) Result {
	c.mu.Lock()

	if c.startLocks > 0 {
		c.mu.Unlock()
		return ResultLocked
	}

	switch c.state {
	case Starting:
		c.mu.Unlock()
		return ResultAlreadyStarted
	case Running:
		c.mu.Unlock()
		return ResultAlreadyRunning
	case StopPending, StoppedStopPending:
		c.mu.Unlock()
		return ResultAlreadyStopping
	}

	c.state = Starting
	c.remainingRestarts = c.restartBudgetConfigured
	c.mu.Unlock()

	c.executor.RequestStartSampling(startDelay)
	c.cb.onStarting()
	return ResultOK
}

// StopAsync requests the executor stop sampling. Atomic with respect to
// state, like StartAsync.
func (c *Controller) StopAsync() Result {
	c.mu.Lock()

	switch c.state {
	case Stopped:
		c.mu.Unlock()
		return ResultAlreadyStopped
	case StopPending, StoppedStopPending:
		c.mu.Unlock()
		return ResultAlreadyStopping
	}

	c.state = StopPending
	c.mu.Unlock()

	c.executor.RequestStopSampling()
	c.cb.onStopPending()
	return ResultOK
}

// WaitUntilStopped blocks the calling goroutine until the state becomes
// Stopped.
func (c *Controller) WaitUntilStopped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.state != Stopped {
		c.cond.Wait()
	}
}

// onExecutorStateChange is wired in as the executor's OnStateChange
// callback. It enqueues the actual processing onto the work queue,
// retrying indefinitely (and invoking OnBadAllocWQ on every failed
// attempt) if the queue reports ErrOutOfResource — state notifications
// must never be silently dropped.
func (c *Controller) onExecutorStateChange(newState cyclicexec.State, reason cyclicexec.StopReason) {
	task := workqueue.Func(func() { c.processExecutorStateChange(newState, reason) })
	for {
		err := c.wq.Add(task)
		if err == nil {
			return
		}
		c.cb.onBadAllocWQ()
	}
}

// processExecutorStateChange runs on the work queue's consumer goroutine
// and implements §4.4.2's transition table, including both documented
// stop-race resolutions: FIFO order on the single queue is what makes a
// stop-in-flight-vs-autonomous-stop race deterministic.
func (c *Controller) processExecutorStateChange(newState cyclicexec.State, reason cyclicexec.StopReason) {
	switch newState {
	case cyclicexec.Running:
		c.onRunWQ()
	case cyclicexec.Stopped:
		c.onStopWQ(reason)
	}
}

func (c *Controller) onRunWQ() {
	c.mu.Lock()
	if c.state == StopPending || c.state == StoppedStopPending {
		// a stop was already requested; the executor's own on-stop
		// notification is guaranteed to follow, so there is nothing to
		// do here.
		c.mu.Unlock()
		return
	}
	c.state = Running
	c.mu.Unlock()
	c.cb.onRunning()
}

func (c *Controller) onStopWQ(reason cyclicexec.StopReason) {
	c.mu.Lock()

	switch c.state {
	case StopPending:
		if reason == cyclicexec.StopReasonRequestStop {
			c.state = Stopped
			c.cond.Broadcast()
			c.mu.Unlock()
			c.cb.onStopped(reason)
			return
		}
		// the executor stopped itself for another reason just before
		// noticing the pending stop request; the request-stop
		// notification is still to come. A restart is never issued here
		// even if budget remains — a pending stop always wins.
		c.state = StoppedStopPending
		c.mu.Unlock()
		c.cb.onStoppedStopPending(reason)
		return

	case StoppedStopPending:
		// the requested-stop notification has now arrived.
		c.state = Stopped
		c.cond.Broadcast()
		c.mu.Unlock()
		c.cb.onStopped(reason)
		return
	}

	// Starting or Running: a loss-of-lock with budget remaining restarts
	// instead of stopping.
	if reason == cyclicexec.StopReasonPLLLossOfLock && c.remainingRestarts > 0 {
		c.remainingRestarts--
		c.state = Starting
		c.mu.Unlock()
		extra := c.cb.onBeforeRestart()
		c.executor.RequestStartSampling(extra)
		return
	}

	c.state = Stopped
	c.cond.Broadcast()
	c.mu.Unlock()
	c.cb.onStopped(reason)
}
