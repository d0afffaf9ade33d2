package ttcectrl

import "github.com/joeycumines/corert/cyclicexec"

// Callbacks is the controller's capability record: the seven hooks named
// in the original design, all invoked from the work-queue goroutine except
// where noted, and never concurrently for one Controller.
type Callbacks struct {
	// OnStopped fires on every transition into Stopped.
	OnStopped func(reason cyclicexec.StopReason)
	// OnStarting fires on Stopped->Starting, synchronously within
	// StartAsync's own call.
	OnStarting func()
	// OnRunning fires on Starting->Running.
	OnRunning func()
	// OnStopPending fires on Starting|Running->StopPending, synchronously
	// within StopAsync's own call.
	OnStopPending func()
	// OnStoppedStopPending fires when the executor stops itself (for a
	// reason other than the pending request) while a stop is already in
	// flight.
	OnStoppedStopPending func(reason cyclicexec.StopReason)
	// OnBeforeRestart fires before an automatic restart after PLL
	// loss-of-lock; its return value is an additional start-delay handed
	// to the next RequestStartSampling.
	OnBeforeRestart func() (extraCycles uint8)
	// OnBadAllocWQ fires each time enqueueing the state-change task onto
	// the work queue fails; OnTTCEStateChange retries indefinitely.
	OnBadAllocWQ func()
}

func (c Callbacks) onStopped(reason cyclicexec.StopReason) {
	if c.OnStopped != nil {
		c.OnStopped(reason)
	}
}

func (c Callbacks) onStarting() {
	if c.OnStarting != nil {
		c.OnStarting()
	}
}

func (c Callbacks) onRunning() {
	if c.OnRunning != nil {
		c.OnRunning()
	}
}

func (c Callbacks) onStopPending() {
	if c.OnStopPending != nil {
		c.OnStopPending()
	}
}

func (c Callbacks) onStoppedStopPending(reason cyclicexec.StopReason) {
	if c.OnStoppedStopPending != nil {
		c.OnStoppedStopPending(reason)
	}
}

func (c Callbacks) onBeforeRestart() uint8 {
	if c.OnBeforeRestart != nil {
		return c.OnBeforeRestart()
	}
	return 0
}

func (c Callbacks) onBadAllocWQ() {
	if c.OnBadAllocWQ != nil {
		c.OnBadAllocWQ()
	}
}
