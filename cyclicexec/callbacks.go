package cyclicexec

// Callbacks is the capability record passed to New, standing in for the
// five virtual hooks of the original design (design note: "a language-
// neutral rendering... pass a capability record... to the executor
// constructor"). Any nil field is treated as a no-op, except Sample, which
// must be supplied.
type Callbacks struct {
	// Cyclic runs after every iteration of the executor's loop, in every
	// state, whether or not a sample occurred.
	Cyclic func()
	// OnStart runs exactly once per running episode, immediately after
	// the state flips to Running and after OnStateChange is delivered
	// for that transition.
	OnStart func()
	// OnStop runs exactly once per running episode, immediately before
	// the state leaves Running and before OnStateChange is delivered for
	// that transition.
	OnStop func()
	// Sample runs only while Running. overrun is true when the trigger
	// reported more than one wake-up accumulated since the prior one. A
	// false return stops the executor (StopReasonSampleReturnedFalse).
	Sample func(overrun bool) bool
	// OnStateChange is delivered after state has been updated, and
	// — when leaving Running — after OnStop; when entering Running —
	// before OnStart.
	OnStateChange func(newState State, reason StopReason)
}

func (c Callbacks) cyclic() {
	if c.Cyclic != nil {
		c.Cyclic()
	}
}

func (c Callbacks) onStart() {
	if c.OnStart != nil {
		c.OnStart()
	}
}

func (c Callbacks) onStop() {
	if c.OnStop != nil {
		c.OnStop()
	}
}

func (c Callbacks) onStateChange(newState State, reason StopReason) {
	if c.OnStateChange != nil {
		c.OnStateChange(newState, reason)
	}
}
