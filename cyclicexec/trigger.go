// Package cyclicexec implements a triggered cyclic executor: a goroutine
// that calls a user Sample function once per wake-up of a trigger source,
// driven through a four-state machine (Stopped, Starting, WaitLock,
// Running).
package cyclicexec

import (
	"context"
	"sync"

	"github.com/joeycumines/corert/clock"
)

// Signal reports the outcome of a TriggerSource wait.
type Signal int8

const (
	// Signaled indicates exactly one wake-up occurred since the last wait.
	Signaled Signal = iota
	// AlreadySignaledOnce indicates two or more wake-ups occurred since
	// the last wait — the overrun case Sample is told about.
	AlreadySignaledOnce
	// Timeout indicates WaitTimeout's deadline elapsed with no wake-up.
	Timeout
)

// TriggerSource is a wake-up source: something that can be waited on, with
// or without a timeout, reporting whether one or more than one signal
// accumulated since the last wait.
type TriggerSource interface {
	Wait(ctx context.Context) (Signal, error)
	WaitTimeout(ctx context.Context, timeout clock.Span) (Signal, error)
}

// ChannelTrigger is the default TriggerSource: a buffered wake-up channel
// with an overrun flag, the pure-Go analogue of a self-pipe. Fire may be
// called from any goroutine; at most one pending wake-up is buffered, and
// any additional Fire before the next Wait sets the overrun flag.
type ChannelTrigger struct {
	mu      sync.Mutex
	pending bool
	overrun bool
	wake    chan struct{}
}

// NewChannelTrigger constructs an empty (not yet fired) ChannelTrigger.
func NewChannelTrigger() *ChannelTrigger {
	return &ChannelTrigger{wake: make(chan struct{}, 1)}
}

// Fire records a wake-up, waking a blocked Wait/WaitTimeout. A Fire that
// arrives before a previously buffered one has been consumed sets the
// overrun flag instead of blocking or being dropped.
func (c *ChannelTrigger) Fire() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending {
		c.overrun = true
		return
	}
	c.pending = true
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *ChannelTrigger) consume() Signal {
	c.mu.Lock()
	defer c.mu.Unlock()

	sig := Signaled
	if c.overrun {
		sig = AlreadySignaledOnce
	}
	c.pending = false
	c.overrun = false
	return sig
}

// Wait blocks until Fire is called or ctx is canceled.
func (c *ChannelTrigger) Wait(ctx context.Context) (Signal, error) {
	select {
	case <-c.wake:
		return c.consume(), nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// WaitTimeout blocks until Fire is called, timeout elapses, or ctx is
// canceled, whichever happens first.
func (c *ChannelTrigger) WaitTimeout(ctx context.Context, timeout clock.Span) (Signal, error) {
	if timeout <= 0 {
		select {
		case <-c.wake:
			return c.consume(), nil
		default:
			return Timeout, nil
		}
	}

	timer := clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.wake:
		return c.consume(), nil
	case <-timer.C():
		return Timeout, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}
