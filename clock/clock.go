// Package clock provides named types for monotonic time-points and
// time-spans, so call sites read as domain arithmetic ("deadline :=
// clock.Now().Add(timeout)") instead of raw time.Time juggling, and so
// tests can substitute a fake source of Now.
package clock

import "time"

type (
	// Point is an opaque monotonic time-point, nanosecond resolution.
	Point struct {
		t time.Time
	}

	// Span is a signed duration between two Points.
	Span = time.Duration
)

// for testing purposes, packages in this module call clock.Now rather than
// time.Now directly, allowing tests to substitute a fake source.
var nowFunc = time.Now

// Now returns the current Point, using the monotonic clock reading carried
// by time.Time.
func Now() Point {
	return Point{t: nowFunc()}
}

// IsZero reports the zero-value Point. A zero Point never compares Before or
// After relative to itself, and IsZero reports true only for it.
func (p Point) IsZero() bool { return p.t.IsZero() }

// Add returns the Point span later than p (span may be negative).
func (p Point) Add(span Span) Point {
	return Point{t: p.t.Add(span)}
}

// Sub returns the Span elapsed from other to p (p - other).
func (p Point) Sub(other Point) Span {
	return p.t.Sub(other.t)
}

// Before reports whether p is strictly earlier than other.
func (p Point) Before(other Point) bool { return p.t.Before(other.t) }

// After reports whether p is strictly later than other.
func (p Point) After(other Point) bool { return p.t.After(other.t) }

// Equal reports whether p and other represent the same instant.
func (p Point) Equal(other Point) bool { return p.t.Equal(other.t) }

// Time exposes the underlying time.Time, for interop with the standard
// library (timers, contexts, formatting).
func (p Point) Time() time.Time { return p.t }

// FromTime wraps a time.Time as a Point, for interop with APIs that hand
// back a standard time.Time (e.g. file modification times).
func FromTime(t time.Time) Point { return Point{t: t} }

// Format renders p per the "[YYYY-MM-DD HH:MM:SS.mmm]" layout used by
// logfacility's timestamped log overloads.
func (p Point) Format() string {
	return "[" + p.t.Format("2006-01-02 15:04:05.000") + "]"
}

// Timer wraps time.Timer, exposing a receive-only channel method (C)
// rather than the exported-field convention, so callers don't reach past
// the package's Span/Point abstraction to touch time.Duration directly.
type Timer struct {
	t *time.Timer
}

// NewTimer starts a Timer that fires once after span elapses.
func NewTimer(span Span) *Timer {
	return &Timer{t: time.NewTimer(span)}
}

// C returns the channel on which the timer delivers its firing time.
func (t *Timer) C() <-chan time.Time { return t.t.C }

// Stop prevents the Timer from firing, per time.Timer.Stop's semantics.
func (t *Timer) Stop() bool { return t.t.Stop() }

