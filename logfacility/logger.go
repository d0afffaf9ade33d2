package logfacility

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/joeycumines/corert/clock"
)

// Logger is a named source registered with exactly one Facility. Its
// level threshold is stored atomically: raising or lowering it (SetLevel)
// is not synchronized against in-flight Log calls on other goroutines, so
// a message that has already cleared the threshold check may still be
// emitted after the level changes underneath it. This is the race
// documented in §4.5 and is accepted, not a bug.
type Logger struct {
	name     string
	facility *Facility
	level    atomic.Uint32
}

func newLogger(facility *Facility, name string, level Level) *Logger {
	l := &Logger{name: name, facility: facility}
	l.level.Store(uint32(level))
	return l
}

// Name returns the logger's registered source name.
func (l *Logger) Name() string { return l.name }

// SetLevel changes the threshold below which Log calls are dropped. Racy
// by design, see the Logger doc comment.
func (l *Logger) SetLevel(level Level) { l.level.Store(uint32(level)) }

// Level reports the current threshold.
func (l *Logger) Level() Level { return Level(l.level.Load()) }

// enabled is the fast, allocation-free rejection path every Log overload
// starts with.
func (l *Logger) enabled(severity Level) bool {
	return severity >= Level(l.level.Load())
}

// Log renders args with fmt.Sprint, lazily, on the worker goroutine.
func (l *Logger) Log(severity Level, args ...any) {
	if !l.enabled(severity) {
		return
	}
	l.facility.enqueue(message{
		severity: severity,
		source:   l.name,
		render:   func() string { return fmt.Sprint(args...) },
	})
}

// Logf renders format/args with fmt.Sprintf, lazily, on the worker goroutine.
func (l *Logger) Logf(severity Level, format string, args ...any) {
	if !l.enabled(severity) {
		return
	}
	l.facility.enqueue(message{
		severity: severity,
		source:   l.name,
		render:   func() string { return fmt.Sprintf(format, args...) },
	})
}

// LogTimestamped behaves like Log, but prepends a monotonic-clock
// timestamp formatted as "[YYYY-MM-DD HH:MM:SS.mmm]" to the rendered text.
// The timestamp is captured at call time, not render time, so it reflects
// when the message was produced rather than when it was drained.
func (l *Logger) LogTimestamped(severity Level, args ...any) {
	if !l.enabled(severity) {
		return
	}
	ts := clock.Now()
	l.facility.enqueue(message{
		severity: severity,
		source:   l.name,
		render:   func() string { return ts.Format() + " " + fmt.Sprint(args...) },
	})
}

// LogTimestampedf is the Sprintf-flavoured counterpart of LogTimestamped.
func (l *Logger) LogTimestampedf(severity Level, format string, args ...any) {
	if !l.enabled(severity) {
		return
	}
	ts := clock.Now()
	l.facility.enqueue(message{
		severity: severity,
		source:   l.name,
		render:   func() string { return ts.Format() + " " + fmt.Sprintf(format, args...) },
	})
}

// LogErr behaves like Log, additionally walking err's chain (via
// errors.Unwrap) to produce one indented "N: <what>" line per level.
func (l *Logger) LogErr(severity Level, err error, args ...any) {
	if !l.enabled(severity) {
		return
	}
	l.facility.enqueue(message{
		severity: severity,
		source:   l.name,
		render:   func() string { return fmt.Sprint(args...) },
		errChain: func() []string { return unwrapChain(err) },
	})
}

// LogfErr is the Sprintf-flavoured counterpart of LogErr.
func (l *Logger) LogfErr(severity Level, err error, format string, args ...any) {
	if !l.enabled(severity) {
		return
	}
	l.facility.enqueue(message{
		severity: severity,
		source:   l.name,
		render:   func() string { return fmt.Sprintf(format, args...) },
		errChain: func() []string { return unwrapChain(err) },
	})
}

func unwrapChain(err error) []string {
	if err == nil {
		return nil
	}
	var chain []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		chain = append(chain, e.Error())
	}
	return chain
}
