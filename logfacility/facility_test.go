package logfacility

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingBackend struct {
	mu    sync.Mutex
	lines []string
	sevs  []Level
}

func (b *recordingBackend) Process(line string, severity Level) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	b.sevs = append(b.sevs, severity)
}

func (b *recordingBackend) snapshot() ([]string, []Level) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...), append([]Level(nil), b.sevs...)
}

type panicBackend struct{}

func (panicBackend) Process(string, Level) { panic("boom") }

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	_, err := New(0)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRegisterConsumesDefaultLevel(t *testing.T) {
	f, err := New(4)
	require.NoError(t, err)
	f.SetDefaultLevels(map[string]Level{"alpha": Warning})

	l := f.Register("alpha")
	require.Equal(t, Warning, l.Level())
}

func TestRegisterWithoutDefaultWarnsOnce(t *testing.T) {
	f, err := New(4)
	require.NoError(t, err)
	f.SetDefaultLevels(map[string]Level{"alpha": Warning})

	backend := &recordingBackend{}
	f.RegisterBackend(backend)
	l := f.Register("beta") // no entry for "beta"
	require.Equal(t, Debug, l.Level())

	f.Start(nil)
	f.Stop()

	lines, sevs := backend.snapshot()
	require.Len(t, lines, 1)
	require.Equal(t, Warning, sevs[0])
	require.Contains(t, lines[0], "no default log level deposited")

	f.Unregister(l)
	f.UnregisterBackend(backend)
	f.Close()
}

func TestRegisterDuplicatePanics(t *testing.T) {
	f, err := New(4)
	require.NoError(t, err)
	f.Register("dup")
	require.Panics(t, func() { f.Register("dup") })
}

// TestCapacityDropAndReport reproduces the bounded-FIFO scenario: capacity
// 4 for below-error messages, six Info messages pushed (four accepted,
// two dropped), then one Error message, which always gets through. Once
// the worker drains the queue it must synthesize and deliver a single
// "2 message(s) dropped" report, after the regular messages and in the
// same relative order they were produced.
func TestCapacityDropAndReport(t *testing.T) {
	f, err := New(4)
	require.NoError(t, err)
	backend := &recordingBackend{}
	f.RegisterBackend(backend)
	l := f.Register("src")

	for i := 1; i <= 6; i++ {
		l.Logf(Info, "info %d", i)
	}
	l.Log(Error, "boom")

	f.Start(nil)
	f.Stop()

	lines, sevs := backend.snapshot()
	require.Len(t, lines, 6)

	require.Equal(t, "[INFO] src: info 1", lines[0])
	require.Equal(t, "[INFO] src: info 2", lines[1])
	require.Equal(t, "[INFO] src: info 3", lines[2])
	require.Equal(t, "[INFO] src: info 4", lines[3])
	require.Equal(t, "[ERROR] src: boom", lines[4])
	require.Equal(t, "[ERROR] logfacility: 2 message(s) dropped", lines[5])

	require.Equal(t, []Level{Info, Info, Info, Info, Error, Error}, sevs)
}

func TestLogErrRendersChain(t *testing.T) {
	f, err := New(4)
	require.NoError(t, err)
	backend := &recordingBackend{}
	f.RegisterBackend(backend)
	l := f.Register("src")

	inner := errors.New("disk full")
	wrapped := fmt.Errorf("write failed: %w", inner)

	l.LogErr(Error, wrapped, "saving config")

	f.Start(nil)
	f.Stop()

	lines, _ := backend.snapshot()
	require.Len(t, lines, 1)
	require.True(t, strings.Contains(lines[0], "[ERROR] src: saving config\n        1: write failed: disk full\n        2: disk full"))
}

func TestPanickingBackendCountsAsDrop(t *testing.T) {
	f, err := New(4)
	require.NoError(t, err)
	good := &recordingBackend{}
	f.RegisterBackend(panicBackend{})
	f.RegisterBackend(good)
	l := f.Register("src")

	l.Log(Error, "first")
	l.Log(Error, "second")

	f.Start(nil)
	f.Stop()

	lines, _ := good.snapshot()
	require.Len(t, lines, 4)
	require.Equal(t, "[ERROR] src: first", lines[0])
	require.Equal(t, "[ERROR] src: second", lines[1])
	require.Equal(t, "[ERROR] logfacility: 2 message(s) dropped", lines[2])
	require.Equal(t, "[ERROR] logfacility: 1 message(s) dropped", lines[3])
}

func TestLevelFilterDropsBelowThreshold(t *testing.T) {
	f, err := New(4)
	require.NoError(t, err)
	backend := &recordingBackend{}
	f.RegisterBackend(backend)
	l := f.Register("src")
	l.SetLevel(Warning)

	l.Log(Debug, "should not appear")
	l.Log(Info, "should not appear either")
	l.Log(Warning, "visible")

	f.Start(nil)
	f.Stop()

	lines, _ := backend.snapshot()
	require.Equal(t, []string{"[WARNING] src: visible"}, lines)
}

func TestCloseRequiresDeregisteredAndStopped(t *testing.T) {
	f, err := New(4)
	require.NoError(t, err)
	l := f.Register("src")
	require.Panics(t, func() { f.Close() })

	f.Unregister(l)
	f.Start(nil)
	require.Panics(t, func() { f.Close() })
	f.Stop()
	require.NotPanics(t, func() { f.Close() })
}

func TestSnapshotAndRestoreLevels(t *testing.T) {
	f, err := New(4)
	require.NoError(t, err)
	a := f.Register("a")
	b := f.Register("b")
	a.SetLevel(Error)
	b.SetLevel(Warning)

	snap := f.SnapshotLevels()
	require.Equal(t, []LevelEntry{{Name: "a", Level: Error}, {Name: "b", Level: Warning}}, snap)

	unknown := f.RestoreLevels([]LevelEntry{{Name: "a", Level: Debug}, {Name: "ghost", Level: Fatal}})
	require.Equal(t, []string{"ghost"}, unknown)
	require.Equal(t, Debug, a.Level())
	require.Equal(t, Warning, b.Level())
}
