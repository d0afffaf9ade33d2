package ttcectrl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joeycumines/corert/cyclicexec"
	"github.com/joeycumines/corert/workqueue"
)

type harness struct {
	t       *testing.T
	trig    *cyclicexec.ChannelTrigger
	exec    *cyclicexec.Executor
	wq      *workqueue.Queue
	ctrl    *Controller
	stepped chan struct{}
	locked  func() bool

	mu          sync.Mutex
	runningN    int
	stoppedLog  []cyclicexec.StopReason
	stopPending []cyclicexec.StopReason
	budgetLog   []uint8
}

func newHarness(t *testing.T, lockedFn func() bool, restartAttempts uint8) (*harness, func()) {
	t.Helper()
	h := &harness{t: t, stepped: make(chan struct{}, 1), locked: lockedFn}

	h.trig = cyclicexec.NewChannelTrigger()
	h.exec = cyclicexec.New("uut", h.trig, time.Second, lockedFn, cyclicexec.Callbacks{
		Cyclic: func() { h.stepped <- struct{}{} },
		Sample: func(overrun bool) bool { return true },
	})
	h.wq = workqueue.New()

	h.ctrl = New(h.exec, h.wq, restartAttempts, Callbacks{
		OnRunning: func() { h.mu.Lock(); h.runningN++; h.mu.Unlock() },
		OnStopped: func(reason cyclicexec.StopReason) {
			h.mu.Lock()
			h.stoppedLog = append(h.stoppedLog, reason)
			h.mu.Unlock()
		},
		OnStoppedStopPending: func(reason cyclicexec.StopReason) {
			h.mu.Lock()
			h.stopPending = append(h.stopPending, reason)
			h.mu.Unlock()
		},
		OnBeforeRestart: func() uint8 {
			h.mu.Lock()
			h.budgetLog = append(h.budgetLog, h.ctrl.RemainingRestartAttempts())
			h.mu.Unlock()
			return 0
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); h.exec.Run(ctx) }()
	go func() { defer wg.Done(); h.wq.Work(ctx) }()

	return h, func() {
		cancel()
		wg.Wait()
	}
}

func (h *harness) tick() {
	h.t.Helper()
	h.trig.Fire()
	select {
	case <-h.stepped:
	case <-time.After(time.Second):
		h.t.Fatal("executor did not advance")
	}
}

// advanceToRunning assumes the executor is in Stopped with a pending start
// request and ticks it through Starting and WaitLock into Running.
func (h *harness) advanceToRunning() {
	h.tick() // stopped -> starting
	h.tick() // starting -> wait-lock
	h.tick() // wait-lock -> running
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestStartAsyncReachesRunning(t *testing.T) {
	locked := true
	h, stop := newHarness(t, func() bool { return locked }, 3)
	defer stop()

	require.Equal(t, ResultOK, h.ctrl.StartAsync(0))
	require.Equal(t, Starting, h.ctrl.GetCurrentState())

	h.advanceToRunning()
	waitFor(t, func() bool { return h.ctrl.GetCurrentState() == Running })

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Equal(t, 1, h.runningN)
}

func TestStartAsyncRejectsWhileLocked(t *testing.T) {
	h, stop := newHarness(t, func() bool { return true }, 3)
	defer stop()

	h.ctrl.LockStart()
	require.Equal(t, ResultLocked, h.ctrl.StartAsync(0))

	h.ctrl.UnlockStart()
	require.Equal(t, ResultOK, h.ctrl.StartAsync(0))
}

func TestStartAsyncRejectsDoubleStart(t *testing.T) {
	h, stop := newHarness(t, func() bool { return true }, 3)
	defer stop()

	require.Equal(t, ResultOK, h.ctrl.StartAsync(0))
	require.Equal(t, ResultAlreadyStarted, h.ctrl.StartAsync(0))
}

// TestPLLRestartBudget reproduces the restart-after-loss-of-lock scenario:
// configure the controller with 3 restart attempts; each PLL loss while
// running consumes one attempt and restarts automatically, until the 4th
// loss, at which point the controller gives up and reports Stopped.
func TestPLLRestartBudget(t *testing.T) {
	locked := true
	h, stop := newHarness(t, func() bool { return locked }, 3)
	defer stop()

	require.Equal(t, ResultOK, h.ctrl.StartAsync(0))
	h.advanceToRunning()
	waitFor(t, func() bool { return h.ctrl.GetCurrentState() == Running })

	for i := 0; i < 3; i++ {
		locked = false
		h.tick() // running -> stopped(pll-loss-of-lock), restart issued
		waitFor(t, func() bool { return h.ctrl.GetCurrentState() == Starting })
		locked = true
		h.advanceToRunning()
		waitFor(t, func() bool { return h.ctrl.GetCurrentState() == Running })
	}

	locked = false
	h.tick() // 4th loss: budget exhausted
	waitFor(t, func() bool { return h.ctrl.GetCurrentState() == Stopped })

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Equal(t, []uint8{2, 1, 0}, h.budgetLog)
	require.Equal(t, []cyclicexec.StopReason{cyclicexec.StopReasonPLLLossOfLock}, h.stoppedLog)
}

// TestStopRace reproduces the documented race: StopAsync is called right
// as the executor autonomously reports a non-request-stop reason. Expect
// OnStoppedStopPending(reason) to fire before OnStopped(request-stop), in
// that order, with neither callback skipped or duplicated.
func TestStopRace(t *testing.T) {
	locked := true
	h, stop := newHarness(t, func() bool { return locked }, 0)
	defer stop()

	require.Equal(t, ResultOK, h.ctrl.StartAsync(0))
	h.advanceToRunning()
	waitFor(t, func() bool { return h.ctrl.GetCurrentState() == Running })

	require.Equal(t, ResultOK, h.ctrl.StopAsync())
	require.Equal(t, StopPending, h.ctrl.GetCurrentState())

	locked = false
	h.tick() // running -> stopped(pll-loss-of-lock), but a stop was already pending; budget 0.
	waitFor(t, func() bool { return h.ctrl.GetCurrentState() == StoppedStopPending })

	h.tick() // executor's own stop request now lands as stopped(request-stop)
	waitFor(t, func() bool { return h.ctrl.GetCurrentState() == Stopped })

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Equal(t, []cyclicexec.StopReason{cyclicexec.StopReasonPLLLossOfLock}, h.stopPending)
	require.Equal(t, []cyclicexec.StopReason{cyclicexec.StopReasonRequestStop}, h.stoppedLog)
}

func TestWaitUntilStopped(t *testing.T) {
	h, stop := newHarness(t, func() bool { return true }, 0)
	defer stop()

	require.Equal(t, ResultOK, h.ctrl.StartAsync(0))
	h.advanceToRunning()
	waitFor(t, func() bool { return h.ctrl.GetCurrentState() == Running })

	require.Equal(t, ResultOK, h.ctrl.StopAsync())

	waitDone := make(chan struct{})
	go func() {
		h.ctrl.WaitUntilStopped()
		close(waitDone)
	}()

	h.tick() // running -> stopped(request-stop)

	select {
	case <-waitDone:
	case <-time.After(time.Second):
		t.Fatal("WaitUntilStopped did not return")
	}
}
