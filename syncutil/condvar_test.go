package syncutil

import (
	"testing"
	"time"

	"github.com/joeycumines/corert/clock"
	"github.com/stretchr/testify/require"
)

func TestCondVarSignal(t *testing.T) {
	var m Mutex
	var cv CondVar

	ready := make(chan struct{})
	woken := make(chan struct{})

	go func() {
		m.Lock()
		close(ready)
		cv.Wait(&m)
		m.Unlock()
		close(woken)
	}()

	<-ready
	time.Sleep(20 * time.Millisecond) // give the waiter time to subscribe

	m.Lock()
	cv.Signal()
	m.Unlock()

	select {
	case <-woken:
	case <-time.After(time.Second):
		t.Fatal("waiter was not woken")
	}
}

func TestCondVarWaitTimeoutElapses(t *testing.T) {
	var m Mutex
	var cv CondVar

	m.Lock()
	deadline := clock.Now().Add(20 * time.Millisecond)
	timedOut := cv.WaitTimeout(&m, deadline)
	m.Unlock()

	require.True(t, timedOut)
}

func TestCondVarWaitTimeoutSignaled(t *testing.T) {
	var m Mutex
	var cv CondVar

	ready := make(chan struct{})
	result := make(chan bool, 1)

	go func() {
		m.Lock()
		close(ready)
		deadline := clock.Now().Add(5 * time.Second)
		result <- cv.WaitTimeout(&m, deadline)
		m.Unlock()
	}()

	<-ready
	time.Sleep(20 * time.Millisecond)

	m.Lock()
	cv.Broadcast()
	m.Unlock()

	select {
	case timedOut := <-result:
		require.False(t, timedOut)
	case <-time.After(time.Second):
		t.Fatal("waiter did not observe the broadcast")
	}
}
