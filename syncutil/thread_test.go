package syncutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestThreadCancelAndJoin(t *testing.T) {
	started := make(chan struct{})

	th := StartThread("worker", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	})

	<-started
	require.False(t, th.IsCancellationPending())

	th.Cancel()
	th.Join()

	require.True(t, th.IsCancellationPending())
	require.Equal(t, "worker", th.Name())
}

func TestSleepCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	canceled := Sleep(ctx, time.Hour)
	require.True(t, canceled)
}

func TestSleepElapses(t *testing.T) {
	canceled := Sleep(context.Background(), 10*time.Millisecond)
	require.False(t, canceled)
}
