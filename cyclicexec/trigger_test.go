package cyclicexec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChannelTriggerOverrun(t *testing.T) {
	tr := NewChannelTrigger()
	tr.Fire()
	tr.Fire() // second fire before consumption: overrun

	sig, err := tr.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, AlreadySignaledOnce, sig)
}

func TestChannelTriggerSingleFire(t *testing.T) {
	tr := NewChannelTrigger()
	tr.Fire()

	sig, err := tr.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, Signaled, sig)
}

func TestChannelTriggerWaitTimeoutExpires(t *testing.T) {
	tr := NewChannelTrigger()
	sig, err := tr.WaitTimeout(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, Timeout, sig)
}

func TestChannelTriggerWaitTimeoutFiresBeforeDeadline(t *testing.T) {
	tr := NewChannelTrigger()
	go func() {
		time.Sleep(5 * time.Millisecond)
		tr.Fire()
	}()
	sig, err := tr.WaitTimeout(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, Signaled, sig)
}

func TestChannelTriggerWaitCanceled(t *testing.T) {
	tr := NewChannelTrigger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := tr.Wait(ctx)
	require.Error(t, err)
}
