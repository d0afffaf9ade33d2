package syncutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSemaphorePostWait(t *testing.T) {
	s := NewSemaphore(2, 0)

	require.False(t, s.TryWait())

	s.Post()
	require.True(t, s.TryWait())
	require.False(t, s.TryWait())
}

func TestSemaphoreInitialCount(t *testing.T) {
	s := NewSemaphore(3, 2)
	require.True(t, s.TryWait())
	require.True(t, s.TryWait())
	require.False(t, s.TryWait())
}

func TestSemaphoreInvalidConstructionPanics(t *testing.T) {
	require.Panics(t, func() { NewSemaphore(0, 0) })
	require.Panics(t, func() { NewSemaphore(1, 2) })
	require.Panics(t, func() { NewSemaphore(1, -1) })
}
