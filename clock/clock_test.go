package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPointArithmetic(t *testing.T) {
	base := FromTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	later := base.Add(10 * time.Second)

	require.True(t, later.After(base))
	require.True(t, base.Before(later))
	require.Equal(t, 10*time.Second, later.Sub(base))
	require.False(t, base.Equal(later))
	require.True(t, base.Equal(base))
}

func TestNowUsesIndirection(t *testing.T) {
	prev := nowFunc
	defer func() { nowFunc = prev }()

	fixed := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	nowFunc = func() time.Time { return fixed }

	require.True(t, Now().Equal(FromTime(fixed)))
}

func TestFormat(t *testing.T) {
	p := FromTime(time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC))
	require.Equal(t, "[2026-01-02 03:04:05.006]", p.Format())
}

func TestZero(t *testing.T) {
	var p Point
	require.True(t, p.IsZero())
	require.False(t, Now().IsZero())
}
