package heap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetermineBucketIndex(t *testing.T) {
	p := newFreeBlockPool(8, 7)

	cases := []struct {
		size uint32
		want int
	}{
		{1, 0}, {8, 0},
		{9, 1}, {16, 1},
		{17, 2}, {32, 2},
		{33, 3}, {64, 3},
		{65, 4}, {128, 4},
		{129, 5}, {256, 5},
		{257, 6}, {100000, 6},
	}
	for _, c := range cases {
		require.Equal(t, c.want, p.determineBucketIndex(c.size), "size %d", c.size)
	}
}

func TestFreeBlockPoolAddGetRemove(t *testing.T) {
	p := newFreeBlockPool(8, 7)

	d1 := &Descriptor{start: 0, size: 8}
	d2 := &Descriptor{start: 100, size: 4}
	p.add(d1)
	p.add(d2)

	require.True(t, d1.free)
	require.True(t, d2.free)

	got := p.get(4)
	require.NotNil(t, got)
	require.False(t, got.free)

	require.Nil(t, p.get(1000))
}

func TestFreeBlockPoolConstructorValidation(t *testing.T) {
	require.Panics(t, func() { newFreeBlockPool(0, 7) })
	require.Panics(t, func() { newFreeBlockPool(8, 0) })
}
