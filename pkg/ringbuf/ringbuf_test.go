package ringbuf

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRingBasic(t *testing.T) {
	r := New[int](4)
	require.Equal(t, 4, r.Cap())
	require.True(t, r.Push(1))
	require.True(t, r.Push(2))
	v, ok := r.Pop()
	require.True(t, ok)
	require.Equal(t, 1, v)
}

func TestRingDropsWhenFull(t *testing.T) {
	r := New[int](2)
	require.True(t, r.Push(1))
	require.True(t, r.Push(2))
	require.False(t, r.Push(3))
	require.Equal(t, uint64(1), r.Dropped())
}

func TestRingNeverReordersOrDuplicates(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cap := rapid.IntRange(1, 8).Draw(rt, "cap")
		r := New[int](cap)
		ops := rapid.SliceOfN(rapid.IntRange(0, 1), 1, 64).Draw(rt, "ops")

		next := 0
		var accepted []int
		var observed []int
		for _, op := range ops {
			if op == 0 {
				if r.Push(next) {
					accepted = append(accepted, next)
				}
				next++
			} else {
				if v, ok := r.Pop(); ok {
					observed = append(observed, v)
				}
			}
		}
		for {
			v, ok := r.Pop()
			if !ok {
				break
			}
			observed = append(observed, v)
		}

		require.Equal(t, accepted, observed)
	})
}
