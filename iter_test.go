package flume

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/flumeio/flume/internal/th"
)

func TestToSeq(t *testing.T) {
	t.Run("yields the pipeline output in order", func(t *testing.T) {
		s := mapStage(FromSlice(th.Range(0, 100)), func(v int) int { return v * 2 })

		var got []int
		for v := range ToSeq(s) {
			got = append(got, v)
		}

		want := make([]int, 100)
		for i := range want {
			want[i] = i * 2
		}
		assert.Equal(t, want, got)
	})

	t.Run("breaking cancels the remaining traversal", func(t *testing.T) {
		var advanced atomic.Int64
		src := &spySource[int]{inner: NewSliceSource(th.Range(0, 10000)), advances: &advanced}

		var got []int
		for v := range ToSeq(FromSource[int](src)) {
			got = append(got, v)
			if len(got) == 3 {
				break
			}
		}

		assert.Equal(t, []int{0, 1, 2}, got)
		assert.LessOrEqual(t, advanced.Load(), int64(4))
	})

	t.Run("consumes the stream immediately", func(t *testing.T) {
		s := FromSlice(th.Range(0, 10))
		_ = ToSeq(s)
		assert.PanicsWithValue(t, ErrConsumed, func() { Count(s) })
	})

	t.Run("single use", func(t *testing.T) {
		seq := ToSeq(FromSlice(th.Range(0, 10)))
		for range seq {
		}
		assert.PanicsWithValue(t, ErrConsumed, func() {
			for range seq {
			}
		})
	})

	t.Run("forces sequential evaluation", func(t *testing.T) {
		s := FromSlice(th.Range(0, 1000)).Parallel()
		assert.Equal(t, th.Range(0, 1000), slices.Collect(ToSeq(s)))
	})
}

func TestFromSeq(t *testing.T) {
	t.Run("streams the sequence", func(t *testing.T) {
		s := FromSeq(slices.Values([]string{"a", "b", "c"}))
		assert.Equal(t, []string{"a", "b", "c"}, Collect(s, toSliceCollector[string]()))
	})

	t.Run("lazy: sequence untouched until a terminal runs", func(t *testing.T) {
		var pulled atomic.Int64
		seq := func(yield func(int) bool) {
			for i := 0; ; i++ {
				pulled.Inc()
				if !yield(i) {
					return
				}
			}
		}

		s := FromSeq(seq)
		s2 := filterStage(s, func(v int) bool { return v >= 5 })
		assert.Equal(t, int64(0), pulled.Load())

		got, ok := First(s2)
		require.True(t, ok)
		assert.Equal(t, 5, got)
	})

	t.Run("close releases the pull view", func(t *testing.T) {
		s := FromSeq(slices.Values(th.Range(0, 100)))
		_, ok := First(s)
		require.True(t, ok)
		assert.NoError(t, s.Close())
	})

	t.Run("parallel over a sequence", func(t *testing.T) {
		s := FromSeq(slices.Values(th.Range(0, 5000))).Parallel()
		sum := Reduce(s, 0,
			func(a, v int) int { return a + v },
			func(a, b int) int { return a + b })
		assert.Equal(t, th.SumRange(0, 5000), sum)
	})

	t.Run("nil sequence panics", func(t *testing.T) {
		assert.Panics(t, func() { FromSeq[int](nil) })
	})
}
