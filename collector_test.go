package flume

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorConstruction(t *testing.T) {
	supplier := func() *[]int { out := []int{}; return &out }
	accumulator := func(a *[]int, v int) { *a = append(*a, v) }
	combiner := func(a, b *[]int) *[]int { *a = append(*a, *b...); return a }

	t.Run("three-function form implies identity finish", func(t *testing.T) {
		c := NewCollector(supplier, accumulator, combiner)
		assert.True(t, c.Characteristics().Has(IdentityFinish))
	})

	t.Run("extra characteristics are kept", func(t *testing.T) {
		c := NewCollector(supplier, accumulator, combiner, UnorderedCollector)
		assert.True(t, c.Characteristics().Has(IdentityFinish|UnorderedCollector))
		assert.False(t, c.Characteristics().Has(ConcurrentCollector))
	})

	t.Run("finishing form defaults to no characteristics", func(t *testing.T) {
		c := FinishingCollector(supplier, accumulator, combiner,
			func(a *[]int) int { return len(*a) })
		assert.Equal(t, CollectorCharacteristics(0), c.Characteristics())
	})

	t.Run("nil arguments panic", func(t *testing.T) {
		finisher := func(a *[]int) int { return len(*a) }

		assert.Panics(t, func() { FinishingCollector(nil, accumulator, combiner, finisher) })
		assert.Panics(t, func() {
			FinishingCollector[int, *[]int, int](supplier, nil, combiner, finisher)
		})
		assert.Panics(t, func() { FinishingCollector(supplier, accumulator, nil, finisher) })
		assert.Panics(t, func() {
			FinishingCollector[int, *[]int, int](supplier, accumulator, combiner, nil)
		})
	})

	t.Run("zero-value collector is rejected at collect time", func(t *testing.T) {
		var c Collector[int, int, int]
		assert.Panics(t, func() { Collect(FromSlice([]int{1}), c) })
	})
}

// TestCollectorLaws checks the identity and associativity constraints on the
// collectors the other tests rely on, by hand-driving the four functions the
// way the engine would.
func TestCollectorLaws(t *testing.T) {
	c := toSliceCollector[int]()
	input := []int{3, 1, 4, 1, 5, 9, 2, 6}

	accumulate := func(xs []int) *[]int {
		a := c.Supplier()()
		for _, v := range xs {
			c.Accumulator()(a, v)
		}
		return a
	}

	t.Run("identity law", func(t *testing.T) {
		a := accumulate(input)
		got := c.Combiner()(a, c.Supplier()())
		assert.Equal(t, input, c.Finisher()(got))
	})

	t.Run("associativity law", func(t *testing.T) {
		unsplit := c.Finisher()(accumulate(input))

		for split := 0; split <= len(input); split++ {
			left := accumulate(input[:split])
			right := accumulate(input[split:])
			combined := c.Finisher()(c.Combiner()(left, right))
			require.Equal(t, unsplit, combined, "split at %d", split)
		}
	})
}
