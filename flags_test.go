package flume

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagsHas(t *testing.T) {
	f := Ordered | Sized | Subsized

	assert.True(t, f.Has(Ordered))
	assert.True(t, f.Has(Ordered|Sized))
	assert.False(t, f.Has(Sorted))
	assert.False(t, f.Has(Ordered|Sorted))
}

func TestFlagsNormalize(t *testing.T) {
	// Subsized without Sized is meaningless and is dropped.
	assert.Equal(t, Flags(0), Subsized.normalize())

	// Losing Sized loses Subsized.
	f := (Ordered | Sized | Subsized) &^ Sized
	assert.Equal(t, Ordered, f.normalize())

	// A well-formed set is untouched.
	assert.Equal(t, Ordered|Sized|Subsized, (Ordered | Sized | Subsized).normalize())
}

func TestFlagsFold(t *testing.T) {
	src := Ordered | Sized | Subsized | Immutable

	t.Run("clears only what is declared", func(t *testing.T) {
		got := src.fold(OpEffects{Clears: Sorted | Distinct})
		assert.Equal(t, src, got)
	})

	t.Run("clearing sized drops subsized", func(t *testing.T) {
		got := src.fold(OpEffects{Clears: Sized})
		assert.Equal(t, Ordered|Immutable, got)
	})

	t.Run("a stage may introduce sorted and distinct", func(t *testing.T) {
		got := src.fold(OpEffects{Sets: Sorted | Distinct})
		assert.True(t, got.Has(Sorted|Distinct))
	})

	t.Run("a stage may not introduce other guarantees", func(t *testing.T) {
		got := Ordered.fold(OpEffects{Sets: Sized | Immutable | Concurrent | NonNull})
		assert.Equal(t, Ordered, got)
	})
}

func TestFlagsString(t *testing.T) {
	assert.Equal(t, "NONE", Flags(0).String())
	assert.Equal(t, "ORDERED|SIZED|SUBSIZED", (Ordered | Sized | Subsized).String())
}
