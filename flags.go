package flume

import "strings"

// Flags is a set of structural characteristics reported by a [Source] and
// tracked, stage by stage, across a pipeline. The engine uses them to pick
// cheaper strategies when it is safe to do so: a SIZED pipeline can answer
// [Count] without traversal, an unordered one can combine parallel partial
// results in completion order, and so on.
type Flags uint16

const (
	// Ordered means the source defines a meaningful encounter order that
	// traversal and splitting must preserve.
	Ordered Flags = 1 << iota

	// Distinct means no two elements of the sequence are equal.
	Distinct

	// Sorted means elements appear in a sorted order.
	Sorted

	// Sized means EstimateSize returns the exact number of remaining elements.
	Sized

	// NonNull means the source never produces zero-value "absent" elements.
	NonNull

	// Immutable means the underlying data cannot be structurally modified.
	Immutable

	// Concurrent means the underlying data may be safely modified concurrently
	// with traversal, without external synchronization.
	Concurrent

	// Subsized means every split produced by TrySplit is itself Sized.
	// Subsized implies Sized.
	Subsized
)

var flagNames = []struct {
	f    Flags
	name string
}{
	{Ordered, "ORDERED"},
	{Distinct, "DISTINCT"},
	{Sorted, "SORTED"},
	{Sized, "SIZED"},
	{NonNull, "NONNULL"},
	{Immutable, "IMMUTABLE"},
	{Concurrent, "CONCURRENT"},
	{Subsized, "SUBSIZED"},
}

// Has reports whether all flags in mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f&fn.f != 0 {
			parts = append(parts, fn.name)
		}
	}
	if parts == nil {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// normalize repairs the Sized/Subsized implication after set operations:
// losing Sized loses Subsized with it.
func (f Flags) normalize() Flags {
	if f&Sized == 0 {
		f &^= Subsized
	}
	return f
}

// fold applies one stage's declared effects to the running pipeline flags.
// A stage may only remove guarantees it cannot uphold; the sole exception is
// an explicit sorting or deduplicating stage, which may introduce Sorted or
// Distinct. All other bits in Sets are ignored.
func (f Flags) fold(e OpEffects) Flags {
	f &^= e.Clears
	f |= e.Sets & (Sorted | Distinct)
	return f.normalize()
}

// OpEffects declares how a stage affects the running pipeline flags, and
// whether the stage is short-circuit eligible (it may stop consuming input
// before the upstream is exhausted, like a limiting stage).
type OpEffects struct {
	Clears Flags
	Sets   Flags

	// ShortCircuit marks the stage as able to cancel upstream traversal.
	// The engine then polls cancellation after every element it pushes.
	ShortCircuit bool
}
