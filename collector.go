package flume

// CollectorCharacteristics hint at how a collector's functions may be driven.
type CollectorCharacteristics uint8

const (
	// ConcurrentCollector declares that the accumulation container tolerates
	// accumulator calls from multiple goroutines at once. The container is
	// responsible for its own synchronization; the engine imposes none.
	ConcurrentCollector CollectorCharacteristics = 1 << iota

	// UnorderedCollector declares that the result is insensitive to the
	// encounter order of the input.
	UnorderedCollector

	// IdentityFinish declares that the finisher is the identity function, so
	// the engine may return the accumulation container directly.
	IdentityFinish
)

// Has reports whether all characteristics in mask are set.
func (c CollectorCharacteristics) Has(mask CollectorCharacteristics) bool {
	return c&mask == mask
}

// Collector is a mutable-reduction contract: four cooperating functions plus
// a characteristics set, consumed by the [Collect] terminal. T is the element
// type, A the mutable accumulation container, R the result type.
//
// For sequential and parallel evaluation to agree, the functions must satisfy
// two laws. Identity: combining any partially accumulated container with a
// fresh one from the supplier yields an equivalent container. Associativity:
// for any split of the input, accumulating the parts into separate containers
// and combining them is equivalent, after finishing, to accumulating
// everything into one container.
//
// The engine never accumulates into a container after it has been passed to
// the combiner or the finisher, never mutates a non-concurrent container from
// two call sites at once, and feeds the finisher exactly once, with the
// single top-level combined container. The combiner takes ownership of both
// arguments and returns exactly one container (possibly a new one); the other
// argument is dead after the call.
type Collector[T, A, R any] struct {
	supplier    func() A
	accumulator func(a A, v T)
	combiner    func(a, b A) A
	finisher    func(a A) R
	traits      CollectorCharacteristics
}

// NewCollector builds a collector from supplier, accumulator and combiner.
// The accumulation type is the result type and the finisher is the identity
// function; IdentityFinish is implied on top of any given characteristics.
// Nil functions panic.
func NewCollector[T, A any](
	supplier func() A,
	accumulator func(a A, v T),
	combiner func(a, b A) A,
	traits ...CollectorCharacteristics,
) Collector[T, A, A] {
	return FinishingCollector(supplier, accumulator, combiner,
		func(a A) A { return a },
		append(traits, IdentityFinish)...)
}

// FinishingCollector builds a collector with an explicit finisher mapping the
// accumulation container to the result type. It carries exactly the given
// characteristics (none by default). Nil functions panic.
func FinishingCollector[T, A, R any](
	supplier func() A,
	accumulator func(a A, v T),
	combiner func(a, b A) A,
	finisher func(a A) R,
	traits ...CollectorCharacteristics,
) Collector[T, A, R] {
	switch {
	case supplier == nil:
		panic("flume: nil collector supplier")
	case accumulator == nil:
		panic("flume: nil collector accumulator")
	case combiner == nil:
		panic("flume: nil collector combiner")
	case finisher == nil:
		panic("flume: nil collector finisher")
	}

	var all CollectorCharacteristics
	for _, t := range traits {
		all |= t
	}
	return Collector[T, A, R]{
		supplier:    supplier,
		accumulator: accumulator,
		combiner:    combiner,
		finisher:    finisher,
		traits:      all,
	}
}

// Supplier returns the fresh-container constructor.
func (c Collector[T, A, R]) Supplier() func() A { return c.supplier }

// Accumulator returns the function folding one element into a container.
func (c Collector[T, A, R]) Accumulator() func(a A, v T) { return c.accumulator }

// Combiner returns the function merging two containers into one.
func (c Collector[T, A, R]) Combiner() func(a, b A) A { return c.combiner }

// Finisher returns the function mapping the final container to the result.
func (c Collector[T, A, R]) Finisher() func(a A) R { return c.finisher }

// Characteristics returns the collector's characteristics set.
func (c Collector[T, A, R]) Characteristics() CollectorCharacteristics { return c.traits }

func (c Collector[T, A, R]) validate() {
	if c.supplier == nil || c.accumulator == nil || c.combiner == nil || c.finisher == nil {
		panic("flume: collector not built with NewCollector or FinishingCollector")
	}
}
