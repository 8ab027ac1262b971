package flume

// Source describes a possibly unbounded sequence of elements that can be
// traversed incrementally and recursively partitioned for parallel work.
//
// A Source is touched only once a terminal operation begins; until then any
// change to the underlying data is allowed and must be reflected by the
// traversal (the non-interference contract is enforced by the caller, not by
// the engine). A Source over a mutable structure must either be split before
// traversal begins or report [Concurrent].
type Source[T any] interface {
	// TryAdvance delivers at most one not-yet-seen element to yield and
	// reports whether an element remained.
	TryAdvance(yield func(T)) bool

	// TrySplit removes and returns a prefix of the remaining elements (or an
	// arbitrary disjoint partition, for unordered sources) as a new Source,
	// leaving the receiver covering the remainder. It returns nil when no
	// further useful split exists. The union of elements produced by a source
	// and all its recursively split children must equal the elements the
	// unsplit source would have produced, in encounter order when [Ordered]
	// is set.
	TrySplit() Source[T]

	// EstimateSize returns the exact number of remaining elements when
	// [Sized] is set, an estimate otherwise, or a negative value when no
	// estimate is possible.
	EstimateSize() int64

	// Characteristics reports the structural guarantees of this source.
	Characteristics() Flags
}

// ForEachRemaining exhausts src, delivering every remaining element to yield.
func ForEachRemaining[T any](src Source[T], yield func(T)) {
	for src.TryAdvance(yield) {
	}
}
