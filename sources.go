package flume

// Batch sizing for splitting sources of unknown size: each split slices off a
// prefix batch that grows arithmetically, so a long sequence amortizes the
// copying while a short one is not over-buffered.
const (
	batchUnit = 1 << 10
	maxBatch  = 1 << 25
)

// NewSliceSource returns a Source over xs. It reports
// Ordered|Sized|Subsized|Immutable and splits at the midpoint of the
// remaining range. The slice itself is not copied; the caller must not
// shrink it while a terminal operation is running.
func NewSliceSource[T any](xs []T) Source[T] {
	return &sliceSource[T]{elems: xs, hi: len(xs)}
}

type sliceSource[T any] struct {
	elems  []T
	lo, hi int
}

func (s *sliceSource[T]) TryAdvance(yield func(T)) bool {
	if s.lo >= s.hi {
		return false
	}
	v := s.elems[s.lo]
	s.lo++
	yield(v)
	return true
}

func (s *sliceSource[T]) TrySplit() Source[T] {
	mid := s.lo + (s.hi-s.lo)/2
	if mid <= s.lo {
		return nil
	}
	prefix := &sliceSource[T]{elems: s.elems, lo: s.lo, hi: mid}
	s.lo = mid
	return prefix
}

func (s *sliceSource[T]) EstimateSize() int64 {
	return int64(s.hi - s.lo)
}

func (s *sliceSource[T]) Characteristics() Flags {
	return Ordered | Sized | Subsized | Immutable
}

// NewPullSource adapts an incremental pull function into a Source of unknown
// size. next returns the next element and true, or false once the sequence is
// exhausted. flags declares the structural guarantees of the sequence; Sized
// and Subsized are ignored since the size is unknown.
//
// Splitting slices off prefix batches of arithmetically increasing size, so a
// pull-only sequence still parallelizes: each batch becomes an independently
// traversable, exactly sized partition.
func NewPullSource[T any](next func() (T, bool), flags Flags) Source[T] {
	if next == nil {
		panic("flume: nil next function")
	}
	return &pullSource[T]{next: next, flags: flags.normalize() &^ (Sized | Subsized)}
}

type pullSource[T any] struct {
	next  func() (T, bool)
	flags Flags
	batch int
}

func (s *pullSource[T]) TryAdvance(yield func(T)) bool {
	v, ok := s.next()
	if !ok {
		return false
	}
	yield(v)
	return true
}

func (s *pullSource[T]) TrySplit() Source[T] {
	n := s.batch + batchUnit
	if n > maxBatch {
		n = maxBatch
	}
	buf := make([]T, 0, n)
	for len(buf) < n {
		v, ok := s.next()
		if !ok {
			break
		}
		buf = append(buf, v)
	}
	if len(buf) == 0 {
		return nil
	}
	s.batch = n
	return &sliceSource[T]{elems: buf, hi: len(buf)}
}

func (s *pullSource[T]) EstimateSize() int64 {
	return -1
}

func (s *pullSource[T]) Characteristics() Flags {
	return s.flags
}

// NewChanSource returns a Source that drains ch. The source is Concurrent
// and unordered: the channel may keep being written to while a terminal
// operation runs, and elements end the stream only when ch is closed.
func NewChanSource[T any](ch <-chan T) Source[T] {
	return NewPullSource(func() (T, bool) {
		v, ok := <-ch
		return v, ok
	}, Concurrent)
}

// NewGeneratorSource returns an infinite, unordered Source where each element
// is produced by fn. It is only useful ahead of a short-circuiting terminal
// or a limiting stage.
func NewGeneratorSource[T any](fn func() T) Source[T] {
	if fn == nil {
		panic("flume: nil generator function")
	}
	return NewPullSource(func() (T, bool) {
		return fn(), true
	}, Immutable)
}
