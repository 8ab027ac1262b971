package flume

// findSink keeps the first pushed element and cancels further traversal.
type findSink[T any] struct {
	value T
	found bool
}

func (s *findSink[T]) Begin(size int64) {}

func (s *findSink[T]) Accept(v T) {
	if !s.found {
		s.value = v
		s.found = true
	}
}

func (s *findSink[T]) End()            {}
func (s *findSink[T]) Cancelled() bool { return s.found }

// First evaluates the pipeline until one element reaches the terminal and
// returns it, reporting false on an empty pipeline. This is a short-circuit
// terminal operation.
//
// On an ordered pipeline, First returns the first element in encounter order
// even in parallel: a found result cancels only tasks covering later
// partitions, and earlier in-flight partitions are still awaited. On an
// unordered pipeline, any element may be returned.
func First[T any](s *Stream[T]) (T, bool) {
	return find(s, false)
}

// Any is like [First] but never waits for encounter order: the first result
// found by any task wins and everything else is cancelled. This is a
// short-circuit terminal operation.
func Any[T any](s *Stream[T]) (T, bool) {
	return find(s, true)
}

func find[T any](s *Stream[T], anyOrder bool) (T, bool) {
	p := s.p

	if !p.parallel {
		e := p.seqPlan(s.depth)
		sink := &findSink[T]{}
		e.runSequential(eraseSink[T](sink), true)
		return sink.value, sink.found
	}

	e := p.parPlan(s.depth)
	if anyOrder {
		e.flags &^= Ordered
	}
	leafSink := func() (anySink, func() (T, bool)) {
		sink := &findSink[T]{}
		return eraseSink[T](sink), func() (T, bool) { return sink.value, sink.found }
	}
	return runParallel(e, true, leafSink, func(a, _ T) T { return a })
}
