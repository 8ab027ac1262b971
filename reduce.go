package flume

// foldSink folds pushed elements into an accumulator value.
type foldSink[T, U any] struct {
	acc U
	fn  func(U, T) U
}

func (s *foldSink[T, U]) Begin(size int64) {}
func (s *foldSink[T, U]) Accept(v T)       { s.acc = s.fn(s.acc, v) }
func (s *foldSink[T, U]) End()             {}
func (s *foldSink[T, U]) Cancelled() bool  { return false }

// Reduce evaluates the pipeline by folding every element into an accumulator
// seeded with identity, and returns the final accumulator. This is a terminal
// operation.
//
// In parallel, each leaf partition folds its own accumulator (seeded with
// identity) and partial accumulators are merged bottom-up with combine, in
// encounter order when the pipeline is ordered. Sequential and parallel
// results agree only if combine is associative and identity is a true
// identity for it: combine(identity, x) == x.
func Reduce[T, U any](s *Stream[T], identity U, accumulate func(U, T) U, combine func(U, U) U) U {
	if accumulate == nil {
		panic("flume: nil accumulate function")
	}
	if combine == nil {
		panic("flume: nil combine function")
	}
	p := s.p

	if !p.parallel {
		e := p.seqPlan(s.depth)
		sink := &foldSink[T, U]{acc: identity, fn: accumulate}
		e.runSequential(eraseSink[T](sink), false)
		return sink.acc
	}

	e := p.parPlan(s.depth)
	leafSink := func() (anySink, func() (U, bool)) {
		sink := &foldSink[T, U]{acc: identity, fn: accumulate}
		return eraseSink[T](sink), func() (U, bool) { return sink.acc, false }
	}
	res, _ := runParallel(e, false, leafSink, combine)
	return res
}
