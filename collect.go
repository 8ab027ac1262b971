package flume

// accumulatorSink folds pushed elements into a collector container.
type accumulatorSink[T, A any] struct {
	container A
	fn        func(A, T)
}

func (s *accumulatorSink[T, A]) Begin(size int64) {}
func (s *accumulatorSink[T, A]) Accept(v T)       { s.fn(s.container, v) }
func (s *accumulatorSink[T, A]) End()             {}
func (s *accumulatorSink[T, A]) Cancelled() bool  { return false }

// Collect evaluates the pipeline with a mutable reduction described by c and
// returns the finished result. This is a terminal operation.
//
// Sequentially, one container is supplied and every element is accumulated
// into it; the combiner is never called. In parallel, each leaf partition
// accumulates into its own container and containers are combined bottom-up in
// encounter order. When the collector is [ConcurrentCollector] and either it
// or the pipeline is unordered, all leaves instead accumulate directly into
// one shared container and the combine step disappears.
//
// Either way the finisher runs exactly once, on the single top-level
// container; an empty pipeline yields finisher(supplier()) without any
// accumulator or combiner call.
func Collect[T, A, R any](s *Stream[T], c Collector[T, A, R]) R {
	c.validate()
	p := s.p

	if !p.parallel {
		e := p.seqPlan(s.depth)
		sink := &accumulatorSink[T, A]{container: c.supplier(), fn: c.accumulator}
		e.runSequential(eraseSink[T](sink), false)
		return c.finisher(sink.container)
	}

	e := p.parPlan(s.depth)

	if c.traits.Has(ConcurrentCollector) && (c.traits.Has(UnorderedCollector) || !e.flags.Has(Ordered)) {
		shared := c.supplier()
		leafSink := func() (anySink, func() (struct{}, bool)) {
			sink := &accumulatorSink[T, A]{container: shared, fn: c.accumulator}
			return eraseSink[T](sink), func() (struct{}, bool) { return struct{}{}, false }
		}
		runParallel(e, false, leafSink, func(a, _ struct{}) struct{} { return a })
		return c.finisher(shared)
	}

	leafSink := func() (anySink, func() (A, bool)) {
		sink := &accumulatorSink[T, A]{container: c.supplier(), fn: c.accumulator}
		return eraseSink[T](sink), func() (A, bool) { return sink.container, false }
	}
	top, _ := runParallel(e, false, leafSink, c.combiner)
	return c.finisher(top)
}
