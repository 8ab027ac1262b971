package flume

// funcSink delivers every pushed element to a plain function.
type funcSink[T any] struct {
	fn func(T)
}

func (s funcSink[T]) Begin(size int64) {}
func (s funcSink[T]) Accept(v T)       { s.fn(v) }
func (s funcSink[T]) End()             {}
func (s funcSink[T]) Cancelled() bool  { return false }

// ForEach evaluates the pipeline, invoking fn once per element. This is a
// terminal operation.
//
// On the parallel path, fn is invoked concurrently from leaf tasks, in no
// particular order, and must be safe for concurrent use. Use the sequential
// path when fn must observe encounter order.
func ForEach[T any](s *Stream[T], fn func(T)) {
	if fn == nil {
		panic("flume: nil function")
	}
	p := s.p

	if !p.parallel {
		e := p.seqPlan(s.depth)
		e.runSequential(eraseSink[T](funcSink[T]{fn}), false)
		return
	}

	e := p.parPlan(s.depth)
	leafSink := func() (anySink, func() (struct{}, bool)) {
		return eraseSink[T](funcSink[T]{fn}), func() (struct{}, bool) { return struct{}{}, false }
	}
	runParallel(e, false, leafSink, func(a, _ struct{}) struct{} { return a })
}
