package flume

// Stateless appends a stage whose output for a given element depends only on
// that element. Stateless stages are fused into the traversal loop: wrap
// receives the downstream sink and returns the sink the engine pushes this
// stage's input into. The returned stream covers the extended chain; the
// receiver becomes stale and must not be used again.
//
// effects declares how the stage changes the pipeline flags: an arbitrary
// mapping clears Sorted and Distinct, a size-changing stage clears Sized, and
// so on. A stage may only remove guarantees; Sets is honored for Sorted and
// Distinct only.
func Stateless[T, U any](s *Stream[T], effects OpEffects, wrap func(down Sink[U]) Sink[T]) *Stream[U] {
	return appendStage[T, U](s, effects, wrap, true)
}

// Stateful appends a stage that may depend on prior elements or require
// buffering (sorting, deduplication, limiting). In sequential evaluation the
// stage's wrap participates in the fused sink chain like any other, buffering
// between Begin and End as its semantics require. In parallel evaluation a
// stateful stage forms a barrier: the upstream segment is fully evaluated
// into a buffer (in encounter order when the pipeline is ordered), wrap is
// run over the buffer on a single goroutine, and parallel evaluation resumes
// from the materialized result.
func Stateful[T, U any](s *Stream[T], effects OpEffects, wrap func(down Sink[U]) Sink[T]) *Stream[U] {
	return appendStage[T, U](s, effects, wrap, false)
}

func appendStage[T, U any](s *Stream[T], effects OpEffects, wrap func(down Sink[U]) Sink[T], stateless bool) *Stream[U] {
	if wrap == nil {
		panic("flume: nil stage wrap function")
	}
	p := s.p
	p.ensureLive(s.depth)

	p.stages = append(p.stages, stageRec{
		effects:   effects,
		stateless: stateless,
		wrap: func(down anySink) anySink {
			return eraseSink(wrap(sinkOf[U](down)))
		},
	})
	return &Stream[U]{p: p, depth: s.depth + 1}
}
