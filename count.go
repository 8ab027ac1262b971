package flume

// Count evaluates the pipeline and returns the number of elements reaching
// its end. This is a terminal operation.
//
// When the tracked pipeline flags still carry [Sized] (no stage declared it
// may change the element count), Count answers from the source's exact size
// without traversing or transforming a single element.
func Count[T any](s *Stream[T]) int64 {
	p := s.p

	if p.flagsAt(len(p.stages)).Has(Sized) {
		p.claim(s.depth)
		sp := p.resolveSource()
		if n := exactSizeIfKnown(sp); n >= 0 {
			return n
		}
		// Sized was promised but the source could not honor it; tally the
		// raw source, which by the Sized flags has the same count as the
		// pipeline output.
		var n int64
		for sp.tryAdvance(func(any) { n++ }) {
		}
		return n
	}

	return Reduce(s, 0,
		func(n int64, _ T) int64 { return n + 1 },
		func(a, b int64) int64 { return a + b })
}
