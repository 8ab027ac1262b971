package flume

// Sink is the push-based consumer protocol the engine drives during terminal
// evaluation. Stage authors receive the downstream Sink and wrap it into a
// Sink for their own input type; the engine composes the whole chain once and
// then pushes elements through it.
//
// The engine calls Begin exactly once before any Accept (size is the exact
// number of incoming elements, or a negative value when unknown), Accept once
// per element, and End exactly once afterwards. Cancelled may be polled at any
// time between Begin and End; once it returns true the engine stops pushing.
type Sink[T any] interface {
	Begin(size int64)
	Accept(v T)
	End()
	Cancelled() bool
}

// ChainedSink forwards Begin, End and Cancelled to a downstream sink.
// Stage sinks embed it and implement only Accept, overriding the forwarded
// methods when the stage changes size, buffers elements, or short-circuits.
type ChainedSink[U any] struct {
	Downstream Sink[U]
}

func (c *ChainedSink[U]) Begin(size int64) { c.Downstream.Begin(size) }
func (c *ChainedSink[U]) End()             { c.Downstream.End() }
func (c *ChainedSink[U]) Cancelled() bool  { return c.Downstream.Cancelled() }

// anySink is the type-erased sink the engine works with internally. Stage
// wraps are supplied typed and erased at append time, so the stage chain can
// be stored and traversed without knowing the element type of each link.
type anySink interface {
	begin(size int64)
	accept(v any)
	end()
	cancelled() bool
}

type erasedSink[T any] struct{ s Sink[T] }

func (e erasedSink[T]) begin(size int64) { e.s.Begin(size) }
func (e erasedSink[T]) accept(v any)     { e.s.Accept(v.(T)) }
func (e erasedSink[T]) end()             { e.s.End() }
func (e erasedSink[T]) cancelled() bool  { return e.s.Cancelled() }

type typedSink[T any] struct{ s anySink }

func (t typedSink[T]) Begin(size int64) { t.s.begin(size) }
func (t typedSink[T]) Accept(v T)       { t.s.accept(v) }
func (t typedSink[T]) End()             { t.s.end() }
func (t typedSink[T]) Cancelled() bool  { return t.s.cancelled() }

// eraseSink and sinkOf unwrap each other's adapters, so a round trip through
// a stage boundary does not stack indirections.
func eraseSink[T any](s Sink[T]) anySink {
	if t, ok := s.(typedSink[T]); ok {
		return t.s
	}
	return erasedSink[T]{s}
}

func sinkOf[T any](s anySink) Sink[T] {
	if e, ok := s.(erasedSink[T]); ok {
		return e.s
	}
	return typedSink[T]{s}
}
