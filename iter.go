package flume

import (
	"iter"

	"go.uber.org/atomic"
)

// FromSeq returns a sequential, ordered stream over an iterator sequence.
// The sequence is not touched until a terminal operation begins; the pull
// view over it is created lazily, at most once. The pull view's stop function
// is registered as a close handler, so closing the stream releases the
// iterator even after a short-circuiting terminal.
func FromSeq[T any](seq iter.Seq[T]) *Stream[T] {
	if seq == nil {
		panic("flume: nil sequence")
	}

	var stop func()
	s := FromSourceFunc(func() Source[T] {
		next, st := iter.Pull(seq)
		stop = st
		return NewPullSource(next, Ordered)
	}, Ordered)

	return s.OnClose(func() error {
		if stop != nil {
			stop()
		}
		return nil
	})
}

// yieldSink forwards pushed elements to a range-loop yield and cancels
// traversal once the loop breaks.
type yieldSink[T any] struct {
	yield   func(T) bool
	stopped bool
}

func (s *yieldSink[T]) Begin(size int64) {}

func (s *yieldSink[T]) Accept(v T) {
	if !s.stopped && !s.yield(v) {
		s.stopped = true
	}
}

func (s *yieldSink[T]) End()            {}
func (s *yieldSink[T]) Cancelled() bool { return s.stopped }

// ToSeq materializes the pipeline as a single-use pull-based view. This is a
// terminal operation: the stream is consumed immediately, evaluation is
// forced sequential regardless of the parallel toggle, and elements are
// produced lazily as the returned sequence is ranged over. Breaking out of
// the range loop cancels the remaining traversal. Ranging a second time
// panics with [ErrConsumed].
func ToSeq[T any](s *Stream[T]) iter.Seq[T] {
	p := s.p
	p.claim(s.depth)

	var used atomic.Bool
	return func(yield func(T) bool) {
		if !used.CompareAndSwap(false, true) {
			panic(ErrConsumed)
		}
		sp := p.resolveSource()
		sink := p.wrapSink(eraseSink[T](&yieldSink[T]{yield: yield}), 0, len(p.stages))
		copyInto(sp, sink, true, nil)
	}
}
