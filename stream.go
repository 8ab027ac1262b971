package flume

import (
	"errors"

	"github.com/rs/zerolog"
)

// ErrConsumed is the panic value raised when a stream facade is used after
// its terminal operation has executed, or when a stage has already been
// appended to it.
var ErrConsumed = errors.New("flume: stream has already been operated upon or closed")

// Stream is the user-facing handle over a pipeline: a lazily evaluated chain
// of stages over a splittable source. Intermediate calls ([Stateless],
// [Stateful], mode toggles) never touch the source; evaluation happens only
// when a terminal operation ([Collect], [Reduce], [ForEach], [First], [Any],
// [Count], [ToSeq]) is invoked. A terminal operation consumes the stream:
// any further intermediate or terminal call panics with [ErrConsumed].
//
// A Stream is not safe for concurrent construction; parallelism happens
// inside terminal evaluation, not across facade calls.
type Stream[T any] struct {
	p     *pipe
	depth int
}

// FromSource returns a sequential stream over src, adopting the
// characteristics src reports.
func FromSource[T any](src Source[T]) *Stream[T] {
	if src == nil {
		panic("flume: nil source")
	}
	return newStream[T](func() spliterator { return erasedSource[T]{src} }, src.Characteristics())
}

// FromSourceFunc returns a sequential stream over a deferred source. The
// supplier is invoked at most once, lazily, only once a terminal operation
// begins, so the underlying data may keep changing until evaluation starts.
// flags must match what the supplier will produce; the engine trusts it when
// choosing strategies before the source exists.
func FromSourceFunc[T any](supply func() Source[T], flags Flags) *Stream[T] {
	if supply == nil {
		panic("flume: nil source supplier")
	}
	return newStream[T](func() spliterator { return erasedSource[T]{supply()} }, flags)
}

// FromSlice returns a sequential stream over xs.
func FromSlice[T any](xs []T) *Stream[T] {
	return FromSource(NewSliceSource(xs))
}

// FromChan returns a sequential stream that drains ch.
func FromChan[T any](ch <-chan T) *Stream[T] {
	return FromSource(NewChanSource(ch))
}

// Generate returns an infinite sequential stream where each element is
// produced by fn.
func Generate[T any](fn func() T) *Stream[T] {
	return FromSource(NewGeneratorSource(fn))
}

func newStream[T any](supply func() spliterator, flags Flags) *Stream[T] {
	return &Stream[T]{
		p: &pipe{
			supply:   supply,
			srcFlags: flags.normalize(),
			logger:   zerolog.Nop(),
		},
	}
}

// Sequential returns a stream covering the same stage chain that will be
// evaluated by a single linear traversal. Idempotent.
func (s *Stream[T]) Sequential() *Stream[T] {
	s.p.ensureLive(s.depth)
	s.p.parallel = false
	return s
}

// Parallel returns a stream covering the same stage chain that will be
// evaluated as a fork-join computation over the split source. Idempotent.
func (s *Stream[T]) Parallel() *Stream[T] {
	s.p.ensureLive(s.depth)
	s.p.parallel = true
	return s
}

// Unordered drops the encounter-order requirement for downstream evaluation,
// allowing partial results to be combined in completion order.
func (s *Stream[T]) Unordered() *Stream[T] {
	s.p.ensureLive(s.depth)
	s.p.unordered = true
	return s
}

// IsParallel reports the current evaluation mode. It is meaningful only
// before a terminal operation runs; afterwards it panics with [ErrConsumed].
func (s *Stream[T]) IsParallel() bool {
	s.p.ensureLive(s.depth)
	return s.p.parallel
}

// WithLogger attaches a structured logger the engine uses to trace splits,
// leaf evaluations and combines. The default logger discards everything.
func (s *Stream[T]) WithLogger(logger zerolog.Logger) *Stream[T] {
	s.p.ensureLive(s.depth)
	s.p.logger = logger
	return s
}

// WithTargetSize overrides the partition size below which the parallel path
// stops splitting. The default is the source size estimate divided by four
// times GOMAXPROCS.
func (s *Stream[T]) WithTargetSize(n int64) *Stream[T] {
	s.p.ensureLive(s.depth)
	s.p.targetSize = n
	return s
}

// OnClose appends a handler to run when the stream is closed. Handlers run
// in insertion order, each exactly once.
func (s *Stream[T]) OnClose(fn func() error) *Stream[T] {
	if fn == nil {
		panic("flume: nil close handler")
	}
	s.p.ensureLive(s.depth)
	s.p.closers = append(s.p.closers, fn)
	return s
}

// Close runs all close handlers in insertion order, exactly once, even if
// some fail. The first failure becomes the reported error; every other
// distinct failure is attached to it as a suppressed error (see
// [CloseError]). Subsequent Close calls do nothing and return nil.
//
// Close may be called before or after the terminal operation; closing an
// unevaluated stream makes it unusable.
func (s *Stream[T]) Close() error {
	p := s.p
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.consumed.Store(true)

	var primary error
	var suppressed []error
	for _, fn := range p.closers {
		err := fn()
		switch {
		case err == nil:
		case primary == nil:
			primary = err
		case err != primary:
			suppressed = append(suppressed, err)
		}
	}
	p.closers = nil

	if primary == nil {
		return nil
	}
	if len(suppressed) == 0 {
		return primary
	}
	return &CloseError{primary: primary, suppressed: suppressed}
}
