package flume

import (
	"cmp"
	"slices"
	"sync"
)

// This file implements the usual named operations (map, filter, sorted,
// limit, distinct) and a few reductions on top of the public stage and
// collector APIs. The engine itself ships none of them; tests use these the
// way applications would.

func mode[T any](s *Stream[T], parallel bool) *Stream[T] {
	if parallel {
		return s.Parallel()
	}
	return s.Sequential()
}

type mapSink[T, U any] struct {
	ChainedSink[U]
	fn func(T) U
}

func (s *mapSink[T, U]) Accept(v T) { s.Downstream.Accept(s.fn(v)) }

func mapStage[T, U any](s *Stream[T], fn func(T) U) *Stream[U] {
	return Stateless(s, OpEffects{Clears: Sorted | Distinct | NonNull},
		func(down Sink[U]) Sink[T] {
			return &mapSink[T, U]{ChainedSink[U]{down}, fn}
		})
}

type filterSink[T any] struct {
	ChainedSink[T]
	pred func(T) bool
}

func (s *filterSink[T]) Begin(size int64) { s.Downstream.Begin(-1) }

func (s *filterSink[T]) Accept(v T) {
	if s.pred(v) {
		s.Downstream.Accept(v)
	}
}

func filterStage[T any](s *Stream[T], pred func(T) bool) *Stream[T] {
	return Stateless(s, OpEffects{Clears: Sized},
		func(down Sink[T]) Sink[T] {
			return &filterSink[T]{ChainedSink[T]{down}, pred}
		})
}

type sortedSink[T cmp.Ordered] struct {
	down Sink[T]
	buf  []T
}

func (s *sortedSink[T]) Begin(size int64) {
	if size > 0 {
		s.buf = make([]T, 0, size)
	}
}

func (s *sortedSink[T]) Accept(v T) { s.buf = append(s.buf, v) }

func (s *sortedSink[T]) End() {
	slices.Sort(s.buf)
	s.down.Begin(int64(len(s.buf)))
	for _, v := range s.buf {
		if s.down.Cancelled() {
			break
		}
		s.down.Accept(v)
	}
	s.down.End()
	s.buf = nil
}

func (s *sortedSink[T]) Cancelled() bool { return false }

func sortedStage[T cmp.Ordered](s *Stream[T]) *Stream[T] {
	return Stateful(s, OpEffects{Sets: Sorted},
		func(down Sink[T]) Sink[T] {
			return &sortedSink[T]{down: down}
		})
}

type limitSink[T any] struct {
	ChainedSink[T]
	left int
}

func (s *limitSink[T]) Begin(size int64) { s.Downstream.Begin(-1) }

func (s *limitSink[T]) Accept(v T) {
	if s.left > 0 {
		s.left--
		s.Downstream.Accept(v)
	}
}

func (s *limitSink[T]) Cancelled() bool {
	return s.left <= 0 || s.Downstream.Cancelled()
}

func limitStage[T any](s *Stream[T], n int) *Stream[T] {
	return Stateful(s, OpEffects{Clears: Sized, ShortCircuit: true},
		func(down Sink[T]) Sink[T] {
			return &limitSink[T]{ChainedSink[T]{down}, n}
		})
}

type distinctSink[T comparable] struct {
	ChainedSink[T]
	seen map[T]struct{}
}

func (s *distinctSink[T]) Begin(size int64) {
	s.seen = make(map[T]struct{})
	s.Downstream.Begin(-1)
}

func (s *distinctSink[T]) Accept(v T) {
	if _, dup := s.seen[v]; dup {
		return
	}
	s.seen[v] = struct{}{}
	s.Downstream.Accept(v)
}

func distinctStage[T comparable](s *Stream[T]) *Stream[T] {
	return Stateful(s, OpEffects{Clears: Sized, Sets: Distinct},
		func(down Sink[T]) Sink[T] {
			return &distinctSink[T]{ChainedSink: ChainedSink[T]{down}}
		})
}

func toSliceCollector[T any]() Collector[T, *[]T, []T] {
	return FinishingCollector(
		func() *[]T { out := []T{}; return &out },
		func(a *[]T, v T) { *a = append(*a, v) },
		func(a, b *[]T) *[]T { *a = append(*a, *b...); return a },
		func(a *[]T) []T { return *a },
	)
}

func toSetCollector[T comparable]() Collector[T, map[T]struct{}, map[T]struct{}] {
	return NewCollector(
		func() map[T]struct{} { return make(map[T]struct{}) },
		func(a map[T]struct{}, v T) { a[v] = struct{}{} },
		func(a, b map[T]struct{}) map[T]struct{} {
			for v := range b {
				a[v] = struct{}{}
			}
			return a
		},
		UnorderedCollector,
	)
}

// lockedSet is a container that tolerates concurrent accumulator calls, for
// exercising the shared-container collection strategy.
type lockedSet[T comparable] struct {
	mu sync.Mutex
	m  map[T]struct{}
}

func (s *lockedSet[T]) add(v T) {
	s.mu.Lock()
	s.m[v] = struct{}{}
	s.mu.Unlock()
}

func concurrentSetCollector[T comparable]() Collector[T, *lockedSet[T], map[T]struct{}] {
	return FinishingCollector(
		func() *lockedSet[T] { return &lockedSet[T]{m: make(map[T]struct{})} },
		func(a *lockedSet[T], v T) { a.add(v) },
		func(a, b *lockedSet[T]) *lockedSet[T] {
			for v := range b.m {
				a.m[v] = struct{}{}
			}
			return a
		},
		func(a *lockedSet[T]) map[T]struct{} { return a.m },
		ConcurrentCollector, UnorderedCollector,
	)
}
