package flume

import (
	"math"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/flumeio/flume/internal/fj"
)

// spliterator is the type-erased view of a Source the engine traverses and
// splits. Built once per pipeline, at the head, where the element type is
// still known.
type spliterator interface {
	tryAdvance(yield func(any)) bool
	trySplit() spliterator
	estimateSize() int64
	characteristics() Flags
}

type erasedSource[T any] struct{ src Source[T] }

func (e erasedSource[T]) tryAdvance(yield func(any)) bool {
	return e.src.TryAdvance(func(v T) { yield(v) })
}

func (e erasedSource[T]) trySplit() spliterator {
	if s := e.src.TrySplit(); s != nil {
		return erasedSource[T]{s}
	}
	return nil
}

func (e erasedSource[T]) estimateSize() int64    { return e.src.EstimateSize() }
func (e erasedSource[T]) characteristics() Flags { return e.src.Characteristics() }

// bufferSpliterator covers the materialized output of a stateful barrier.
type bufferSpliterator struct {
	elems  []any
	lo, hi int
	flags  Flags
}

func newBufferSpliterator(elems []any, flags Flags) *bufferSpliterator {
	return &bufferSpliterator{
		elems: elems,
		hi:    len(elems),
		flags: (flags | Sized | Subsized).normalize(),
	}
}

func (b *bufferSpliterator) tryAdvance(yield func(any)) bool {
	if b.lo >= b.hi {
		return false
	}
	v := b.elems[b.lo]
	b.lo++
	yield(v)
	return true
}

func (b *bufferSpliterator) trySplit() spliterator {
	mid := b.lo + (b.hi-b.lo)/2
	if mid <= b.lo {
		return nil
	}
	prefix := &bufferSpliterator{elems: b.elems, lo: b.lo, hi: mid, flags: b.flags}
	b.lo = mid
	return prefix
}

func (b *bufferSpliterator) estimateSize() int64    { return int64(b.hi - b.lo) }
func (b *bufferSpliterator) characteristics() Flags { return b.flags }

// stageRec is one link of the stage arena. A facade addresses a depth into
// the arena; records never reference each other, so the chain is traversed
// iteratively and cannot form cycles.
type stageRec struct {
	effects   OpEffects
	stateless bool
	wrap      func(down anySink) anySink
}

// pipe is the shared state behind every facade of one pipeline: the (possibly
// deferred) source, the stage arena, chain-wide mode toggles and the close
// handler chain.
type pipe struct {
	supply   func() spliterator
	srcOnce  sync.Once
	src      spliterator
	srcFlags Flags

	stages []stageRec

	parallel   bool
	unordered  bool
	targetSize int64
	logger     zerolog.Logger

	consumed atomic.Bool
	closed   atomic.Bool
	closers  []func() error
}

// ensureLive panics unless the facade at depth is still the tip of a
// not-yet-consumed pipeline.
func (p *pipe) ensureLive(depth int) {
	if p.consumed.Load() || depth != len(p.stages) {
		panic(ErrConsumed)
	}
}

// claim marks the pipeline consumed on behalf of a terminal operation.
func (p *pipe) claim(depth int) {
	if depth != len(p.stages) || !p.consumed.CompareAndSwap(false, true) {
		panic(ErrConsumed)
	}
}

// resolveSource invokes the deferred supplier at most once, lazily, only once
// a terminal operation has begun.
func (p *pipe) resolveSource() spliterator {
	p.srcOnce.Do(func() {
		p.src = p.supply()
		p.supply = nil
	})
	return p.src
}

// flagsAt folds stage effects left-to-right over stages [0, depth), starting
// from the source characteristics and the chain-wide unordered toggle.
func (p *pipe) flagsAt(depth int) Flags {
	f := p.srcFlags.normalize()
	if p.unordered {
		f &^= Ordered
	}
	for i := 0; i < depth; i++ {
		f = f.fold(p.stages[i].effects)
	}
	return f
}

// shortCircuits reports whether any stage in [from, to) is short-circuit
// eligible; together with the terminal's own eligibility it decides whether
// traversal must poll cancellation per element.
func (p *pipe) shortCircuits(from, to int) bool {
	for i := from; i < to; i++ {
		if p.stages[i].effects.ShortCircuit {
			return true
		}
	}
	return false
}

// wrapSink composes stages [from, to) around the terminal sink, last stage
// first, producing the single fused consumer the traversal pushes into.
func (p *pipe) wrapSink(term anySink, from, to int) anySink {
	sink := term
	for i := to - 1; i >= from; i-- {
		sink = p.stages[i].wrap(sink)
	}
	return sink
}

func exactSizeIfKnown(sp spliterator) int64 {
	if sp.characteristics().Has(Sized) {
		return sp.estimateSize()
	}
	return -1
}

// copyInto drives one full traversal of sp through sink. When cancel is nil
// and the pipeline cannot short-circuit, the loop runs without per-element
// polling.
func copyInto(sp spliterator, sink anySink, cancellable bool, cancel func() bool) {
	sink.begin(exactSizeIfKnown(sp))
	if !cancellable && cancel == nil {
		for sp.tryAdvance(sink.accept) {
		}
	} else {
		for !sink.cancelled() && (cancel == nil || !cancel()) && sp.tryAdvance(sink.accept) {
		}
	}
	sink.end()
}

func (p *pipe) suggestTargetSize(size int64) int64 {
	if p.targetSize > 0 {
		return p.targetSize
	}
	if size < 0 {
		size = math.MaxInt64
	}
	t := size / int64(4*runtime.GOMAXPROCS(0))
	if t < 1 {
		t = 1
	}
	return t
}

func (p *pipe) fjOptions(sp spliterator, ordered, shortCircuit bool) fj.Options {
	return fj.Options{
		TargetSize:   p.suggestTargetSize(exactSizeIfKnown(sp)),
		Ordered:      ordered,
		ShortCircuit: shortCircuit,
		Logger:       p.logger,
	}
}

// evalPlan is a claimed pipeline prepared for one terminal evaluation: the
// spliterator feeding the remaining (purely stateless) stage segment, the
// pipeline flags at that point, and the index of the first remaining stage.
type evalPlan struct {
	p     *pipe
	sp    spliterator
	from  int
	flags Flags
}

// seqPlan claims the pipeline for a sequential terminal. All stages,
// stateful ones included, are applied through their sink wraps.
func (p *pipe) seqPlan(depth int) *evalPlan {
	p.claim(depth)
	return &evalPlan{p: p, sp: p.resolveSource(), from: 0, flags: p.flagsAt(len(p.stages))}
}

// parPlan claims the pipeline for a parallel terminal and materializes every
// stateful barrier: the upstream segment is evaluated into a buffer with the
// fork-join engine (in encounter order when ordered), the stateful stage's
// own wrap is then run over the buffer sequentially, and evaluation continues
// from the buffered, now exactly sized, source.
func (p *pipe) parPlan(depth int) *evalPlan {
	p.claim(depth)

	sp := p.resolveSource()
	flags := p.srcFlags.normalize()
	if p.unordered {
		flags &^= Ordered
	}

	from := 0
	for i, st := range p.stages {
		if st.stateless {
			flags = flags.fold(st.effects)
			continue
		}

		buf := p.toBufferParallel(sp, from, i, flags)
		out := applyBarrier(st, buf)

		flags = flags.fold(st.effects)
		sp = newBufferSpliterator(out, flags)
		flags = sp.characteristics()
		from = i + 1
	}

	return &evalPlan{p: p, sp: sp, from: from, flags: flags}
}

// toBufferParallel evaluates stages [from, to) over sp into a single buffer,
// concatenating leaf partitions in encounter order.
func (p *pipe) toBufferParallel(sp spliterator, from, to int, flags Flags) []any {
	leaf := func(part spliterator, cancelled func() bool) ([]any, bool) {
		var buf []any
		sink := p.wrapSink(&bufferSink{out: &buf}, from, to)
		copyInto(part, sink, p.shortCircuits(from, to), cancelled)
		return buf, false
	}
	combine := func(left, right []any) []any {
		return append(left, right...)
	}
	out, _ := fj.Run(p.fjOptions(sp, flags.Has(Ordered), false), sp, splitFn, sizeFn, leaf, combine)
	return out
}

// applyBarrier runs one stateful stage's wrap over a fully materialized
// upstream buffer, honoring cancellation the stage may signal (a limiting
// stage stops early even at a barrier).
func applyBarrier(st stageRec, in []any) []any {
	var out []any
	sink := st.wrap(&bufferSink{out: &out})
	sink.begin(int64(len(in)))
	for _, v := range in {
		if sink.cancelled() {
			break
		}
		sink.accept(v)
	}
	sink.end()
	return out
}

// bufferSink collects pushed elements into a slice.
type bufferSink struct {
	out *[]any
}

func (b *bufferSink) begin(size int64) {
	if size > 0 && *b.out == nil {
		*b.out = make([]any, 0, size)
	}
}

func (b *bufferSink) accept(v any)    { *b.out = append(*b.out, v) }
func (b *bufferSink) end()            {}
func (b *bufferSink) cancelled() bool { return false }

// sizeFn and splitFn adapt spliterators to the fork-join runner.
func sizeFn(sp spliterator) int64 { return sp.estimateSize() }

func splitFn(sp spliterator) (spliterator, bool) {
	if pre := sp.trySplit(); pre != nil {
		return pre, true
	}
	return nil, false
}

// runSequential pushes the whole pipeline into term on the calling goroutine.
func (e *evalPlan) runSequential(term anySink, termShortCircuits bool) {
	sink := e.p.wrapSink(term, e.from, len(e.p.stages))
	copyInto(e.sp, sink, termShortCircuits || e.p.shortCircuits(e.from, len(e.p.stages)), nil)
}

// runParallel evaluates the remaining stateless segment with the fork-join
// engine. leafSink builds one terminal sink per leaf partition and a function
// extracting its partial result; combine merges two partial results, taking
// ownership of both and returning exactly one.
func runParallel[R any](e *evalPlan, shortCircuit bool, leafSink func() (anySink, func() (R, bool)), combine func(R, R) R) (R, bool) {
	p := e.p
	cancellable := shortCircuit || p.shortCircuits(e.from, len(p.stages))

	leaf := func(part spliterator, cancelled func() bool) (R, bool) {
		term, result := leafSink()
		sink := p.wrapSink(term, e.from, len(p.stages))
		copyInto(part, sink, cancellable, cancelled)
		return result()
	}

	return fj.Run(p.fjOptions(e.sp, e.flags.Has(Ordered), shortCircuit), e.sp, splitFn, sizeFn, leaf, combine)
}
