// Package fj implements the fork-join evaluation strategy behind parallel
// terminal operations: a splittable work source is recursively partitioned
// into a task tree, leaves are evaluated concurrently, and partial results
// are combined bottom-up, in encounter order when required.
package fj

import (
	"math"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// Options control one fork-join run.
type Options struct {
	// TargetSize is the partition size below which no further splitting is
	// attempted.
	TargetSize int64

	// Ordered requires partial results to be reassembled in source encounter
	// order, regardless of which leaf finished first. When a short-circuit
	// run is ordered, a found result cancels only tasks covering later
	// partitions, so an earlier match cannot be lost.
	Ordered bool

	// ShortCircuit marks the run as able to finish on the first found
	// result. Leaves report found results via their second return value;
	// combining is skipped and the first found result (in encounter order
	// when Ordered) wins. Sibling tasks already in flight run to completion
	// but their results are discarded; not-yet-started tasks are skipped.
	ShortCircuit bool

	Logger zerolog.Logger
}

// task is one node of the binary-ish task tree. A task repeatedly splits off
// prefix children (each scheduled on its own goroutine) until its remainder
// is small enough, evaluates the remainder as a leaf, then joins and folds
// children in encounter order.
type task[S, R any] struct {
	parent *task[S, R]
	idx    int

	src   S
	res   R
	found bool

	children []*task[S, R]

	// cancelAfter is the lowest child index whose later siblings (and the
	// local remainder, which is logically the last child) are cancelled.
	cancelAfter atomic.Int64

	done chan struct{}
}

type runner[S, R any] struct {
	opts    Options
	split   func(S) (S, bool)
	size    func(S) int64
	leaf    func(S, func() bool) (R, bool)
	combine func(R, R) R

	cancel atomic.Bool

	panicMu  sync.Mutex
	panicVal any
	panicked bool
}

// Run evaluates root with the fork-join strategy and reports the combined
// result, plus whether it was produced by a short-circuiting leaf.
//
// split removes and returns a prefix partition (ok=false when no further
// useful split exists), size estimates remaining elements (negative when
// unknown), leaf evaluates one partition sequentially, polling the supplied
// cancellation check at its natural checkpoints, and combine merges two
// partial results, taking ownership of both and returning exactly one.
//
// A panic in any leaf or combine aborts the run: remaining work is cancelled,
// no partial result is returned, and the first observed panic value is
// re-raised on the calling goroutine.
func Run[S, R any](
	opts Options,
	root S,
	split func(S) (S, bool),
	size func(S) int64,
	leaf func(part S, cancelled func() bool) (R, bool),
	combine func(R, R) R,
) (R, bool) {
	r := &runner[S, R]{
		opts:    opts,
		split:   split,
		size:    size,
		leaf:    leaf,
		combine: combine,
	}
	t := newTask[S, R](nil, 0, root)
	r.compute(t)
	if r.panicked {
		panic(r.panicVal)
	}
	return t.res, t.found
}

// recordPanic keeps the first panic observed by any task and cancels the
// rest of the run.
func (r *runner[S, R]) recordPanic(v any) {
	r.panicMu.Lock()
	if !r.panicked {
		r.panicked = true
		r.panicVal = v
	}
	r.panicMu.Unlock()
	r.cancel.Store(true)
}

func newTask[S, R any](parent *task[S, R], idx int, src S) *task[S, R] {
	t := &task[S, R]{parent: parent, idx: idx, src: src, done: make(chan struct{})}
	t.cancelAfter.Store(math.MaxInt64)
	return t
}

// cancelled reports whether t's subtree has been abandoned: either the whole
// run was cancelled, or an ancestor recorded a found result in an earlier
// partition.
func (r *runner[S, R]) cancelled(t *task[S, R]) bool {
	if r.cancel.Load() {
		return true
	}
	// t's own splitting loop and local remainder sit after every child
	// created so far. Only t's goroutine reads len(t.children), so the read
	// is race-free.
	if t.cancelAfter.Load() < int64(len(t.children)) {
		return true
	}
	for cur := t; cur.parent != nil; cur = cur.parent {
		if cur.parent.cancelAfter.Load() < int64(cur.idx) {
			return true
		}
	}
	return false
}

// cancelLater prevents tasks covering partitions after t from starting.
// Walking to the root mirrors the encounter-order numbering: at every level,
// siblings with a higher index cover strictly later elements.
func (r *runner[S, R]) cancelLater(t *task[S, R]) {
	for cur := t; cur.parent != nil; cur = cur.parent {
		p := cur.parent
		for {
			prev := p.cancelAfter.Load()
			if prev <= int64(cur.idx) || p.cancelAfter.CompareAndSwap(prev, int64(cur.idx)) {
				break
			}
		}
	}
}

func (r *runner[S, R]) compute(t *task[S, R]) {
	defer func() {
		if v := recover(); v != nil {
			r.recordPanic(v)
		}
		close(t.done)
	}()

	src := t.src
	target := r.opts.TargetSize
	for {
		sz := r.size(src)
		if sz >= 0 && sz <= target {
			break
		}
		if r.cancelled(t) {
			break
		}
		prefix, ok := r.split(src)
		if !ok {
			break
		}
		child := newTask(t, len(t.children), prefix)
		t.children = append(t.children, child)
		r.opts.Logger.Trace().
			Int("child", child.idx).
			Int64("size", r.size(prefix)).
			Msg("flume: fork")
		go r.compute(child)
	}

	// The local remainder is logically the last child in encounter order.
	if !r.cancelled(t) {
		var found bool
		t.res, found = r.leaf(src, func() bool { return r.cancelled(t) })
		if found {
			t.found = true
			if r.opts.ShortCircuit {
				if r.opts.Ordered {
					r.cancelLater(t)
				} else {
					r.cancel.Store(true)
				}
			}
		}
	}

	r.join(t)
}

// join waits for all children and folds their results with the local result,
// in encounter order (children are earlier partitions than the remainder).
func (r *runner[S, R]) join(t *task[S, R]) {
	for _, c := range t.children {
		<-c.done
	}

	if r.opts.ShortCircuit {
		// First found result in encounter order wins; everything else,
		// including results from leaves that ran to completion after
		// cancellation, is discarded.
		for _, c := range t.children {
			if c.found {
				t.res, t.found = c.res, true
				return
			}
		}
		// t.res/t.found already hold the local leaf outcome.
		return
	}

	// A cancelled non-short-circuit run is aborting on a panic; its partial
	// results are dead, so don't feed them to user code.
	if r.cancel.Load() {
		return
	}

	acc := t.res
	for i := len(t.children) - 1; i >= 0; i-- {
		acc = r.combine(t.children[i].res, acc)
	}
	if len(t.children) > 0 {
		r.opts.Logger.Trace().Int("children", len(t.children)).Msg("flume: combine")
	}
	t.res = acc
}
