// Package flume is a lazy sequence-processing engine: a pipeline of
// composable transformations over a splittable element source, evaluated only
// when a terminal operation is invoked, either by a single linear traversal
// or as a fork-join parallel computation over recursively split partitions.
//
// The package deliberately ships no named operations. Filtering, mapping,
// sorting and friends are application logic: callers append them with the
// generic [Stateless] and [Stateful] calls, declaring how each stage affects
// the tracked pipeline characteristics ([Flags]), and the engine uses the
// accumulated characteristics to pick cheaper strategies when safe: exact
// sizes for [Count], completion-order combining for unordered pipelines,
// per-element cancellation polling only when something can short-circuit.
//
// Reductions follow the mutable-reduction [Collector] protocol: a supplier,
// an accumulator, a combiner and a finisher that must satisfy an identity and
// an associativity law so sequential and parallel evaluation agree.
//
// A minimal pipeline:
//
//	evens := flume.Stateless(flume.FromSlice(nums), flume.OpEffects{Clears: flume.Sized | flume.Sorted},
//		func(down flume.Sink[int]) flume.Sink[int] {
//			return keepIf(down, func(v int) bool { return v%2 == 0 })
//		})
//	total := flume.Reduce(evens.Parallel(), 0,
//		func(acc, v int) int { return acc + v },
//		func(a, b int) int { return a + b })
//
// Streams over closeable resources register cleanup with
// [Stream.OnClose]; [Stream.Close] runs every handler once, in order,
// aggregating failures into a [CloseError].
package flume
