// Package stream provides a small, in-process reactive stream engine.
//
// A Stream is a cold, immutable description of a sequence of values. Nothing
// runs until it is subscribed, and every subscription re-runs the production
// from scratch. A subscription delivers zero or more values followed by
// exactly one terminal signal (completion or failure), unless it is cancelled.
//
// Key features include:
//   - Creation from literals, ranges, slices, lazy iterators and intervals.
//   - Merge, Zip and First to combine several streams.
//   - Map, FlatMap, Filter, Distinct, Buffer and collection operators.
//   - Count and time bounded Take and Skip, delayed subscription and delayed elements.
//   - Pluggable schedulers, with a swappable clock for time based operators.
//
// Operators that change the element type (Map, FlatMap, Zip, Buffer, ...) are
// package-level functions; operators that keep it are methods on Stream.
//
// Basic usage involves creating a Source, applying Transformations, and
// consuming the result with Subscribe or a blocking Terminal.
package stream
