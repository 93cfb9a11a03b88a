// Package lsmcore implements the data-structure core shared by every
// engine in the simulator: the immutable on-disk run (Table), the k-way
// merge-sort compaction engine, and the classic two-level LSM engine that
// flushes a single write buffer into an ordered, non-overlapping run.
package lsmcore
