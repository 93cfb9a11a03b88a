// Package tlsm implements the timestamp-aware LSM engine: two write
// buffers split by sequentiality (a sequential buffer flushed straight to
// the tail of L1, and a non-sequential buffer flushed through the same
// overlap-scan merge the classic engine uses) plus the per-cycle
// bookkeeping needed to compute a write-amplification rate.
package tlsm
