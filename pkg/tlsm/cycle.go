package tlsm

// CycleStats is the 5-tuple recorded each time a non-sequential flush ends
// a cycle: how many of the tables folded into that flush's merge arrived
// via a prior merge versus a prior direct (sequential) flush, the point
// counts behind each, and their sum.
type CycleStats struct {
	MergeSortedTables   int
	DirectFlushedTables int
	MergeSortedPoints   int64
	DirectFlushedPoints int64
	TotalPoints         int64
}
