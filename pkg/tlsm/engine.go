package tlsm

import (
	"sort"

	"github.com/dd0wney/tlsm-writeamp/pkg/lsmcore"
)

// Engine is the two-buffer tLSM structure. A point strictly newer than
// every key already on L1 is sequential and goes to the sequential
// buffer; anything else is non-sequential and goes to the non-sequential
// buffer. Only a non-sequential flush triggers the overlap-scan merge,
// and only a non-sequential flush ends a cycle.
type Engine struct {
	cfg Config
	obs lsmcore.Observer

	seqBuffer    []int64
	nonSeqBuffer []int64
	l1           []*lsmcore.Table
	maxGenOnL1   int64
	writeTimes   int64

	pointsInCycle     int64
	seqFlushesInCycle int

	historyRewrite       []CycleStats
	historyWriteAmpRate  []float64
	historySeqFlushCount []int
	historyPointsInCycle []int64
}

// NewEngine validates cfg and constructs an Engine. obs may be nil.
func NewEngine(cfg Config, obs lsmcore.Observer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:          cfg,
		obs:          orNoop(obs),
		seqBuffer:    make([]int64, 0, cfg.SequentialBufferSize),
		nonSeqBuffer: make([]int64, 0, cfg.NonSequentialBufferSize),
	}, nil
}

func (e *Engine) isSequential(g int64) bool {
	return g > e.maxGenOnL1
}

// Write classifies g as sequential or non-sequential against the current
// tail of L1 and appends it to the matching buffer, flushing that buffer
// if it has reached capacity.
func (e *Engine) Write(g int64) error {
	e.pointsInCycle++
	e.obs.RecordWrite(1)
	if e.isSequential(g) {
		e.seqBuffer = append(e.seqBuffer, g)
		if len(e.seqBuffer) == e.cfg.SequentialBufferSize {
			return e.flushSequential()
		}
		return nil
	}
	e.nonSeqBuffer = append(e.nonSeqBuffer, g)
	if len(e.nonSeqBuffer) == e.cfg.NonSequentialBufferSize {
		return e.flushNonSequential()
	}
	return nil
}

// Flush drains both buffers, sequential first, matching the order a
// caller that wants a deterministic final state needs: the sequential
// flush can only raise maxGenOnL1, never trigger a merge, so doing it
// before the non-sequential flush cannot hide an overlap the other order
// would have caught.
func (e *Engine) Flush() error {
	if err := e.flushSequential(); err != nil {
		return err
	}
	return e.flushNonSequential()
}

func (e *Engine) flushSequential() error {
	if len(e.seqBuffer) == 0 {
		return nil
	}
	keys := e.seqBuffer
	e.seqBuffer = make([]int64, 0, e.cfg.SequentialBufferSize)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	entries := make([]lsmcore.Entry, len(keys))
	for i, k := range keys {
		entries[i] = lsmcore.Entry{Gen: k, Writes: 1}
	}
	newTable := lsmcore.NewTable(entries, false)
	e.maxGenOnL1 = keys[len(keys)-1]
	e.writeTimes += int64(len(entries))
	e.l1 = append(e.l1, newTable)
	e.seqFlushesInCycle++
	e.obs.RecordFlush()
	return nil
}

func (e *Engine) flushNonSequential() error {
	if len(e.nonSeqBuffer) == 0 {
		return nil
	}
	keys := e.nonSeqBuffer
	e.nonSeqBuffer = make([]int64, 0, e.cfg.NonSequentialBufferSize)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	entries := make([]lsmcore.Entry, len(keys))
	for i, k := range keys {
		entries[i] = lsmcore.Entry{Gen: k, Writes: 0}
	}
	newTable := lsmcore.NewTable(entries, false)

	stats, fanin, err := e.mergeIntoL1(newTable)
	if err != nil {
		return err
	}

	rate := 0.0
	if e.pointsInCycle > 0 {
		rate = float64(stats.TotalPoints) / float64(e.pointsInCycle)
	}
	e.historyRewrite = append(e.historyRewrite, stats)
	e.historyWriteAmpRate = append(e.historyWriteAmpRate, rate)
	e.historySeqFlushCount = append(e.historySeqFlushCount, e.seqFlushesInCycle)
	e.historyPointsInCycle = append(e.historyPointsInCycle, e.pointsInCycle)
	e.seqFlushesInCycle = 0
	e.pointsInCycle = 0

	e.obs.RecordFlush()
	if fanin > 0 {
		e.obs.RecordCompaction(fanin)
	}
	return nil
}

// mergeIntoL1 pops every table off the tail of L1 that overlaps newTable,
// tallies them into a CycleStats by origin, then always runs them (plus
// newTable) through merge-sort and appends the result back onto L1 — even
// when nothing overlapped, in which case merge-sort's single-input rule
// leaves newTable's entries untouched.
func (e *Engine) mergeIntoL1(newTable *lsmcore.Table) (CycleStats, int, error) {
	var overlap []*lsmcore.Table
	for len(e.l1) > 0 {
		tail := e.l1[len(e.l1)-1]
		if tail.MaxGen() > newTable.MinGen() {
			e.l1 = e.l1[:len(e.l1)-1]
			overlap = append(overlap, tail)
			continue
		}
		break
	}

	var stats CycleStats
	for _, t := range overlap {
		if t.FromMergeSort() {
			stats.MergeSortedTables++
			stats.MergeSortedPoints += int64(t.Len())
		} else {
			stats.DirectFlushedTables++
			stats.DirectFlushedPoints += int64(t.Len())
		}
	}
	stats.TotalPoints = stats.MergeSortedPoints + stats.DirectFlushedPoints

	mergeList := append(overlap, newTable)
	for _, t := range mergeList {
		e.writeTimes += int64(t.Len())
	}
	merged, err := lsmcore.MergeSort(mergeList, e.cfg.SSTableSize)
	if err != nil {
		return CycleStats{}, 0, err
	}
	e.l1 = append(e.l1, merged...)
	return stats, len(overlap), nil
}

// GetWriteAmplification sums points and write counts across every table
// on L1.
func (e *Engine) GetWriteAmplification() (points int64, writes int64) {
	for _, t := range e.l1 {
		points += int64(t.Len())
		writes += t.TotalWrites()
	}
	return points, writes
}

// L1 returns the current ordered run of Tables. Callers must not mutate
// the returned slice or its Tables.
func (e *Engine) L1() []*lsmcore.Table { return e.l1 }

// MaxGenOnL1 returns the largest key currently present on L1, the
// threshold Write classifies new points against.
func (e *Engine) MaxGenOnL1() int64 { return e.maxGenOnL1 }

// TotalWrites returns the running count of physical writes performed.
func (e *Engine) TotalWrites() int64 { return e.writeTimes }

// HistoryRewrite returns the per-cycle CycleStats, one entry per
// non-sequential flush.
func (e *Engine) HistoryRewrite() []CycleStats { return e.historyRewrite }

// HistoryWriteAmpRate returns the per-cycle write amplification rate, one
// entry per non-sequential flush, aligned index-for-index with
// HistoryRewrite.
func (e *Engine) HistoryWriteAmpRate() []float64 { return e.historyWriteAmpRate }

// HistorySequentialFlushCount returns, for each cycle, how many
// sequential flushes happened before the cycle-ending non-sequential one.
func (e *Engine) HistorySequentialFlushCount() []int { return e.historySeqFlushCount }

// HistoryPointsInCycle returns, for each cycle, the total number of
// points written (sequential and non-sequential) during that cycle.
func (e *Engine) HistoryPointsInCycle() []int64 { return e.historyPointsInCycle }

// AverageWriteAmpRate returns the mean write amplification rate over the
// configured trailing window of cycles, or 0 if no cycle has completed.
func (e *Engine) AverageWriteAmpRate() float64 {
	n := len(e.historyWriteAmpRate)
	if n == 0 {
		return 0
	}
	window := e.cfg.StatisticsWindow
	start := 0
	if window > 0 && window < n {
		start = n - window
	}
	slice := e.historyWriteAmpRate[start:]
	var sum float64
	for _, v := range slice {
		sum += v
	}
	return sum / float64(len(slice))
}
