package lsmcore

import (
	"sort"

	"github.com/dd0wney/tlsm-writeamp/pkg/winstat"
)

// Engine is the classic two-level LSM structure: a single in-memory write
// buffer (C0) that flushes and compacts into an ordered, non-overlapping
// sequence of Tables (L1).
//
// Write is synchronous and has no suspension points: flush and compaction
// happen inline, never on a background goroutine.
type Engine struct {
	cfg    Config
	obs    Observer
	buffer []int64
	l1     []*Table

	faninHistory winstat.History
	faninWindow  *winstat.Window
	totalWrites  int64
}

// NewEngine validates cfg and constructs an Engine. obs may be nil.
func NewEngine(cfg Config, obs Observer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:         cfg,
		obs:         orNoop(obs),
		buffer:      make([]int64, 0, cfg.BufferSize),
		faninWindow: winstat.NewWindow(cfg.StatisticsWindow),
	}, nil
}

// Write appends g to the buffer, flushing it to L1 once it fills.
func (e *Engine) Write(g int64) error {
	e.buffer = append(e.buffer, g)
	e.obs.RecordWrite(1)
	if len(e.buffer) == e.cfg.BufferSize {
		return e.flushBuffer()
	}
	return nil
}

// Flush drains any points still sitting in the write buffer. Calling
// Flush twice with nothing written in between is a no-op the second time.
func (e *Engine) Flush() error {
	return e.flushBuffer()
}

func (e *Engine) flushBuffer() error {
	if len(e.buffer) == 0 {
		return nil
	}
	keys := e.buffer
	e.buffer = make([]int64, 0, e.cfg.BufferSize)

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{Gen: k, Writes: 0}
	}
	newTable := NewTable(entries, false)
	return e.mergeIntoL1(newTable)
}

// mergeIntoL1 pops overlapping tables off the tail of L1, and either
// appends the new table directly (no overlap) or merge-sorts the
// collected overlap plus the new table back onto the tail.
func (e *Engine) mergeIntoL1(newTable *Table) error {
	var overlap []*Table
	for len(e.l1) > 0 {
		tail := e.l1[len(e.l1)-1]
		if tail.MaxGen() > newTable.MinGen() {
			e.l1 = e.l1[:len(e.l1)-1]
			overlap = append(overlap, tail)
			continue
		}
		break
	}

	fanin := len(overlap)
	e.faninHistory.Append(int64(fanin))
	e.faninWindow.Add(int64(fanin))

	if fanin == 0 {
		newTable.Rewrite()
		e.totalWrites += int64(newTable.Len())
		e.l1 = append(e.l1, newTable)
		e.obs.RecordFlush()
		return nil
	}

	overlap = append(overlap, newTable)
	for _, t := range overlap {
		e.totalWrites += int64(t.Len())
	}
	merged, err := MergeSort(overlap, e.cfg.SSTableSize)
	if err != nil {
		return err
	}
	e.l1 = append(e.l1, merged...)
	e.obs.RecordFlush()
	e.obs.RecordCompaction(fanin)
	return nil
}

// AverageWriteAmplification returns the mean fan-in over the configured
// trailing window, used as a write-amplification proxy. Returns 0 before
// any cycle completes.
func (e *Engine) AverageWriteAmplification() float64 {
	return e.faninWindow.Mean()
}

// HistoryMergeFanin returns the complete per-flush fan-in history.
func (e *Engine) HistoryMergeFanin() []int64 {
	return e.faninHistory.Values()
}

// TotalWrites returns the running count of physical writes performed.
func (e *Engine) TotalWrites() int64 { return e.totalWrites }

// L1 returns the current ordered run of Tables. Callers must not mutate
// the returned slice or its Tables.
func (e *Engine) L1() []*Table { return e.l1 }

// GetWriteAmplification sums points and write counts across every table
// on L1, matching the tLSM engine's read-only accessor of the same name
// so callers can treat both engines uniformly.
func (e *Engine) GetWriteAmplification() (points int64, writes int64) {
	for _, t := range e.l1 {
		points += int64(t.Len())
		writes += t.TotalWrites()
	}
	return points, writes
}
