package tlsm

import "testing"

func writeAll(t *testing.T, e *Engine, vals []int64) {
	t.Helper()
	for _, v := range vals {
		if err := e.Write(v); err != nil {
			t.Fatalf("Write(%d) error = %v", v, err)
		}
	}
}

func TestEngineClassificationAndMerge(t *testing.T) {
	e, err := NewEngine(Config{SequentialBufferSize: 2, NonSequentialBufferSize: 2}, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	writeAll(t, e, []int64{10, 20})
	if got := e.MaxGenOnL1(); got != 20 {
		t.Fatalf("MaxGenOnL1() after sequential flush = %d, want 20", got)
	}
	if len(e.L1()) != 1 {
		t.Fatalf("L1() has %d tables after sequential flush, want 1", len(e.L1()))
	}
	for _, en := range e.L1()[0].Entries() {
		if en.Writes != 1 {
			t.Errorf("sequential entry Gen=%d Writes=%d, want 1", en.Gen, en.Writes)
		}
	}

	writeAll(t, e, []int64{5, 15})
	l1 := e.L1()
	if len(l1) != 1 {
		t.Fatalf("L1() has %d tables after merging non-sequential flush, want 1", len(l1))
	}
	var keys, writes []int64
	for _, en := range l1[0].Entries() {
		keys = append(keys, en.Gen)
		writes = append(writes, en.Writes)
	}
	wantKeys := []int64{5, 10, 15, 20}
	wantWrites := []int64{1, 2, 1, 2}
	if len(keys) != len(wantKeys) {
		t.Fatalf("merged keys = %v, want %v", keys, wantKeys)
	}
	for i := range wantKeys {
		if keys[i] != wantKeys[i] || writes[i] != wantWrites[i] {
			t.Fatalf("merged (keys,writes) = (%v,%v), want (%v,%v)", keys, writes, wantKeys, wantWrites)
		}
	}

	writeAll(t, e, []int64{30, 40})
	l1 = e.L1()
	if len(l1) != 2 {
		t.Fatalf("L1() has %d tables after trailing sequential flush, want 2", len(l1))
	}
	if l1[1].MinGen() != 30 || l1[1].MaxGen() != 40 {
		t.Fatalf("trailing table range = [%d,%d], want [30,40]", l1[1].MinGen(), l1[1].MaxGen())
	}
}

func TestEngineNonSequentialFlushEndsCycle(t *testing.T) {
	e, err := NewEngine(Config{SequentialBufferSize: 2, NonSequentialBufferSize: 2}, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	writeAll(t, e, []int64{10, 20, 5, 15})

	if len(e.HistoryWriteAmpRate()) != 1 {
		t.Fatalf("HistoryWriteAmpRate() len = %d, want 1", len(e.HistoryWriteAmpRate()))
	}
	if len(e.HistoryRewrite()) != len(e.HistoryWriteAmpRate()) {
		t.Fatalf("HistoryRewrite() and HistoryWriteAmpRate() lengths diverge: %d vs %d",
			len(e.HistoryRewrite()), len(e.HistoryWriteAmpRate()))
	}

	stats := e.HistoryRewrite()[0]
	if stats.DirectFlushedTables != 1 || stats.DirectFlushedPoints != 2 {
		t.Fatalf("CycleStats = %+v, want one direct-flushed table of 2 points", stats)
	}
	if stats.MergeSortedTables != 0 {
		t.Fatalf("CycleStats.MergeSortedTables = %d, want 0 (first cycle has no prior merge)", stats.MergeSortedTables)
	}

	wantRate := float64(stats.TotalPoints) / 4.0
	if got := e.HistoryWriteAmpRate()[0]; got != wantRate {
		t.Fatalf("HistoryWriteAmpRate()[0] = %v, want %v", got, wantRate)
	}
}

func TestEngineSequentialFlushNeverTriggersMerge(t *testing.T) {
	e, err := NewEngine(Config{SequentialBufferSize: 3, NonSequentialBufferSize: 3}, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	writeAll(t, e, []int64{10, 20, 30})
	if len(e.HistoryRewrite()) != 0 {
		t.Fatalf("HistoryRewrite() after sequential-only writes = %v, want empty (no cycle ended)", e.HistoryRewrite())
	}
}

func TestEngineNoOverlapNonSequentialFlushLeavesWritesAtZero(t *testing.T) {
	e, err := NewEngine(Config{SequentialBufferSize: 3, NonSequentialBufferSize: 2}, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	// Keys at or below the initial maxGenOnL1 of 0 are non-sequential.
	writeAll(t, e, []int64{0, -1})
	if len(e.L1()) != 1 {
		t.Fatalf("L1() has %d tables, want 1", len(e.L1()))
	}
	for _, en := range e.L1()[0].Entries() {
		if en.Writes != 0 {
			t.Fatalf("first-ever non-sequential flush with no overlap entry Gen=%d Writes=%d, want 0 (merge-sort single-input passthrough)", en.Gen, en.Writes)
		}
	}
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	if _, err := NewEngine(Config{SequentialBufferSize: 0, NonSequentialBufferSize: 2}, nil); err == nil {
		t.Fatal("NewEngine() with SequentialBufferSize=0 returned nil error")
	}
}
