package hybrid

import "testing"

func TestEngineSwitchesExactlyOnceAfterEnoughSamples(t *testing.T) {
	cfg := Config{
		LSMBufferSize:           8,
		GenerateTimeInterval:    1,
		StatisticsNumber:        4,
		MinSequentialBufferSize: 2,
	}
	e, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	var g int64
	switches := 0
	prevUseTLSM := false
	// Monotonically increasing keys never overlap, so every LSM-buffer
	// flush records a fan-in sample of 0; the window fills on the 4th
	// flush (32 writes) while the delay count has long since cleared the
	// threshold, so the switch fires on the very next write.
	for i := 0; i < 400; i++ {
		g++
		delay := int64(i % 7)
		if err := e.Write(g, delay); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if e.UseTLSM() && !prevUseTLSM {
			switches++
		}
		prevUseTLSM = e.UseTLSM()
	}

	if !e.UseTLSM() {
		t.Fatal("UseTLSM() still false after 400 writes, want switch to have happened")
	}
	if switches != 1 {
		t.Fatalf("UseTLSM() transitioned %d times, want exactly 1", switches)
	}
}

func TestEngineSwitchViaOverlappingBatches(t *testing.T) {
	cfg := Config{
		LSMBufferSize:           4,
		GenerateTimeInterval:    1,
		StatisticsNumber:        2,
		MinSequentialBufferSize: 1,
	}
	e, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	// Batches of 4 that each hold a key below the previous batch's
	// maximum, so every flush after the first overlaps the tail of L1,
	// filling the fan-in window quickly.
	batches := [][]int64{
		{1, 2, 3, 4},
		{3, 5, 6, 7},
		{8, 2, 9, 10},
	}
	switches := 0
	prevUseTLSM := false
	idx := 0
	for len(e.delays) < cfg.StatisticsNumber || !e.etaWindow.Full() {
		batch := batches[idx%len(batches)]
		idx++
		for _, v := range batch {
			if err := e.Write(v, int64(idx)); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			if e.UseTLSM() && !prevUseTLSM {
				switches++
			}
			prevUseTLSM = e.UseTLSM()
		}
		if idx > 1000 {
			t.Fatal("switch predicate never satisfied")
		}
	}

	// The switch predicate now holds; the next write performs the switch.
	if err := e.Write(batches[idx%len(batches)][0], int64(idx)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if e.UseTLSM() && !prevUseTLSM {
		switches++
	}

	if switches != 1 {
		t.Fatalf("UseTLSM() transitioned %d times, want exactly 1", switches)
	}
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	if _, err := NewEngine(Config{LSMBufferSize: 0}, nil); err == nil {
		t.Fatal("NewEngine() with LSMBufferSize=0 returned nil error")
	}
}

func TestEngineMinSequentialBufferMustBeBelowLSMBufferSize(t *testing.T) {
	cfg := Config{
		LSMBufferSize:           4,
		GenerateTimeInterval:    1,
		StatisticsNumber:        1,
		MinSequentialBufferSize: 4,
	}
	if _, err := NewEngine(cfg, nil); err == nil {
		t.Fatal("NewEngine() with MinSequentialBufferSize == LSMBufferSize returned nil error")
	}
}
