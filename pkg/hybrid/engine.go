package hybrid

import (
	"math"
	"sort"

	"github.com/dd0wney/tlsm-writeamp/pkg/lsmcore"
	"github.com/dd0wney/tlsm-writeamp/pkg/simlog"
	"github.com/dd0wney/tlsm-writeamp/pkg/winstat"
)

// Engine adaptively ingests points: it behaves like the classic LSM
// engine until it has collected enough delay and fan-in samples, then
// computes a sequential-buffer size and switches to a tLSM-shaped write
// path for the rest of its life. The switch is one-way.
type Engine struct {
	cfg Config
	obs lsmcore.Observer

	lsmBuffer []int64

	seqBuffer        []int64
	nonSeqBuffer     []int64
	seqBufferSize    int
	nonSeqBufferSize int
	maxGenOnL1       int64

	l1         []*lsmcore.Table
	useTLSM    bool
	totalWrite int64

	delays            []int64
	etaWindow         *winstat.Window
	historyMergeFanin winstat.History
}

// NewEngine validates cfg and constructs an Engine. obs may be nil.
func NewEngine(cfg Config, obs lsmcore.Observer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		obs:       orNoop(obs),
		lsmBuffer: make([]int64, 0, cfg.LSMBufferSize),
		etaWindow: winstat.NewWindow(cfg.StatisticsNumber),
	}, nil
}

// UseTLSM reports whether the engine has switched to the tLSM write path.
func (e *Engine) UseTLSM() bool { return e.useTLSM }

// SequentialBufferSize returns the sequential buffer capacity chosen at
// switch time, or 0 before the switch happens.
func (e *Engine) SequentialBufferSize() int { return e.seqBufferSize }

// Write ingests g, whose arrival lagged its generation time by delay.
// Before the switch, delay feeds the sample pool used to decide when and
// how to switch; after the switch, delay is ignored.
func (e *Engine) Write(g int64, delay int64) error {
	if !e.useTLSM {
		if e.shouldSwitch() {
			if err := e.flushLSMBuffer(); err != nil {
				return err
			}
			n1 := e.candidateN1()
			e.setSequentialBufferSize(n1)
			if len(e.l1) > 0 {
				e.maxGenOnL1 = e.l1[len(e.l1)-1].MaxGen()
			}
			e.seqBuffer = make([]int64, 0, e.seqBufferSize)
			e.nonSeqBuffer = make([]int64, 0, e.nonSeqBufferSize)
			e.useTLSM = true
		} else {
			e.delays = append(e.delays, delay)
		}
	}

	e.obs.RecordWrite(1)
	if !e.useTLSM {
		return e.writeLSM(g)
	}
	return e.writeTLSM(g)
}

func (e *Engine) shouldSwitch() bool {
	return len(e.delays) >= e.cfg.StatisticsNumber && e.etaWindow.Full()
}

func (e *Engine) writeLSM(g int64) error {
	e.lsmBuffer = append(e.lsmBuffer, g)
	if len(e.lsmBuffer) == e.cfg.LSMBufferSize {
		return e.flushLSMBuffer()
	}
	return nil
}

func (e *Engine) flushLSMBuffer() error {
	if len(e.lsmBuffer) == 0 {
		return nil
	}
	keys := e.lsmBuffer
	e.lsmBuffer = make([]int64, 0, e.cfg.LSMBufferSize)
	return e.mergeIntoL1(buildTable(keys, 0))
}

func (e *Engine) isSequential(g int64) bool {
	return g > e.maxGenOnL1
}

func (e *Engine) writeTLSM(g int64) error {
	if e.isSequential(g) {
		e.seqBuffer = append(e.seqBuffer, g)
		if len(e.seqBuffer) == e.seqBufferSize {
			return e.flushSequential()
		}
		return nil
	}
	e.nonSeqBuffer = append(e.nonSeqBuffer, g)
	if len(e.nonSeqBuffer) == e.nonSeqBufferSize {
		return e.flushNonSequential()
	}
	return nil
}

func (e *Engine) flushSequential() error {
	if len(e.seqBuffer) == 0 {
		return nil
	}
	keys := e.seqBuffer
	e.seqBuffer = make([]int64, 0, e.seqBufferSize)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	entries := make([]lsmcore.Entry, len(keys))
	for i, k := range keys {
		entries[i] = lsmcore.Entry{Gen: k, Writes: 1}
	}
	newTable := lsmcore.NewTable(entries, false)
	e.maxGenOnL1 = keys[len(keys)-1]
	e.totalWrite += int64(len(entries))
	e.l1 = append(e.l1, newTable)
	e.obs.RecordFlush()
	return nil
}

func (e *Engine) flushNonSequential() error {
	if len(e.nonSeqBuffer) == 0 {
		return nil
	}
	keys := e.nonSeqBuffer
	e.nonSeqBuffer = make([]int64, 0, e.nonSeqBufferSize)
	return e.mergeIntoL1(buildTable(keys, 0))
}

func buildTable(keys []int64, initialWrites int64) *lsmcore.Table {
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	entries := make([]lsmcore.Entry, len(keys))
	for i, k := range keys {
		entries[i] = lsmcore.Entry{Gen: k, Writes: initialWrites}
	}
	return lsmcore.NewTable(entries, false)
}

// mergeIntoL1 is the single overlap-scan merge routine shared by the
// LSM-mode buffer flush and the post-switch non-sequential flush, exactly
// as the ingester uses one merge path for both. A table with no overlap
// is rewritten and appended directly; an overlapping run is merge-sorted
// back onto the tail. Every call — in either mode — feeds the trailing
// fan-in window used by the switch estimator.
func (e *Engine) mergeIntoL1(newTable *lsmcore.Table) error {
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

	fanin := len(overlap)
	e.etaWindow.Add(int64(fanin))
	e.historyMergeFanin.Append(int64(fanin))

	if fanin == 0 {
		newTable.Rewrite()
		e.totalWrite += int64(newTable.Len())
		e.l1 = append(e.l1, newTable)
		e.obs.RecordFlush()
		return nil
	}

	overlap = append(overlap, newTable)
	for _, t := range overlap {
		e.totalWrite += int64(t.Len())
	}
	merged, err := lsmcore.MergeSort(overlap, e.cfg.SSTableSize)
	if err != nil {
		return err
	}
	e.l1 = append(e.l1, merged...)
	e.obs.RecordFlush()
	e.obs.RecordCompaction(fanin)
	return nil
}

func (e *Engine) setSequentialBufferSize(n1 int) {
	e.seqBufferSize = n1
	e.nonSeqBufferSize = e.cfg.LSMBufferSize - n1
}

// candidateN1 estimates the sequential buffer size that minimizes the
// estimated tLSM write-amplification rate, given the delays and fan-in
// samples collected during the warm-up phase. Ties are broken toward the
// smallest candidate, since sweeping g_plus_n1 upward and keeping only
// strictly-better rates preserves the first (smallest) minimizer.
func (e *Engine) candidateN1() int {
	cdf := newDelayCDF(e.delays)
	b := e.cfg.LSMBufferSize

	sumList := make([]float64, b)
	for i := 1; i < b; i++ {
		var last float64
		if i > 1 {
			last = sumList[i-1]
		}
		sumList[i] = last + cdf.F(float64(i)*e.cfg.GenerateTimeInterval)
	}

	expectedEta := e.etaWindow.Mean()

	bestN1 := -1
	var bestRate float64
	for gPlusN1 := e.cfg.MinSequentialBufferSize; gPlusN1 < b; gPlusN1++ {
		n1Value := sumList[gPlusN1]
		gValue := float64(gPlusN1) - n1Value
		n2Value := float64(b) - n1Value
		if gValue <= 0 {
			continue
		}
		tmp := n1Value * n2Value / gValue
		rate := 2 + (expectedEta*float64(b))/(tmp+n2Value)
		if e.cfg.PrintAllN1 && e.cfg.Logger != nil {
			e.cfg.Logger.Debug("candidate n1", simlog.Int("n1", int(math.Round(n1Value))), simlog.Float64("rate", rate))
		}
		if bestN1 == -1 || rate < bestRate {
			bestRate = rate
			bestN1 = int(math.Round(n1Value))
		}
	}
	if bestN1 < e.cfg.MinSequentialBufferSize {
		bestN1 = e.cfg.MinSequentialBufferSize
	}
	if bestN1 >= b {
		bestN1 = b - 1
	}
	return bestN1
}

// Flush drains whatever buffers are currently active: the LSM buffer
// before the switch, or both tLSM buffers (sequential first) after it.
func (e *Engine) Flush() error {
	if !e.useTLSM {
		return e.flushLSMBuffer()
	}
	if err := e.flushSequential(); err != nil {
		return err
	}
	return e.flushNonSequential()
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

// TotalWrites returns the running count of physical writes performed.
func (e *Engine) TotalWrites() int64 { return e.totalWrite }

// HistoryMergeFanin returns the complete per-flush fan-in history,
// spanning both the warm-up LSM phase and the post-switch non-sequential
// flushes.
func (e *Engine) HistoryMergeFanin() []int64 { return e.historyMergeFanin.Values() }

// CollectedDelays returns the number of arrival-delay samples gathered so
// far during warm-up.
func (e *Engine) CollectedDelays() int { return len(e.delays) }
