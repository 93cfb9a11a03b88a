package main

import (
	"fmt"

	"github.com/dd0wney/tlsm-writeamp/pkg/hybrid"
	"github.com/dd0wney/tlsm-writeamp/pkg/lsmcore"
	"github.com/dd0wney/tlsm-writeamp/pkg/resultsink"
	"github.com/dd0wney/tlsm-writeamp/pkg/runident"
	"github.com/dd0wney/tlsm-writeamp/pkg/simmetrics"
	"github.com/dd0wney/tlsm-writeamp/pkg/simtui"
	"github.com/dd0wney/tlsm-writeamp/pkg/tlsm"
)

// engineRunner lets the driving loop stay ignorant of which engine kind
// it's feeding: only buildRunner needs to branch on engine kind.
type engineRunner interface {
	write(p workloadPoint) error
	flush() error
	snapshot() simtui.Snapshot
	report(identity runident.Identity) resultsink.Report
	recordMetrics()
	metricsRegistry() *simmetrics.Registry
}

type lsmRunner struct {
	engine  *lsmcore.Engine
	metrics *simmetrics.Registry
}

func (r *lsmRunner) write(p workloadPoint) error { return r.engine.Write(p.gen) }
func (r *lsmRunner) flush() error                { return r.engine.Flush() }

func (r *lsmRunner) snapshot() simtui.Snapshot {
	points, writes := r.engine.GetWriteAmplification()
	fanin := r.engine.HistoryMergeFanin()
	var last int
	if len(fanin) > 0 {
		last = int(fanin[len(fanin)-1])
	}
	return simtui.Snapshot{
		Engine:                    "lsm",
		TotalPoints:               points,
		TotalWrites:               writes,
		AverageWriteAmplification: r.engine.AverageWriteAmplification(),
		LastFanin:                 last,
		CyclesCompleted:           len(fanin),
	}
}

// recordMetrics pushes the engine's current gauges into its Prometheus
// registry so a scrape between writes sees live values, not just the
// monotonic counters the Observer callbacks already update.
func (r *lsmRunner) recordMetrics() {
	r.metrics.SetWriteAmpRatio(r.engine.AverageWriteAmplification())
	r.metrics.SetL1TablesTotal(len(r.engine.L1()))
	r.metrics.SetTotalWrites(r.engine.TotalWrites())
}

func (r *lsmRunner) metricsRegistry() *simmetrics.Registry { return r.metrics }

func (r *lsmRunner) report(identity runident.Identity) resultsink.Report {
	points, writes := r.engine.GetWriteAmplification()
	return resultsink.Report{
		Identity:                  identity,
		TotalPoints:               points,
		TotalWrites:               writes,
		AverageWriteAmplification: r.engine.AverageWriteAmplification(),
		HistoryMergeFanin:         r.engine.HistoryMergeFanin(),
	}
}

type tlsmRunner struct {
	engine  *tlsm.Engine
	metrics *simmetrics.Registry
}

func (r *tlsmRunner) write(p workloadPoint) error { return r.engine.Write(p.gen) }
func (r *tlsmRunner) flush() error                { return r.engine.Flush() }

func (r *tlsmRunner) snapshot() simtui.Snapshot {
	points, writes := r.engine.GetWriteAmplification()
	rates := r.engine.HistoryWriteAmpRate()
	var last int
	if stats := r.engine.HistoryRewrite(); len(stats) > 0 {
		last = stats[len(stats)-1].MergeSortedTables + stats[len(stats)-1].DirectFlushedTables
	}
	return simtui.Snapshot{
		Engine:                    "tlsm",
		TotalPoints:               points,
		TotalWrites:               writes,
		AverageWriteAmplification: r.engine.AverageWriteAmpRate(),
		LastFanin:                 last,
		CyclesCompleted:           len(rates),
	}
}

func (r *tlsmRunner) recordMetrics() {
	r.metrics.SetWriteAmpRatio(r.engine.AverageWriteAmpRate())
	r.metrics.SetL1TablesTotal(len(r.engine.L1()))
	r.metrics.SetTotalWrites(r.engine.TotalWrites())
}

func (r *tlsmRunner) metricsRegistry() *simmetrics.Registry { return r.metrics }

func (r *tlsmRunner) report(identity runident.Identity) resultsink.Report {
	points, writes := r.engine.GetWriteAmplification()
	stats := r.engine.HistoryRewrite()
	fanin := make([]int64, len(stats))
	for i, s := range stats {
		fanin[i] = int64(s.MergeSortedTables + s.DirectFlushedTables)
	}
	return resultsink.Report{
		Identity:                  identity,
		TotalPoints:               points,
		TotalWrites:               writes,
		AverageWriteAmplification: r.engine.AverageWriteAmpRate(),
		HistoryMergeFanin:         fanin,
	}
}

type hybridRunner struct {
	engine  *hybrid.Engine
	metrics *simmetrics.Registry
}

func (r *hybridRunner) write(p workloadPoint) error { return r.engine.Write(p.gen, p.delay) }
func (r *hybridRunner) flush() error                { return r.engine.Flush() }

func (r *hybridRunner) snapshot() simtui.Snapshot {
	points, writes := r.engine.GetWriteAmplification()
	fanin := r.engine.HistoryMergeFanin()
	var last int
	if len(fanin) > 0 {
		last = int(fanin[len(fanin)-1])
	}
	return simtui.Snapshot{
		Engine:                    fmt.Sprintf("hybrid(tlsm=%v)", r.engine.UseTLSM()),
		TotalPoints:               points,
		TotalWrites:               writes,
		AverageWriteAmplification: averageFanin(fanin),
		LastFanin:                 last,
		CyclesCompleted:           len(fanin),
	}
}

func (r *hybridRunner) recordMetrics() {
	r.metrics.SetWriteAmpRatio(averageFanin(r.engine.HistoryMergeFanin()))
	r.metrics.SetL1TablesTotal(len(r.engine.L1()))
	r.metrics.SetTotalWrites(r.engine.TotalWrites())
}

func (r *hybridRunner) metricsRegistry() *simmetrics.Registry { return r.metrics }

func (r *hybridRunner) report(identity runident.Identity) resultsink.Report {
	points, writes := r.engine.GetWriteAmplification()
	fanin := r.engine.HistoryMergeFanin()
	return resultsink.Report{
		Identity:                  identity,
		TotalPoints:               points,
		TotalWrites:               writes,
		AverageWriteAmplification: averageFanin(fanin),
		HistoryMergeFanin:         fanin,
	}
}

// averageFanin computes a simple mean over a fan-in history. The hybrid
// engine tracks its own bounded eta window internally for the switch
// estimator but does not expose a rolling average of the full history, so
// the CLI computes one directly for reporting purposes.
func averageFanin(history []int64) float64 {
	if len(history) == 0 {
		return 0
	}
	var sum int64
	for _, v := range history {
		sum += v
	}
	return float64(sum) / float64(len(history))
}
