// Package simmetrics wires the simulator's engines to Prometheus,
// registering each subsystem's counters and gauges through promauto
// against a private registry.
package simmetrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the simulator's Prometheus metrics. It implements
// lsmcore.Observer, which the lsmcore, tlsm and hybrid engines all
// accept, so engines can report telemetry without importing this package.
type Registry struct {
	WritesTotal      *prometheus.CounterVec
	FlushesTotal     *prometheus.CounterVec
	CompactionsTotal *prometheus.CounterVec
	CompactionFanin  *prometheus.HistogramVec
	WriteAmpRatio    *prometheus.GaugeVec
	L1TablesTotal    *prometheus.GaugeVec
	TotalWrites      *prometheus.GaugeVec

	registry *prometheus.Registry
	mu       sync.RWMutex

	engine string
}

// NewRegistry creates a Registry scoped to one named engine instance
// (e.g. "lsm", "tlsm", "hybrid") so multiple engines running in the same
// process don't collide on label values.
func NewRegistry(engine string) *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{registry: reg, engine: engine}

	r.WritesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "writeamp_writes_total",
			Help: "Total number of points written to an engine.",
		},
		[]string{"engine"},
	)
	r.FlushesTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "writeamp_flushes_total",
			Help: "Total number of buffer flushes performed by an engine.",
		},
		[]string{"engine"},
	)
	r.CompactionsTotal = promauto.With(reg).NewCounterVec(
		prometheus.CounterOpts{
			Name: "writeamp_compactions_total",
			Help: "Total number of merge-sort compactions performed by an engine.",
		},
		[]string{"engine"},
	)
	r.CompactionFanin = promauto.With(reg).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "writeamp_compaction_fanin",
			Help:    "Number of tables folded into each compaction.",
			Buckets: prometheus.LinearBuckets(0, 1, 16),
		},
		[]string{"engine"},
	)
	r.WriteAmpRatio = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "writeamp_ratio",
			Help: "Current write-amplification proxy ratio for an engine.",
		},
		[]string{"engine"},
	)
	r.L1TablesTotal = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "writeamp_l1_tables",
			Help: "Current number of tables held on L1.",
		},
		[]string{"engine"},
	)
	r.TotalWrites = promauto.With(reg).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "writeamp_total_writes",
			Help: "Running count of physical writes performed by an engine.",
		},
		[]string{"engine"},
	)

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry, for
// wiring into an HTTP exposition handler.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// RecordWrite implements the engines' Observer interface.
func (r *Registry) RecordWrite(n int) {
	r.WritesTotal.WithLabelValues(r.engine).Add(float64(n))
}

// RecordFlush implements the engines' Observer interface.
func (r *Registry) RecordFlush() {
	r.FlushesTotal.WithLabelValues(r.engine).Inc()
}

// RecordCompaction implements the engines' Observer interface.
func (r *Registry) RecordCompaction(fanin int) {
	r.CompactionsTotal.WithLabelValues(r.engine).Inc()
	r.CompactionFanin.WithLabelValues(r.engine).Observe(float64(fanin))
}

// SetWriteAmpRatio records the engine's latest write-amplification proxy.
func (r *Registry) SetWriteAmpRatio(ratio float64) {
	r.WriteAmpRatio.WithLabelValues(r.engine).Set(ratio)
}

// SetL1TablesTotal records the current number of tables on L1.
func (r *Registry) SetL1TablesTotal(n int) {
	r.L1TablesTotal.WithLabelValues(r.engine).Set(float64(n))
}

// SetTotalWrites records the engine's running physical-write count.
func (r *Registry) SetTotalWrites(n int64) {
	r.TotalWrites.WithLabelValues(r.engine).Set(float64(n))
}
