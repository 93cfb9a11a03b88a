package resultsink

import (
	"context"

	"github.com/dd0wney/tlsm-writeamp/pkg/runident"
)

// Report is the terminal roll-up of one simulation run, exported once the
// driving loop finishes.
type Report struct {
	Identity runident.Identity `json:"identity"`

	TotalPoints int64 `json:"total_points"`
	TotalWrites int64 `json:"total_writes"`

	// AverageWriteAmplification is the LSM engine's trailing-window fan-in
	// average, the Hybrid engine's mean fan-in over its whole history, or
	// the tLSM engine's averaged per-cycle write-amp rate, whichever the
	// exporting engine kind produced.
	AverageWriteAmplification float64 `json:"average_write_amplification"`

	// HistoryMergeFanin is the full per-flush fan-in series. It can be
	// large for long runs, so sinks that persist it are expected to
	// compress it rather than grow their row/object size linearly with
	// run length.
	HistoryMergeFanin []int64 `json:"history_merge_fanin,omitempty"`
}

// ResultSink persists a finished run's Report.
type ResultSink interface {
	Export(ctx context.Context, report Report) error
}
