package hybrid

import (
	"github.com/dd0wney/tlsm-writeamp/pkg/lsmcore"
	"github.com/dd0wney/tlsm-writeamp/pkg/simlog"
)

// Config configures the Engine.
type Config struct {
	// LSMBufferSize is the capacity of the warm-up LSM write buffer (C0),
	// and after the switch, the combined size of the sequential and
	// non-sequential buffers (n1 + n2).
	LSMBufferSize int
	// GenerateTimeInterval is the nominal spacing between sequentially
	// generated points in the workload, used to sample the empirical
	// delay CDF when estimating a candidate sequential-buffer size.
	GenerateTimeInterval float64
	// SSTableSize is the output capacity used by merge-sort compaction.
	// Zero means "use LSMBufferSize".
	SSTableSize int
	// StatisticsNumber (N) is both the number of collected arrival
	// delays required before considering a switch and the capacity of
	// the trailing fan-in window used to estimate average fan-in.
	StatisticsNumber int
	// MinSequentialBufferSize is the smallest candidate sequential
	// buffer size considered by the estimator.
	MinSequentialBufferSize int
	// PrintAllN1, when true, logs every candidate sequential-buffer size
	// and its estimated write-amplification rate at switch time instead
	// of only the chosen one.
	PrintAllN1 bool
	// Logger receives the PrintAllN1 trace. A nil Logger silently
	// disables the trace regardless of PrintAllN1.
	Logger simlog.Logger
}

// Validate checks the configuration and fills in SSTableSize's default.
func (c *Config) Validate() error {
	if c.LSMBufferSize <= 0 {
		return &lsmcore.ConfigError{Field: "LSMBufferSize", Cause: lsmcore.ErrNegativeCapacity}
	}
	if c.GenerateTimeInterval <= 0 {
		return &lsmcore.ConfigError{Field: "GenerateTimeInterval", Cause: lsmcore.ErrNegativeCapacity}
	}
	if c.StatisticsNumber <= 0 {
		return &lsmcore.ConfigError{Field: "StatisticsNumber", Cause: lsmcore.ErrNegativeCapacity}
	}
	if c.MinSequentialBufferSize <= 0 || c.MinSequentialBufferSize >= c.LSMBufferSize {
		return &lsmcore.ConfigError{Field: "MinSequentialBufferSize", Cause: lsmcore.ErrNegativeCapacity}
	}
	if c.SSTableSize == 0 {
		c.SSTableSize = c.LSMBufferSize
	}
	if c.SSTableSize <= 0 {
		return &lsmcore.ConfigError{Field: "SSTableSize", Cause: lsmcore.ErrNegativeCapacity}
	}
	return nil
}
