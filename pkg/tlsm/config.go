package tlsm

import "github.com/dd0wney/tlsm-writeamp/pkg/lsmcore"

// Config configures the tLSM engine.
type Config struct {
	// SequentialBufferSize is the capacity of the sequential buffer (n1).
	SequentialBufferSize int
	// NonSequentialBufferSize is the capacity of the non-sequential
	// buffer (n2).
	NonSequentialBufferSize int
	// SSTableSize is the output capacity used by merge-sort compaction.
	// Zero means "use SequentialBufferSize + NonSequentialBufferSize".
	SSTableSize int
	// StatisticsWindow bounds the trailing window used when averaging the
	// per-cycle write amplification rate. Zero means unbounded.
	StatisticsWindow int
}

// Validate checks both buffer capacities are positive and fills in
// SSTableSize's default.
func (c *Config) Validate() error {
	if c.SequentialBufferSize <= 0 {
		return &lsmcore.ConfigError{Field: "SequentialBufferSize", Cause: lsmcore.ErrNegativeCapacity}
	}
	if c.NonSequentialBufferSize <= 0 {
		return &lsmcore.ConfigError{Field: "NonSequentialBufferSize", Cause: lsmcore.ErrNegativeCapacity}
	}
	if c.SSTableSize == 0 {
		c.SSTableSize = c.SequentialBufferSize + c.NonSequentialBufferSize
	}
	if c.SSTableSize <= 0 {
		return &lsmcore.ConfigError{Field: "SSTableSize", Cause: lsmcore.ErrNegativeCapacity}
	}
	return nil
}
