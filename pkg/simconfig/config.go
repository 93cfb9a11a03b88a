package simconfig

import (
	"github.com/dd0wney/tlsm-writeamp/pkg/hybrid"
	"github.com/dd0wney/tlsm-writeamp/pkg/lsmcore"
	"github.com/dd0wney/tlsm-writeamp/pkg/simlog"
	"github.com/dd0wney/tlsm-writeamp/pkg/tlsm"
)

// LSMConfig is the YAML-loadable configuration for a classic LSM engine.
type LSMConfig struct {
	BufferSize       int `yaml:"buffer_size" validate:"required,gt=0"`
	SSTableSize      int `yaml:"sstable_size" validate:"gte=0"`
	StatisticsWindow int `yaml:"statistics_window" validate:"gte=0"`
}

// ToEngineConfig converts the loaded options to lsmcore.Config.
func (c LSMConfig) ToEngineConfig() lsmcore.Config {
	return lsmcore.Config{
		BufferSize:       c.BufferSize,
		SSTableSize:      c.SSTableSize,
		StatisticsWindow: c.StatisticsWindow,
	}
}

// TLSMConfig is the YAML-loadable configuration for a tLSM engine.
type TLSMConfig struct {
	SeqBufferSize    int `yaml:"seq_buffer_size" validate:"required,gt=0"`
	NonSeqBufferSize int `yaml:"nonseq_buffer_size" validate:"required,gt=0"`
	SSTableSize      int `yaml:"sstable_size" validate:"gte=0"`
	StatisticsWindow int `yaml:"statistics_window" validate:"gte=0"`
}

// ToEngineConfig converts the loaded options to tlsm.Config.
func (c TLSMConfig) ToEngineConfig() tlsm.Config {
	return tlsm.Config{
		SequentialBufferSize:    c.SeqBufferSize,
		NonSequentialBufferSize: c.NonSeqBufferSize,
		SSTableSize:             c.SSTableSize,
		StatisticsWindow:        c.StatisticsWindow,
	}
}

// HybridConfig is the YAML-loadable configuration for the adaptive Hybrid
// ingester.
type HybridConfig struct {
	LSMBufferSize int     `yaml:"lsm_buffer_size" validate:"required,gt=0"`
	GenTimeInterval float64 `yaml:"gen_time_interval" validate:"required,gt=0"`
	SSTableSize   int     `yaml:"sstable_size" validate:"gte=0"`
	// DelayBufferSize is carried through from the source project's
	// configuration surface. It is never consulted: the collected-delay
	// pool there is an unbounded slice, not a ring buffer, so nothing
	// ever reads this capacity back. It is loaded and validated but not
	// passed on by ToEngineConfig.
	DelayBufferSize         int  `yaml:"delay_buffer_size" validate:"gte=0"`
	StatisticsNumber        int  `yaml:"statistics_number" validate:"required,gt=0"`
	MinSequentialBufferSize int  `yaml:"min_sequential_buffer_size" validate:"required,gt=0"`
	PrintAllN1              bool `yaml:"print_all_n1"`
}

// ToEngineConfig converts the loaded options to hybrid.Config. logger is
// attached so PrintAllN1, if set, has somewhere to write its trace; it may
// be nil.
func (c HybridConfig) ToEngineConfig(logger simlog.Logger) hybrid.Config {
	return hybrid.Config{
		LSMBufferSize:           c.LSMBufferSize,
		GenerateTimeInterval:    c.GenTimeInterval,
		SSTableSize:             c.SSTableSize,
		StatisticsNumber:        c.StatisticsNumber,
		MinSequentialBufferSize: c.MinSequentialBufferSize,
		PrintAllN1:              c.PrintAllN1,
		Logger:                  logger,
	}
}
