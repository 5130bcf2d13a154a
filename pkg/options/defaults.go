package options

import "github.com/iamNilotpal/ember/pkg/errors"

const (
	// DefaultDataDir is the base directory ember stores its index data under
	// when no other directory is configured.
	DefaultDataDir = "/var/lib/ember"

	// MinSegmentSizeThreshold is the smallest segment size threshold accepted, in
	// bytes. It is 1, not some rounder figure, because small thresholds are a
	// legitimate way to force frequent roll-over for testing.
	MinSegmentSizeThreshold uint64 = 1

	// MaxSegmentSizeThreshold is the largest segment size threshold accepted, in bytes (4GB).
	MaxSegmentSizeThreshold uint64 = 4 * 1024 * 1024 * 1024

	// DefaultSegmentSizeThreshold is the default size, in bytes, past which a
	// segment rolls over to a new current segment (64MB).
	DefaultSegmentSizeThreshold uint64 = 64 * 1024 * 1024

	// DefaultSearchMemoryBudget is the default cap on resident segment bytes (512MB).
	DefaultSearchMemoryBudget uint64 = 512 * 1024 * 1024
)

// defaultOptions holds the baseline configuration for an index manager.
var defaultOptions = Options{
	DataDir:                   DefaultDataDir,
	SegmentSizeThresholdBytes: DefaultSegmentSizeThreshold,
	SearchMemoryBudgetBytes:   DefaultSearchMemoryBudget,
	Fsync:                     true,
}

// NewDefaultOptions returns a copy of the baseline configuration.
func NewDefaultOptions() Options {
	return defaultOptions
}

func newConfigError(field, issue string) error {
	return errors.NewConfigurationValidationError(field, issue)
}
