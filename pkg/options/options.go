// Package options provides data structures and functions for configuring an
// index manager. It defines the parameters that control how segments are
// sized and rolled over, how much memory the search path is allowed to hold
// resident, and where on disk the index directory lives.
package options

import (
	"strings"
)

// Options defines the configuration parameters for an index manager.
type Options struct {
	// DataDir is the base path under which every segment directory lives.
	//
	// Default: "/var/lib/ember"
	DataDir string `json:"dataDir"`

	// SegmentSizeThresholdBytes is the uncompressed size, summed across a
	// segment's log store, postings lists and metric store, past which the index manager rolls
	// over to a new current segment on the next commit.
	//
	//  - Default: 64MB
	//  - Minimum: 1 byte
	//  - Maximum: 4GB
	SegmentSizeThresholdBytes uint64 `json:"segmentSizeThresholdBytes"`

	// SearchMemoryBudgetBytes bounds the total uncompressed size of segments
	// kept resident in memory. When a commit or refresh would exceed the
	// budget, the oldest resident segments (by end_time) are evicted first;
	// the current segment is never evicted.
	//
	// Default: 512MB
	SearchMemoryBudgetBytes uint64 `json:"searchMemoryBudgetBytes"`

	// Fsync, when true, forces every segment file write through fsync
	// before a commit is considered durable. Disabling it trades
	// crash-durability for write throughput.
	//
	// Default: true
	Fsync bool `json:"fsync"`
}

// OptionFunc is a function type that modifies an index manager's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions applies a predefined set of default configuration values.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		defaults := NewDefaultOptions()
		o.DataDir = defaults.DataDir
		o.SegmentSizeThresholdBytes = defaults.SegmentSizeThresholdBytes
		o.SearchMemoryBudgetBytes = defaults.SearchMemoryBudgetBytes
		o.Fsync = defaults.Fsync
	}
}

// WithDataDir sets the base directory the index manager stores segments under.
func WithDataDir(directory string) OptionFunc {
	return func(o *Options) {
		directory = strings.TrimSpace(directory)
		if directory != "" {
			o.DataDir = directory
		}
	}
}

// WithSegmentSizeThreshold sets the size, in bytes, past which a segment rolls over.
func WithSegmentSizeThreshold(size uint64) OptionFunc {
	return func(o *Options) {
		if size >= MinSegmentSizeThreshold && size <= MaxSegmentSizeThreshold {
			o.SegmentSizeThresholdBytes = size
		}
	}
}

// WithSearchMemoryBudget sets the maximum total uncompressed size of
// resident segments kept in memory for search.
func WithSearchMemoryBudget(budget uint64) OptionFunc {
	return func(o *Options) {
		if budget > 0 {
			o.SearchMemoryBudgetBytes = budget
		}
	}
}

// WithFsync toggles fsync-on-commit.
func WithFsync(enabled bool) OptionFunc {
	return func(o *Options) {
		o.Fsync = enabled
	}
}

// Validate checks that the combination of options is internally consistent,
// returning a *errors.ValidationError describing the first problem found.
func (o *Options) Validate() error {
	if o.DataDir == "" {
		return newConfigError("dataDir", "data directory must not be empty")
	}
	if o.SegmentSizeThresholdBytes < MinSegmentSizeThreshold {
		return newConfigError("segmentSizeThresholdBytes", "segment size threshold must be at least 1 byte")
	}
	if o.SegmentSizeThresholdBytes > MaxSegmentSizeThreshold {
		return newConfigError("segmentSizeThresholdBytes", "segment size threshold exceeds the maximum of 4GB")
	}
	if o.SearchMemoryBudgetBytes < o.SegmentSizeThresholdBytes {
		return newConfigError("searchMemoryBudgetBytes", "search memory budget is too small to hold one segment")
	}
	return nil
}
