// Package indexmeta holds the index directory's top-level metadata.bin
// contents: the monotonic segment counter, which segment is current, and
// the roll-over threshold the directory was created with.
package indexmeta

import "sync/atomic"

// Metadata is the index directory's root catalog entry.
type Metadata struct {
	SegmentCount              uint32 `msgpack:"segmentCount"`
	CurrentSegmentNumber      uint32 `msgpack:"currentSegmentNumber"`
	SegmentSizeThresholdBytes uint64 `msgpack:"segmentSizeThresholdBytes"`
}

// New returns metadata for a brand-new index directory with segment 0 as
// the sole, current segment. SegmentCount seeds the allocation counter: the
// manager's first call to Counter.FetchIncrement must hand out 0, so the
// seed is 0, not 1 — the field only reaches 1 once segment 0 has actually
// been allocated.
func New(segmentSizeThresholdBytes uint64) Metadata {
	return Metadata{
		SegmentCount:              0,
		CurrentSegmentNumber:      0,
		SegmentSizeThresholdBytes: segmentSizeThresholdBytes,
	}
}

// Counter wraps the segment_count field in an atomic so concurrent callers
// of fetch_increment never observe or assign the same segment number twice.
type Counter struct {
	value atomic.Uint32
}

// NewCounter seeds a Counter from a metadata.bin value loaded off disk.
func NewCounter(initial uint32) *Counter {
	c := &Counter{}
	c.value.Store(initial)
	return c
}

// FetchIncrement allocates the next segment number and returns it, leaving
// the counter's Load() value equal to the new segment_count.
func (c *Counter) FetchIncrement() uint32 {
	return c.value.Add(1) - 1
}

// Load returns the current segment_count without mutating it.
func (c *Counter) Load() uint32 {
	return c.value.Load()
}
