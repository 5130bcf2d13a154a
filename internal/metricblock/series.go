package metricblock

import "sync"

// Series is a time series's full set of metric points, stored as a
// sequence of sealed, compressed blocks followed by one open tail block —
// the same rolling-block shape a postings list uses for doc-ids.
type Series struct {
	mu         sync.RWMutex
	compressed []*CompressedBlock
	tail       *Block
}

// NewSeries returns an empty series with a fresh open tail block.
func NewSeries() *Series {
	return &Series{tail: New()}
}

// Append adds (time, value) to the tail block, sealing and compressing it
// once it reaches BlockSize and starting a fresh tail.
func (s *Series) Append(time uint64, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tail.Append(time, value); err != nil {
		return err
	}
	if s.tail.IsFull() {
		sealed, err := s.tail.Compress()
		if err != nil {
			return err
		}
		s.compressed = append(s.compressed, sealed)
		s.tail = New()
	}
	return nil
}

// Range decompresses every sealed block plus the tail and returns every
// point with start <= time <= end.
func (s *Series) Range(start, end uint64) ([]Point, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Point, 0)
	for _, cb := range s.compressed {
		blk, err := cb.Decompress()
		if err != nil {
			return nil, err
		}
		out = append(out, blk.Range(start, end)...)
	}
	out = append(out, s.tail.Range(start, end)...)
	return out, nil
}

// UncompressedSize approximates the series's live memory footprint: the
// decompressed size of every sealed block plus the tail's.
func (s *Series) UncompressedSize() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total uint64
	for _, cb := range s.compressed {
		// A sealed block always held exactly BlockSize points before compression.
		total += uint64(BlockSize) * 16
		_ = cb
	}
	total += s.tail.UncompressedSize()
	return total
}

// Snapshot returns the series's current sealed blocks and tail, for
// serialization by the segment's storage layer.
func (s *Series) Snapshot() (compressed []*CompressedBlock, tail *Block) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*CompressedBlock, len(s.compressed))
	copy(out, s.compressed)
	return out, s.tail
}

// FromSnapshot rebuilds a Series from its sealed blocks and tail, as
// reconstructed from a segment's metric_store.bin during refresh.
func FromSnapshot(compressed []*CompressedBlock, tail *Block) *Series {
	if tail == nil {
		tail = New()
	}
	return &Series{compressed: compressed, tail: tail}
}
