package postings

import "sync"

// List is one term's full postings: a sequence of sealed, compressed
// blocks, a parallel landmark per sealed block (its first doc-id), and one
// open tail block still accepting appends.
type List struct {
	mu         sync.RWMutex
	compressed []*CompressedBlock
	landmarks  []uint32
	tail       *Block
}

// NewList returns an empty postings list with a fresh open tail block.
func NewList() *List {
	return &List{tail: New()}
}

// Append adds id to the tail, sealing and compressing it once it reaches
// BlockSize and recording its first id as a new landmark.
func (l *List) Append(id uint32) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.tail.Append(id); err != nil {
		return err
	}
	if l.tail.IsFull() {
		sealed, err := l.tail.Compress()
		if err != nil {
			return err
		}
		l.compressed = append(l.compressed, sealed)
		l.landmarks = append(l.landmarks, sealed.Initial)
		l.tail = New()
	}
	return nil
}

// Snapshot returns an immutable view of the list's compressed blocks,
// landmarks and tail, matching the shape the intersection algorithm and the
// storage layer both operate on.
type Snapshot struct {
	Compressed []*CompressedBlock
	Landmarks  []uint32
	Tail       []uint32
}

// Snapshot takes a read lock and copies out the list's current state.
func (l *List) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	compressed := make([]*CompressedBlock, len(l.compressed))
	copy(compressed, l.compressed)
	landmarks := make([]uint32, len(l.landmarks))
	copy(landmarks, l.landmarks)

	return Snapshot{Compressed: compressed, Landmarks: landmarks, Tail: l.tail.IDs()}
}

// FromSnapshot rebuilds a List from its compressed blocks, landmarks and
// tail ids, as reconstructed from a segment's inverted_map.bin during refresh.
func FromSnapshot(compressed []*CompressedBlock, landmarks []uint32, tailIDs []uint32) *List {
	return &List{compressed: compressed, landmarks: landmarks, tail: NewWithIDs(tailIDs)}
}

// UncompressedSize approximates the list's live memory footprint: 4 bytes
// per doc-id across every sealed block plus the tail.
func (l *List) UncompressedSize() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var total uint64
	for _, cb := range l.compressed {
		total += uint64(cb.NumIDs()) * 4
	}
	total += l.tail.UncompressedSize()
	return total
}

// NumCompressedBlocks returns how many sealed blocks this list holds,
// without decompressing them — the pivot-selection criterion in Intersect.
func (s Snapshot) NumCompressedBlocks() int {
	return len(s.Compressed)
}

// Materialize decompresses every sealed block and appends the tail,
// returning the list's full ascending doc-id sequence.
func (s Snapshot) Materialize() ([]uint32, error) {
	out := make([]uint32, 0)
	for _, cb := range s.Compressed {
		blk, err := cb.Decompress()
		if err != nil {
			return nil, err
		}
		out = append(out, blk.IDs()...)
	}
	out = append(out, s.Tail...)
	return out, nil
}
