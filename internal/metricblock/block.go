// Package metricblock implements the fixed-capacity, time-sorted buffer of
// (time, value) metric points and its compressed byte-vector counterpart.
// The codec is a delta-of-delta timestamp encoder paired with a Gorilla-style
// XOR value encoder.
package metricblock

import (
	"sort"
	"sync"

	"github.com/iamNilotpal/ember/pkg/errors"
)

// BlockSize is the fixed capacity of a time-series block, mirroring the
// original's BLOCK_SIZE_FOR_TIME_SERIES constant.
const BlockSize = 128

// Point is one (time, value) sample.
type Point struct {
	Time  uint64
	Value float64
}

// Block is a fixed-capacity, ascending-by-time buffer of metric points. It
// is safe for concurrent use: appends and reads are guarded by an internal
// RWMutex, mirroring the original's RwLock<Vec<MetricPoint>>.
type Block struct {
	mu     sync.RWMutex
	points []Point
}

// New returns an empty block pre-sized to BlockSize.
func New() *Block {
	return &Block{points: make([]Point, 0, BlockSize)}
}

// NewWithPoints wraps an existing, already time-sorted slice of points
// without copying, mirroring new_with_metric_points.
func NewWithPoints(points []Point) *Block {
	return &Block{points: points}
}

// Len returns the number of points currently in the block.
func (b *Block) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.points)
}

// IsFull reports whether the block has reached BlockSize.
func (b *Block) IsFull() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.points) >= BlockSize
}

// Append inserts (time, value) preserving ascending time order. The fast
// path is a push-back when time is at least the last point's time;
// otherwise a binary-search insert handles out-of-order arrivals.
func (b *Block) Append(time uint64, value float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.points) >= BlockSize {
		return errors.NewCapacityFullError(BlockSize)
	}

	if len(b.points) == 0 || time >= b.points[len(b.points)-1].Time {
		b.points = append(b.points, Point{Time: time, Value: value})
		return nil
	}

	idx := sort.Search(len(b.points), func(i int) bool { return b.points[i].Time >= time })
	b.points = append(b.points, Point{})
	copy(b.points[idx+1:], b.points[idx:])
	b.points[idx] = Point{Time: time, Value: value}
	return nil
}

// Range returns every point with start <= time <= end, both bounds inclusive.
func (b *Block) Range(start, end uint64) []Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Point, 0)
	for _, p := range b.points {
		if p.Time >= start && p.Time <= end {
			out = append(out, p)
		}
	}
	return out
}

// Points returns a copy of every point currently in the block, in time order.
func (b *Block) Points() []Point {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Point, len(b.points))
	copy(out, b.points)
	return out
}

// UncompressedSize approximates the block's live memory footprint: 16 bytes
// (a uint64 time plus a float64 value) per point.
func (b *Block) UncompressedSize() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return uint64(len(b.points)) * 16
}
