package metricblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockAppendOrdering(t *testing.T) {
	b := New()
	require.NoError(t, b.Append(10, 1))
	require.NoError(t, b.Append(30, 3))
	require.NoError(t, b.Append(20, 2)) // out of order, binary-search insert

	points := b.Points()
	require.Len(t, points, 3)
	assert.Equal(t, []uint64{10, 20, 30}, []uint64{points[0].Time, points[1].Time, points[2].Time})
}

func TestBlockAppendCapacityFull(t *testing.T) {
	b := New()
	for i := 0; i < BlockSize; i++ {
		require.NoError(t, b.Append(uint64(i), float64(i)))
	}
	err := b.Append(uint64(BlockSize), 0)
	require.Error(t, err)
	assert.True(t, b.IsFull())
}

func TestBlockRangeInclusive(t *testing.T) {
	b := New()
	for i := uint64(0); i < 10; i++ {
		require.NoError(t, b.Append(i, float64(i)))
	}
	got := b.Range(3, 7)
	require.Len(t, got, 5)
	assert.Equal(t, uint64(3), got[0].Time)
	assert.Equal(t, uint64(7), got[len(got)-1].Time)
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	b := New()
	values := []float64{1.5, 1.5, 1.50001, -2.25, 0, 100.125, 100.125, 99.9}
	for i, v := range values {
		require.NoError(t, b.Append(uint64(i*1000), v))
	}

	compressed, err := b.Compress()
	require.NoError(t, err)

	decoded, err := compressed.Decompress()
	require.NoError(t, err)

	got := decoded.Points()
	require.Len(t, got, len(values))
	for i, p := range got {
		assert.Equal(t, uint64(i*1000), p.Time)
		assert.Equal(t, values[i], p.Value)
	}
}

func TestCompressDecompressFullMeaningfulWidth(t *testing.T) {
	// 1.0 XOR -1.0000000000000002 has leading==0 and trailing==0, so the
	// XOR's meaningful-bits width is the full 64 bits — the case the 6-bit
	// width field can't represent directly and must store biased by one.
	b := New()
	require.NoError(t, b.Append(0, 1.0))
	require.NoError(t, b.Append(1, -1.0000000000000002))
	require.NoError(t, b.Append(2, 1.0))

	compressed, err := b.Compress()
	require.NoError(t, err)

	decoded, err := compressed.Decompress()
	require.NoError(t, err)

	got := decoded.Points()
	require.Len(t, got, 3)
	assert.Equal(t, 1.0, got[0].Value)
	assert.Equal(t, -1.0000000000000002, got[1].Value)
	assert.Equal(t, 1.0, got[2].Value)
}

func TestCompressEmptyBlockFails(t *testing.T) {
	b := New()
	_, err := b.Compress()
	require.Error(t, err)
}

func TestCompressRegularCadenceIsSmall(t *testing.T) {
	b := New()
	for i := 0; i < BlockSize; i++ {
		require.NoError(t, b.Append(uint64(i*1000), 42.0))
	}
	compressed, err := b.Compress()
	require.NoError(t, err)

	// Regular cadence, identical value: should compress far below the
	// 16 bytes/point uncompressed footprint.
	assert.Less(t, len(compressed.data), BlockSize*16/4)
}
