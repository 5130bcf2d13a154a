package postings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockAppendStrictlyIncreasing(t *testing.T) {
	b := New()
	require.NoError(t, b.Append(5))
	require.NoError(t, b.Append(10))
	require.NoError(t, b.Append(7)) // out of order

	ids := b.IDs()
	assert.Equal(t, []uint32{5, 7, 10}, ids)
}

func TestBlockAppendDuplicateIsNoop(t *testing.T) {
	b := New()
	require.NoError(t, b.Append(5))
	require.NoError(t, b.Append(5))
	assert.Equal(t, []uint32{5}, b.IDs())
}

func TestBlockCapacityFull(t *testing.T) {
	b := New()
	for i := 0; i < BlockSize; i++ {
		require.NoError(t, b.Append(uint32(i)))
	}
	err := b.Append(uint32(BlockSize))
	require.Error(t, err)
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	b := New()
	ids := make([]uint32, 0, BlockSize)
	for i := 0; i < BlockSize; i++ {
		id := uint32(i * 3)
		ids = append(ids, id)
		require.NoError(t, b.Append(id))
	}

	compressed, err := b.Compress()
	require.NoError(t, err)

	decoded, err := compressed.Decompress()
	require.NoError(t, err)
	assert.Equal(t, ids, decoded.IDs())
}

func TestCompressEmptyFails(t *testing.T) {
	b := New()
	_, err := b.Compress()
	require.Error(t, err)
}

func TestCompressedBlockSurvivesSerializationShape(t *testing.T) {
	b := New()
	for i := 0; i < BlockSize; i++ {
		require.NoError(t, b.Append(uint32(i)))
	}
	compressed, err := b.Compress()
	require.NoError(t, err)

	// Simulate a msgpack round trip: only exported fields survive.
	clone := &CompressedBlock{Initial: compressed.Initial, NumBits: compressed.NumBits, Payload: compressed.Payload, Count: compressed.Count}

	decoded, err := clone.Decompress()
	require.NoError(t, err)
	assert.Equal(t, BlockSize, decoded.Len())
}
