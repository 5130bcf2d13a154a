package metricblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesRollsBlocksAndRanges(t *testing.T) {
	s := NewSeries()
	total := BlockSize*2 + 10
	for i := 0; i < total; i++ {
		require.NoError(t, s.Append(uint64(i), float64(i)))
	}

	got, err := s.Range(0, uint64(total-1))
	require.NoError(t, err)
	require.Len(t, got, total)
	for i, p := range got {
		assert.Equal(t, uint64(i), p.Time)
	}
}

func TestSeriesSnapshotRoundTrip(t *testing.T) {
	s := NewSeries()
	total := BlockSize + 5
	for i := 0; i < total; i++ {
		require.NoError(t, s.Append(uint64(i), float64(i)*1.5))
	}

	compressed, tail := s.Snapshot()
	require.Len(t, compressed, 1)

	restored := FromSnapshot(compressed, tail)
	got, err := restored.Range(0, uint64(total-1))
	require.NoError(t, err)
	require.Len(t, got, total)
	for i, p := range got {
		assert.Equal(t, float64(i)*1.5, p.Value)
	}
}
