package postings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSealsBlocksAndRecordsLandmarks(t *testing.T) {
	l := NewList()
	total := BlockSize*3 + 7
	for i := 0; i < total; i++ {
		require.NoError(t, l.Append(uint32(i)))
	}

	snap := l.Snapshot()
	require.Len(t, snap.Compressed, 3)
	require.Len(t, snap.Landmarks, 3)
	assert.Len(t, snap.Tail, 7)

	for i, landmark := range snap.Landmarks {
		assert.Equal(t, uint32(i*BlockSize), landmark)
	}

	full, err := snap.Materialize()
	require.NoError(t, err)
	require.Len(t, full, total)
	for i, id := range full {
		assert.Equal(t, uint32(i), id)
	}
}

func TestListFromSnapshotRoundTrip(t *testing.T) {
	l := NewList()
	total := BlockSize + 3
	for i := 0; i < total; i++ {
		require.NoError(t, l.Append(uint32(i)))
	}
	snap := l.Snapshot()

	restored := FromSnapshot(snap.Compressed, snap.Landmarks, snap.Tail)
	restoredSnap := restored.Snapshot()

	full, err := restoredSnap.Materialize()
	require.NoError(t, err)
	require.Len(t, full, total)
}
