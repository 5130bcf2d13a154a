package postings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listOf(t *testing.T, ids ...uint32) Snapshot {
	t.Helper()
	l := NewList()
	for _, id := range ids {
		require.NoError(t, l.Append(id))
	}
	return l.Snapshot()
}

func TestIntersectEmptyInput(t *testing.T) {
	got, err := Intersect(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIntersectSingleList(t *testing.T) {
	snap := listOf(t, 1, 2, 3)
	got, err := Intersect([]Snapshot{snap})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 3}, got)
}

func TestIntersectAcrossBlockBoundaries(t *testing.T) {
	// Build a list spanning several full blocks plus a tail.
	a := make([]uint32, 0, BlockSize*2+10)
	for i := uint32(0); i < uint32(BlockSize*2+10); i++ {
		a = append(a, i)
	}
	evens := make([]uint32, 0)
	for _, v := range a {
		if v%2 == 0 {
			evens = append(evens, v)
		}
	}

	snapA := listOf(t, a...)
	snapB := listOf(t, evens...)

	got, err := Intersect([]Snapshot{snapA, snapB})
	require.NoError(t, err)
	assert.Equal(t, evens, got)
}

func TestIntersectEmptyListYieldsEmpty(t *testing.T) {
	snapA := listOf(t, 1, 2, 3)
	snapB := NewList().Snapshot() // zero blocks, empty tail

	got, err := Intersect([]Snapshot{snapA, snapB})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIntersectNoOverlapYieldsEmpty(t *testing.T) {
	snapA := listOf(t, 1, 3, 5)
	snapB := listOf(t, 2, 4, 6)

	got, err := Intersect([]Snapshot{snapA, snapB})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIntersectMatchesFallingInTailBlock(t *testing.T) {
	// Both lists carry one sealed compressed block plus a short tail; the
	// intersection must find matches that live in the tail, not just in the
	// sealed block that precedes it.
	a := make([]uint32, 0, BlockSize+10)
	for i := uint32(0); i < uint32(BlockSize+10); i++ {
		a = append(a, i)
	}
	evens := make([]uint32, 0)
	for _, v := range a {
		if v%2 == 0 {
			evens = append(evens, v)
		}
	}

	snapA := listOf(t, a...)
	snapB := listOf(t, evens...)

	got, err := Intersect([]Snapshot{snapA, snapB})
	require.NoError(t, err)
	assert.Equal(t, evens, got)
}

func TestIntersectPivotTieBreakIsInputOrder(t *testing.T) {
	// Both lists have zero compressed blocks (short tails); pivot should
	// resolve to the first list by input order and produce the correct
	// intersection regardless.
	snapA := listOf(t, 10, 20, 30)
	snapB := listOf(t, 20, 30, 40)

	got, err := Intersect([]Snapshot{snapA, snapB})
	require.NoError(t, err)
	assert.Equal(t, []uint32{20, 30}, got)
}
