package postings

import "sort"

// Intersect computes the sorted doc-id intersection of every list in lists,
// following the pivot-and-skip algorithm: the list with the fewest
// compressed blocks is fully materialized as the starting accumulator, then
// every other list is intersected against it using its landmarks to decide
// which block to decompress, so blocks no accumulator id falls into are
// never touched. Ties in block count are broken by input order. An empty
// input, or any list with zero blocks and an empty tail, yields an empty
// result.
func Intersect(lists []Snapshot) ([]uint32, error) {
	if len(lists) == 0 {
		return nil, nil
	}

	pivot := 0
	for i := 1; i < len(lists); i++ {
		if lists[i].NumCompressedBlocks() < lists[pivot].NumCompressedBlocks() {
			pivot = i
		}
	}

	accumulator, err := lists[pivot].Materialize()
	if err != nil {
		return nil, err
	}

	for i, snap := range lists {
		if i == pivot {
			continue
		}
		if len(accumulator) == 0 {
			return accumulator, nil
		}
		accumulator, err = intersectOne(accumulator, snap)
		if err != nil {
			return nil, err
		}
	}

	return accumulator, nil
}

// intersectOne computes acc ∩ snap, loading at most one block of snap per
// distinct landmark range the accumulator's values fall into.
func intersectOne(acc []uint32, snap Snapshot) ([]uint32, error) {
	if len(acc) == 0 {
		return acc, nil
	}
	numBlocks := len(snap.Landmarks)
	if numBlocks == 0 && len(snap.Tail) == 0 {
		return nil, nil
	}

	result := make([]uint32, 0, len(acc))

	// k ranges over [0, numBlocks]: 0..numBlocks-1 address sealed compressed
	// blocks, and numBlocks itself addresses the open tail. Landmarks alone
	// are enough to rule out a sealed block without decompressing it; only
	// the last sealed block needs decompressing to tell whether a value
	// belongs to it or has spilled into the tail, since the tail carries no
	// landmark of its own.
	k := 0
	loadedBlock := -1
	var blockIDs []uint32

	loadBlock := func(idx int) ([]uint32, error) {
		if idx >= numBlocks {
			return snap.Tail, nil
		}
		blk, err := snap.Compressed[idx].Decompress()
		if err != nil {
			return nil, err
		}
		return blk.IDs(), nil
	}

	for a := 0; a < len(acc); a++ {
		val := acc[a]

		for k < numBlocks-1 && val >= snap.Landmarks[k+1] {
			k++
		}

		if loadedBlock != k {
			ids, err := loadBlock(k)
			if err != nil {
				return nil, err
			}
			blockIDs = ids
			loadedBlock = k
		}

		if k == numBlocks-1 && len(blockIDs) > 0 && val > blockIDs[len(blockIDs)-1] {
			k = numBlocks
			if loadedBlock != k {
				ids, err := loadBlock(k)
				if err != nil {
					return nil, err
				}
				blockIDs = ids
				loadedBlock = k
			}
		}

		idx := sort.Search(len(blockIDs), func(i int) bool { return blockIDs[i] >= val })
		if idx < len(blockIDs) && blockIDs[idx] == val {
			result = append(result, val)
		}
	}

	return result, nil
}
