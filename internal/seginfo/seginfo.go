// Package seginfo holds the compact per-segment catalog entry the index
// manager keeps in its summaries vector. A Summary is what's written to
// all_segments.bin; it never holds the segment's postings or log store.
package seginfo

import "sort"

// Summary is the authoritative, on-disk catalog entry for one segment.
type Summary struct {
	SegmentNumber    uint32 `msgpack:"segmentNumber"`
	SegmentID        string `msgpack:"segmentId"`
	StartTime        uint64 `msgpack:"startTime"`
	EndTime          uint64 `msgpack:"endTime"`
	UncompressedSize uint64 `msgpack:"uncompressedSize"`
}

// SortReverseChronological orders summaries descending by EndTime, the
// invariant the on-disk summaries file must hold after every commit.
func SortReverseChronological(summaries []Summary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].EndTime > summaries[j].EndTime
	})
}

// Overlapping returns the segment numbers whose [StartTime, EndTime] range
// intersects [rangeStart, rangeEnd], in the reverse-chronological order the
// summaries slice is already sorted in.
func Overlapping(summaries []Summary, rangeStart, rangeEnd uint64) []uint32 {
	numbers := make([]uint32, 0, len(summaries))
	for _, s := range summaries {
		if s.StartTime <= rangeEnd && s.EndTime >= rangeStart {
			numbers = append(numbers, s.SegmentNumber)
		}
	}
	return numbers
}
