// Package retention decides which segments have aged out of a retention
// window. It consumes a segment summaries catalog and returns the segment
// numbers old enough to delete, leaving the actual deletion to
// index.Manager.DeleteSegment.
package retention

import "github.com/iamNilotpal/ember/internal/seginfo"

// Expired returns every segment number in summaries whose EndTime is older
// than retention measured back from now (both in the same epoch the index
// treats times as ordinals in, typically milliseconds since Unix epoch —
// retention is converted to that unit by the caller before calling this
// function if needed). A segment with EndTime == 0 (no data
// ever committed) is never considered expired.
func Expired(summaries []seginfo.Summary, now, retention uint64) []uint32 {
	if retention == 0 {
		return nil
	}

	cutoff := uint64(0)
	if now > retention {
		cutoff = now - retention
	}

	expired := make([]uint32, 0)
	for _, s := range summaries {
		if s.EndTime == 0 {
			continue
		}
		if s.EndTime < cutoff {
			expired = append(expired, s.SegmentNumber)
		}
	}
	return expired
}
