package index

import (
	"path/filepath"

	"github.com/iamNilotpal/ember/internal/indexmeta"
	"github.com/iamNilotpal/ember/internal/seginfo"
	"github.com/iamNilotpal/ember/internal/segment"
	"github.com/iamNilotpal/ember/internal/storage"
	"github.com/iamNilotpal/ember/pkg/errors"
)

// Commit serializes the current segment to disk, rolling over to a fresh
// current segment when its uncompressed size exceeds the configured
// threshold, then writes the summaries catalog and index metadata. It
// implements the double-commit dance: when a roll-over happens, the
// segment that just stopped being current is re-serialized a second time
// to capture any appends that raced the pointer swap.
//
// A single dirLock serializes Commit with itself and with Refresh for this
// index directory. Appends are unaffected: they only touch resident
// segments and the fine-grained locks inside their postings lists and
// metric series.
func (m *Manager) Commit(fsync bool) error {
	if err := m.dirLock.Lock(); err != nil {
		return errors.NewSegmentError(err, errors.ErrorCodeIO, "failed to acquire index directory lock")
	}
	defer m.dirLock.Unlock()

	m.summariesMu.Lock()
	defer m.summariesMu.Unlock()

	m.currentMu.RLock()
	n0 := m.currentNumber
	m.currentMu.RUnlock()

	seg0 := m.residentSegment(n0)

	uncompressed0, _, err := seg0.Commit(m.backend, m.dir, n0, fsync)
	if err != nil {
		m.log.Errorw("failed to commit current segment", "segment", n0, "error", err)
		return err
	}
	m.setSummaryLocked(n0, seg0.StartTime(), seg0.EndTime(), uncompressed0)

	if uncompressed0 > m.segmentSizeThreshold {
		if err := m.rollOverLocked(n0, fsync); err != nil {
			return err
		}
	}

	seginfo.SortReverseChronological(m.summaries)

	m.currentMu.RLock()
	currentNumber := m.currentNumber
	m.currentMu.RUnlock()

	meta := indexmeta.Metadata{
		SegmentCount:              m.counter.Load(),
		CurrentSegmentNumber:      currentNumber,
		SegmentSizeThresholdBytes: m.segmentSizeThreshold,
	}

	if _, err := storage.Write(m.backend, m.summaries, filepath.Join(m.dir, storage.AllSegmentsFile), fsync); err != nil {
		m.log.Errorw("failed to write summaries catalog", "error", err)
		return err
	}
	if _, err := storage.Write(m.backend, meta, filepath.Join(m.dir, storage.MetadataFile), fsync); err != nil {
		m.log.Errorw("failed to write index metadata", "error", err)
		return err
	}

	m.log.Infow("committed index", "currentSegment", currentNumber, "segmentCount", len(m.summaries))
	return nil
}

// rollOverLocked seals the current segment n0, allocates and persists a
// fresh current segment, then re-serializes both n1 and n0 to capture
// appends that arrived between the first serialization of n0 and the
// pointer swap. Finally it runs memory eviction. The caller holds
// summariesMu for writing.
func (m *Manager) rollOverLocked(n0 uint32, fsync bool) error {
	n1 := m.counter.FetchIncrement()
	seg1 := segment.New()

	if _, _, err := seg1.Commit(m.backend, m.dir, n1, fsync); err != nil {
		m.log.Errorw("failed to persist new segment during roll-over", "segment", n1, "error", err)
		return err
	}

	m.summaries = append([]seginfo.Summary{{SegmentNumber: n1, SegmentID: seg1.ID()}}, m.summaries...)
	m.insertResident(n1, seg1)

	m.currentMu.Lock()
	m.currentNumber = n1
	m.currentMu.Unlock()

	if _, _, err := seg1.Commit(m.backend, m.dir, n1, fsync); err != nil {
		m.log.Errorw("failed to re-commit new segment during roll-over", "segment", n1, "error", err)
		return err
	}

	seg0 := m.residentSegment(n0)
	uncompressed0, _, err := seg0.Commit(m.backend, m.dir, n0, fsync)
	if err != nil {
		m.log.Errorw("failed to re-commit sealed segment during roll-over", "segment", n0, "error", err)
		return err
	}
	m.setSummaryLocked(n0, seg0.StartTime(), seg0.EndTime(), uncompressed0)

	m.log.Infow("rolled over segment", "sealed", n0, "current", n1)
	m.evict()
	return nil
}

// residentSegment returns the segment numbered n, panicking if it isn't
// resident. It is used only for segments the caller guarantees are
// resident: the current segment and the segment just sealed during
// roll-over, both of which are index-manager invariants.
func (m *Manager) residentSegment(n uint32) *segment.Segment {
	m.segmentsMu.RLock()
	defer m.segmentsMu.RUnlock()
	seg, ok := m.segments[n]
	if !ok {
		panic("index: expected segment not resident in memory")
	}
	return seg
}

// setSummaryLocked updates the start/end time and uncompressed size of the
// summary for segment n; if no summary for n exists it changes nothing. The
// caller holds summariesMu for writing.
func (m *Manager) setSummaryLocked(n uint32, startTime, endTime, uncompressedSize uint64) {
	for i := range m.summaries {
		if m.summaries[i].SegmentNumber == n {
			m.summaries[i].StartTime = startTime
			m.summaries[i].EndTime = endTime
			m.summaries[i].UncompressedSize = uncompressedSize
			return
		}
	}
}

// Refresh reloads the index's metadata, summaries catalog, and resident
// segments from disk, replacing the manager's in-memory state. Segments are
// loaded newest to oldest until cumulative uncompressed size would exceed
// the search memory budget; the current segment is always loaded.
func (m *Manager) Refresh() error {
	if err := m.dirLock.Lock(); err != nil {
		return errors.NewSegmentError(err, errors.ErrorCodeIO, "failed to acquire index directory lock")
	}
	defer m.dirLock.Unlock()

	metadataPath := filepath.Join(m.dir, storage.MetadataFile)
	hasMetadata, err := m.backend.CheckPathExists(metadataPath)
	if err != nil {
		return err
	}
	if !hasMetadata {
		return errors.NewMetadataNotFoundError(m.dir)
	}

	meta, _, err := storage.Read[indexmeta.Metadata](m.backend, metadataPath)
	if err != nil {
		return err
	}

	summaries, err := m.readSummaries()
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		return errors.NewNotAnIndexDirectoryError(m.dir)
	}

	segments := make(map[uint32]*segment.Segment)
	var consumed uint64
	for _, s := range summaries {
		consumed += s.UncompressedSize
		if consumed > m.searchMemoryBudget {
			break
		}
		seg, err := m.refreshSegment(s.SegmentNumber)
		if err != nil {
			return err
		}
		segments[s.SegmentNumber] = seg
	}
	if _, ok := segments[meta.CurrentSegmentNumber]; !ok {
		seg, err := m.refreshSegment(meta.CurrentSegmentNumber)
		if err != nil {
			return err
		}
		segments[meta.CurrentSegmentNumber] = seg
	}

	m.summariesMu.Lock()
	m.summaries = summaries
	m.summariesMu.Unlock()

	m.segmentsMu.Lock()
	m.segments = segments
	m.segmentsMu.Unlock()

	m.currentMu.Lock()
	m.currentNumber = meta.CurrentSegmentNumber
	m.currentMu.Unlock()

	m.counter = indexmeta.NewCounter(meta.SegmentCount)

	m.log.Infow("refreshed index", "dir", m.dir, "segmentCount", len(summaries), "resident", len(segments))
	return nil
}
