// Package index implements the index manager: the top-level object that
// owns an index directory, keeps a reverse-chronological catalog of segment
// summaries, decides which segments stay resident in memory, and serializes
// commit/refresh against the directory with a process-wide file lock.
package index

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/gofrs/flock"
	"github.com/iamNilotpal/ember/internal/indexmeta"
	"github.com/iamNilotpal/ember/internal/query"
	"github.com/iamNilotpal/ember/internal/seginfo"
	"github.com/iamNilotpal/ember/internal/segment"
	"github.com/iamNilotpal/ember/internal/storage"
	"github.com/iamNilotpal/ember/pkg/errors"
	"github.com/iamNilotpal/ember/pkg/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// lockFileName is the file flock locks against to serialize commit and
// refresh across processes sharing an index directory.
const lockFileName = ".dir.lock"

// Manager owns one index directory: its metadata, its segment summaries
// catalog, and the subset of segments currently resident in memory.
type Manager struct {
	log     *zap.SugaredLogger
	dir     string
	backend storage.Backend
	fsync   bool

	dirLock *flock.Flock

	counter              *indexmeta.Counter
	segmentSizeThreshold uint64
	searchMemoryBudget   uint64

	currentMu     sync.RWMutex
	currentNumber uint32

	summariesMu sync.RWMutex
	summaries   []seginfo.Summary

	segmentsMu sync.RWMutex
	segments   map[uint32]*segment.Segment
}

// Open opens the index directory named by opts.DataDir, refreshing an
// existing index if metadata.bin is already present, or creating a brand
// new one (with an empty initial segment) otherwise.
func Open(opts options.Options, log *zap.SugaredLogger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	backend := storage.NewFileBackend(log)
	log.Infow("opening index", "dir", opts.DataDir, "segmentSizeThresholdBytes", opts.SegmentSizeThresholdBytes)

	exists, err := backend.CheckPathExists(opts.DataDir)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := backend.CreateDir(opts.DataDir); err != nil {
			return nil, err
		}
	}

	metadataPath := filepath.Join(opts.DataDir, storage.MetadataFile)
	hasMetadata, err := backend.CheckPathExists(metadataPath)
	if err != nil {
		return nil, err
	}
	if hasMetadata {
		return refresh(opts, backend, log)
	}
	return create(opts, backend, log)
}

func newDirLock(dir string) *flock.Flock {
	return flock.New(filepath.Join(dir, lockFileName))
}

func create(opts options.Options, backend storage.Backend, log *zap.SugaredLogger) (*Manager, error) {
	seg := segment.New()
	meta := indexmeta.New(opts.SegmentSizeThresholdBytes)
	counter := indexmeta.NewCounter(meta.SegmentCount)
	currentNumber := counter.FetchIncrement()

	m := &Manager{
		log:                  log,
		dir:                  opts.DataDir,
		backend:              backend,
		fsync:                opts.Fsync,
		dirLock:              newDirLock(opts.DataDir),
		counter:              counter,
		segmentSizeThreshold: opts.SegmentSizeThresholdBytes,
		searchMemoryBudget:   opts.SearchMemoryBudgetBytes,
		currentNumber:        currentNumber,
		summaries:            []seginfo.Summary{{SegmentNumber: currentNumber, SegmentID: seg.ID()}},
		segments:             map[uint32]*segment.Segment{currentNumber: seg},
	}

	if err := m.Commit(false); err != nil {
		return nil, err
	}
	return m, nil
}

func refresh(opts options.Options, backend storage.Backend, log *zap.SugaredLogger) (*Manager, error) {
	log.Infow("refreshing index", "dir", opts.DataDir)

	meta, _, err := storage.Read[indexmeta.Metadata](backend, filepath.Join(opts.DataDir, storage.MetadataFile))
	if err != nil {
		return nil, err
	}

	m := &Manager{
		log:                  log,
		dir:                  opts.DataDir,
		backend:              backend,
		fsync:                opts.Fsync,
		dirLock:              newDirLock(opts.DataDir),
		counter:              indexmeta.NewCounter(meta.SegmentCount),
		segmentSizeThreshold: opts.SegmentSizeThresholdBytes,
		searchMemoryBudget:   opts.SearchMemoryBudgetBytes,
		currentNumber:        meta.CurrentSegmentNumber,
		segments:             make(map[uint32]*segment.Segment),
	}

	summaries, err := m.readSummaries()
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, errors.NewNotAnIndexDirectoryError(opts.DataDir)
	}
	m.summaries = summaries

	var consumed uint64
	for _, s := range summaries {
		consumed += s.UncompressedSize
		if consumed > m.searchMemoryBudget {
			break
		}
		seg, err := m.refreshSegment(s.SegmentNumber)
		if err != nil {
			return nil, err
		}
		m.segments[s.SegmentNumber] = seg
	}
	if _, ok := m.segments[m.currentNumber]; !ok {
		seg, err := m.refreshSegment(m.currentNumber)
		if err != nil {
			return nil, err
		}
		m.segments[m.currentNumber] = seg
	}

	log.Infow("refreshed index", "dir", opts.DataDir, "segmentCount", len(summaries))
	return m, nil
}

func (m *Manager) readSummaries() ([]seginfo.Summary, error) {
	path := filepath.Join(m.dir, storage.AllSegmentsFile)
	exists, err := m.backend.CheckPathExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NewNotAnIndexDirectoryError(m.dir)
	}
	summaries, _, err := storage.Read[[]seginfo.Summary](m.backend, path)
	return summaries, err
}

func (m *Manager) refreshSegment(segmentNumber uint32) (*segment.Segment, error) {
	return segment.Refresh(m.backend, m.dir, segmentNumber)
}

// currentSegment returns the segment currently accepting appends. Per the
// reference design this segment is always resident; a missing entry is an
// invariant violation.
func (m *Manager) currentSegment() *segment.Segment {
	m.currentMu.RLock()
	number := m.currentNumber
	m.currentMu.RUnlock()

	m.segmentsMu.RLock()
	defer m.segmentsMu.RUnlock()
	seg, ok := m.segments[number]
	if !ok {
		panic("index: current segment not resident in memory")
	}
	return seg
}

// AppendLogMessage appends a log message to the index's current segment.
func (m *Manager) AppendLogMessage(time uint64, fields map[string]string, text string) error {
	_, err := m.currentSegment().AppendLog(time, fields, text)
	return err
}

// AppendMetricPoint appends a metric point to the index's current segment.
func (m *Manager) AppendMetricPoint(metricName string, labels map[string]string, time uint64, value float64) error {
	return m.currentSegment().AppendMetric(metricName, labels, time, value)
}

// overlappingSegments returns the segment numbers overlapping
// [rangeStart, rangeEnd], in reverse-chronological order, preferring a
// resident segment's live time range over its (possibly stale) summary.
// Non-resident segments are filtered using seginfo.Overlapping against
// their (possibly stale) summary; resident segments use their own live
// Overlaps check instead, since appends update a resident segment's
// start/end time immediately rather than waiting for the next commit.
func (m *Manager) overlappingSegments(rangeStart, rangeEnd uint64) []uint32 {
	m.summariesMu.RLock()
	summaries := make([]seginfo.Summary, len(m.summaries))
	copy(summaries, m.summaries)
	m.summariesMu.RUnlock()

	resident := make(map[uint32]*segment.Segment, len(summaries))
	nonResident := make([]seginfo.Summary, 0, len(summaries))
	for _, s := range summaries {
		m.segmentsMu.RLock()
		seg, ok := m.segments[s.SegmentNumber]
		m.segmentsMu.RUnlock()

		if ok {
			resident[s.SegmentNumber] = seg
		} else {
			nonResident = append(nonResident, s)
		}
	}

	overlappingNonResident := make(map[uint32]struct{}, len(nonResident))
	for _, n := range seginfo.Overlapping(nonResident, rangeStart, rangeEnd) {
		overlappingNonResident[n] = struct{}{}
	}

	numbers := make([]uint32, 0, len(summaries))
	for _, s := range summaries {
		if seg, ok := resident[s.SegmentNumber]; ok {
			if seg.Overlaps(rangeStart, rangeEnd) {
				numbers = append(numbers, s.SegmentNumber)
			}
		} else if _, ok := overlappingNonResident[s.SegmentNumber]; ok {
			numbers = append(numbers, s.SegmentNumber)
		}
	}
	return numbers
}

// segmentForSearch returns the segment numbered n, loading it from disk if
// it isn't currently resident. Loaded-on-demand segments are not inserted
// into the resident map; they stay scoped to the calling search.
func (m *Manager) segmentForSearch(n uint32) (*segment.Segment, error) {
	m.segmentsMu.RLock()
	seg, ok := m.segments[n]
	m.segmentsMu.RUnlock()
	if ok {
		return seg, nil
	}
	return m.refreshSegment(n)
}

// SearchLogs evaluates a query-DSL search against every segment overlapping
// [rangeStart, rangeEnd] and returns the matches in ascending time order.
// Either urlQuery or jsonBody must be non-empty; jsonBody, when present,
// takes precedence. A fresh AST is parsed per segment, since Matcher carries
// no state worth sharing across the fan-out. A segment whose evaluation
// fails is logged and contributes no results.
func (m *Manager) SearchLogs(urlQuery, jsonBody string, rangeStart, rangeEnd uint64) ([]segment.LogMessage, error) {
	raw := []byte(jsonBody)
	if len(raw) == 0 {
		if urlQuery == "" {
			return nil, errors.ErrNoQueryProvided()
		}
		raw = query.WrapURLQuery(urlQuery)
	}

	numbers := m.overlappingSegments(rangeStart, rangeEnd)

	var mu sync.Mutex
	var results []segment.LogMessage
	var g errgroup.Group

	for _, n := range numbers {
		n := n
		g.Go(func() error {
			matcher, err := query.ParseJSON(raw)
			if err != nil {
				m.log.Errorw("failed to parse query for segment", "segment", n, "error", err)
				return nil
			}

			seg, err := m.segmentForSearch(n)
			if err != nil {
				m.log.Errorw("failed to load segment for search", "segment", n, "error", err)
				return nil
			}

			matched, err := seg.SearchLogs(matcher, rangeStart, rangeEnd)
			if err != nil {
				m.log.Errorw("failed to search segment", "segment", n, "error", err)
				return nil
			}

			mu.Lock()
			results = append(results, matched...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Time < results[j].Time })
	return results, nil
}

// MetricPoint mirrors metricblock.Point so callers of GetMetrics don't need
// to import internal/metricblock directly.
type MetricPoint struct {
	Time  uint64
	Value float64
}

// GetMetrics returns every metric point labeled (labelName, labelValue)
// within [rangeStart, rangeEnd], across every overlapping segment. A segment
// whose evaluation fails is logged and contributes no points.
func (m *Manager) GetMetrics(labelName, labelValue string, rangeStart, rangeEnd uint64) ([]MetricPoint, error) {
	numbers := m.overlappingSegments(rangeStart, rangeEnd)

	var mu sync.Mutex
	var results []MetricPoint
	var g errgroup.Group

	for _, n := range numbers {
		n := n
		g.Go(func() error {
			seg, err := m.segmentForSearch(n)
			if err != nil {
				m.log.Errorw("failed to load segment for metrics search", "segment", n, "error", err)
				return nil
			}
			points, err := seg.SearchMetrics(labelName, labelValue, rangeStart, rangeEnd)
			if err != nil {
				m.log.Errorw("failed to search segment metrics", "segment", n, "error", err)
				return nil
			}

			mu.Lock()
			for _, p := range points {
				results = append(results, MetricPoint{Time: p.Time, Value: p.Value})
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetAllSegmentsSummaries returns the index's current segment catalog, in
// reverse-chronological order.
func (m *Manager) GetAllSegmentsSummaries() []seginfo.Summary {
	m.summariesMu.RLock()
	defer m.summariesMu.RUnlock()
	out := make([]seginfo.Summary, len(m.summaries))
	copy(out, m.summaries)
	return out
}

// GetDir returns the index's directory path.
func (m *Manager) GetDir() string {
	return m.dir
}

// Delete removes the entire index directory.
func (m *Manager) Delete() error {
	return m.backend.RemoveDir(m.dir)
}

// DeleteSegment removes a non-resident segment's directory from disk. A
// segment still resident in memory cannot be deleted this way.
func (m *Manager) DeleteSegment(segmentNumber uint32) error {
	m.segmentsMu.RLock()
	_, resident := m.segments[segmentNumber]
	m.segmentsMu.RUnlock()

	if resident {
		return errors.NewSegmentInMemoryError(segmentNumber)
	}
	return m.backend.RemoveDir(storage.SegmentDir(m.dir, segmentNumber))
}

func (m *Manager) insertResident(n uint32, seg *segment.Segment) {
	m.segmentsMu.Lock()
	m.segments[n] = seg
	m.segmentsMu.Unlock()
}

// evict drops the oldest resident segments (by end time) until resident
// memory usage is back within the search memory budget. The current
// segment is never evicted.
func (m *Manager) evict() {
	m.currentMu.RLock()
	current := m.currentNumber
	m.currentMu.RUnlock()

	type entry struct {
		number uint32
		size   uint64
		end    uint64
	}

	m.segmentsMu.RLock()
	entries := make([]entry, 0, len(m.segments))
	var consumed uint64
	for n, seg := range m.segments {
		size := seg.UncompressedSize()
		entries = append(entries, entry{number: n, size: size, end: seg.EndTime()})
		consumed += size
	}
	m.segmentsMu.RUnlock()

	if consumed <= m.searchMemoryBudget {
		return
	}
	toEvict := consumed - m.searchMemoryBudget

	sort.Slice(entries, func(i, j int) bool { return entries[i].end < entries[j].end })

	var evicted uint64
	m.segmentsMu.Lock()
	defer m.segmentsMu.Unlock()
	for _, e := range entries {
		if evicted >= toEvict {
			break
		}
		if e.number == current {
			continue
		}
		delete(m.segments, e.number)
		evicted += e.size
	}
}
