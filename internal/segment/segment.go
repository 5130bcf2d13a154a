// Package segment holds the per-time-window shard of an index: its term
// dictionary, inverted map, log store and metric store, plus the
// commit/refresh serialization round trip. AppendLog and AppendMetric mutate
// only in-memory structures and never suspend; SearchLogs and SearchMetrics
// read the in-memory structures; Commit and Refresh go through the storage
// backend.
package segment

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/iamNilotpal/ember/internal/metricblock"
	"github.com/iamNilotpal/ember/internal/postings"
	"github.com/iamNilotpal/ember/internal/query"
	"github.com/iamNilotpal/ember/internal/tokenize"
	"github.com/iamNilotpal/ember/pkg/errors"
)

// AllNameLabel is the synthetic label every metric series carries, holding
// the metric name itself.
const AllNameLabel = "__name__"

// LogMessage is one appended log line, keyed by its dense doc-id in the
// owning segment's log store.
type LogMessage struct {
	Time   uint64            `msgpack:"time"`
	Fields map[string]string `msgpack:"fields"`
	Text   string            `msgpack:"text"`
}

// metricSeries is one time series resident in a segment's metric store: its
// full label set (including the synthetic __name__ label) and its rolling
// sequence of metric blocks.
type metricSeries struct {
	labels map[string]string
	series *metricblock.Series
}

// Segment is one self-contained shard of the index: the unit of commit,
// eviction and deletion.
type Segment struct {
	mu sync.RWMutex

	id        string
	startTime uint64
	endTime   uint64
	hasData   bool

	logMessageCount  uint64
	metricPointCount uint64

	termDictionary map[string]uint32
	nextTermID     uint32
	invertedMap    map[uint32]*postings.List

	logStore    []LogMessage
	metricStore map[string]*metricSeries
}

// New returns a fresh, empty segment with a new uuid identity.
func New() *Segment {
	return &Segment{
		id:             uuid.NewString(),
		termDictionary: make(map[string]uint32),
		invertedMap:    make(map[uint32]*postings.List),
		logStore:       make([]LogMessage, 0),
		metricStore:    make(map[string]*metricSeries),
	}
}

// ID returns the segment's uuid identity.
func (s *Segment) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// StartTime returns the minimum time ever appended to this segment.
func (s *Segment) StartTime() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startTime
}

// EndTime returns the maximum time ever appended to this segment, or 0 if
// nothing has been appended yet.
func (s *Segment) EndTime() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endTime
}

// LogMessageCount returns how many log messages this segment holds.
func (s *Segment) LogMessageCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logMessageCount
}

// MetricPointCount returns how many metric points this segment holds.
func (s *Segment) MetricPointCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metricPointCount
}

// Overlaps reports whether [rangeStart, rangeEnd] intersects the segment's
// [start_time, end_time]. A segment that has never received data
// (end_time == 0) never overlaps.
func (s *Segment) Overlaps(rangeStart, rangeEnd uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasData {
		return false
	}
	return s.startTime <= rangeEnd && s.endTime >= rangeStart
}

func (s *Segment) touchTimeLocked(time uint64) {
	if !s.hasData {
		s.startTime = time
		s.endTime = time
		s.hasData = true
		return
	}
	if time < s.startTime {
		s.startTime = time
	}
	if time > s.endTime {
		s.endTime = time
	}
}

// termID returns the term's id, allocating a fresh one (and a postings
// list for it) on first sight.
func (s *Segment) termID(term string) uint32 {
	s.mu.Lock()
	if id, ok := s.termDictionary[term]; ok {
		s.mu.Unlock()
		return id
	}
	id := s.nextTermID
	s.nextTermID++
	s.termDictionary[term] = id
	s.invertedMap[id] = postings.NewList()
	s.mu.Unlock()
	return id
}

func (s *Segment) postingsListFor(id uint32) *postings.List {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invertedMap[id]
}

// AppendLog assigns the log message the next dense doc-id, tokenizes it
// into terms, and appends the doc-id to each term's postings list.
func (s *Segment) AppendLog(time uint64, fields map[string]string, text string) (uint32, error) {
	s.mu.Lock()
	docID := uint32(len(s.logStore))
	s.logStore = append(s.logStore, LogMessage{Time: time, Fields: fields, Text: text})
	s.logMessageCount++
	s.touchTimeLocked(time)
	s.mu.Unlock()

	for _, term := range tokenize.Terms(text, fields) {
		id := s.termID(term)
		if err := s.postingsListFor(id).Append(docID); err != nil {
			return docID, err
		}
	}
	return docID, nil
}

func canonicalLabelKey(labels map[string]string) string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	key := ""
	for i, name := range names {
		if i > 0 {
			key += "\x1e"
		}
		key += name + "=" + labels[name]
	}
	return key
}

// AppendMetric resolves or creates the time series keyed by the canonical
// set of (label, value) pairs — including the synthetic __name__ label
// derived from metricName — then appends to its tail block.
func (s *Segment) AppendMetric(metricName string, labels map[string]string, time uint64, value float64) error {
	full := make(map[string]string, len(labels)+1)
	for k, v := range labels {
		full[k] = v
	}
	full[AllNameLabel] = metricName
	key := canonicalLabelKey(full)

	s.mu.Lock()
	entry, ok := s.metricStore[key]
	if !ok {
		entry = &metricSeries{labels: full, series: metricblock.NewSeries()}
		s.metricStore[key] = entry
	}
	s.mu.Unlock()

	if err := entry.series.Append(time, value); err != nil {
		return err
	}

	s.mu.Lock()
	s.metricPointCount++
	s.touchTimeLocked(time)
	s.mu.Unlock()
	return nil
}

// matchTerms maps one query-DSL match clause to the index terms it must
// resolve against, using the same tokenization rule the segment indexed
// its content with: a bare or _all match is one term per token of value, a
// named-field match is one field-qualified term per tokenized value.
func matchTerms(field, value string) []string {
	tokens := tokenize.Tokens(value)
	if field == query.AllField || field == "" {
		return tokens
	}
	terms := make([]string, len(tokens))
	for i, tok := range tokens {
		terms[i] = field + tokenize.FieldDelimiter + tok
	}
	return terms
}

// SearchLogs evaluates matcher's AND-of-matches against this segment's
// inverted map, then filters the matched log messages by [rangeStart,
// rangeEnd]. Results are in doc-id order, which for a segment is insertion
// order.
func (s *Segment) SearchLogs(matcher query.Matcher, rangeStart, rangeEnd uint64) ([]LogMessage, error) {
	if len(matcher.Must) == 0 {
		return nil, nil
	}

	terms := matcher.Terms(matchTerms)
	if len(terms) == 0 {
		return nil, nil
	}

	snapshots := make([]postings.Snapshot, 0, len(terms))
	s.mu.RLock()
	for _, term := range terms {
		id, ok := s.termDictionary[term]
		if !ok {
			s.mu.RUnlock()
			return nil, nil
		}
		snapshots = append(snapshots, s.invertedMap[id].Snapshot())
	}
	s.mu.RUnlock()

	ids, err := postings.Intersect(snapshots)
	if err != nil {
		return nil, errors.NewTraverseError(err, "search_logs")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]LogMessage, 0, len(ids))
	for _, id := range ids {
		if int(id) >= len(s.logStore) {
			return nil, errors.NewDocMatchingError(nil, id)
		}
		msg := s.logStore[id]
		if msg.Time >= rangeStart && msg.Time <= rangeEnd {
			results = append(results, msg)
		}
	}
	return results, nil
}

// SearchMetrics returns every point in [rangeStart, rangeEnd] from every
// time series whose label set contains (labelName, labelValue).
func (s *Segment) SearchMetrics(labelName, labelValue string, rangeStart, rangeEnd uint64) ([]metricblock.Point, error) {
	s.mu.RLock()
	matches := make([]*metricSeries, 0)
	for _, entry := range s.metricStore {
		if entry.labels[labelName] == labelValue {
			matches = append(matches, entry)
		}
	}
	s.mu.RUnlock()

	out := make([]metricblock.Point, 0)
	for _, entry := range matches {
		points, err := entry.series.Range(rangeStart, rangeEnd)
		if err != nil {
			return nil, err
		}
		out = append(out, points...)
	}
	return out, nil
}

// UncompressedSize approximates the segment's live memory footprint: the
// log store's text and field bytes, every postings list's doc-id bytes, and
// every metric series's point bytes.
func (s *Segment) UncompressedSize() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var size uint64
	for _, msg := range s.logStore {
		size += uint64(len(msg.Text)) + 8
		for k, v := range msg.Fields {
			size += uint64(len(k) + len(v))
		}
	}
	for _, list := range s.invertedMap {
		size += list.UncompressedSize()
	}
	for _, entry := range s.metricStore {
		size += entry.series.UncompressedSize()
	}
	return size
}
