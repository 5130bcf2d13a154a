package segment

import (
	"path/filepath"
	"sort"

	"github.com/iamNilotpal/ember/internal/metricblock"
	"github.com/iamNilotpal/ember/internal/postings"
	"github.com/iamNilotpal/ember/internal/storage"
)

// metadataDTO is the msgpack shape of a segment's metadata.bin.
type metadataDTO struct {
	ID               string `msgpack:"id"`
	StartTime        uint64 `msgpack:"start_time"`
	EndTime          uint64 `msgpack:"end_time"`
	HasData          bool   `msgpack:"has_data"`
	LogMessageCount  uint64 `msgpack:"log_message_count"`
	MetricPointCount uint64 `msgpack:"metric_point_count"`
	NextTermID       uint32 `msgpack:"next_term_id"`
}

// termEntryDTO is one (term, id) pair. terms.bin is a sorted slice of these,
// never a raw map, so repeated commits with no intervening appends produce
// byte-identical output.
type termEntryDTO struct {
	Term string `msgpack:"term"`
	ID   uint32 `msgpack:"id"`
}

// postingsEntryDTO is one term's postings list, keyed by term id.
type postingsEntryDTO struct {
	TermID     uint32                    `msgpack:"term_id"`
	Compressed []*postings.CompressedBlock `msgpack:"compressed"`
	Landmarks  []uint32                  `msgpack:"landmarks"`
	Tail       []uint32                  `msgpack:"tail"`
}

// metricEntryDTO is one time series, keyed by its canonical label string so
// entries sort deterministically.
type metricEntryDTO struct {
	Key        string            `msgpack:"key"`
	Labels     map[string]string `msgpack:"labels"`
	Compressed [][]byte          `msgpack:"compressed"`
	Tail       []metricblock.Point `msgpack:"tail"`
}

func (s *Segment) toMetadataDTO() metadataDTO {
	return metadataDTO{
		ID:               s.id,
		StartTime:        s.startTime,
		EndTime:          s.endTime,
		HasData:          s.hasData,
		LogMessageCount:  s.logMessageCount,
		MetricPointCount: s.metricPointCount,
		NextTermID:       s.nextTermID,
	}
}

func (s *Segment) toTermEntries() []termEntryDTO {
	entries := make([]termEntryDTO, 0, len(s.termDictionary))
	for term, id := range s.termDictionary {
		entries = append(entries, termEntryDTO{Term: term, ID: id})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Term < entries[j].Term })
	return entries
}

func (s *Segment) toPostingsEntries() []postingsEntryDTO {
	entries := make([]postingsEntryDTO, 0, len(s.invertedMap))
	for id, list := range s.invertedMap {
		snap := list.Snapshot()
		entries = append(entries, postingsEntryDTO{
			TermID:     id,
			Compressed: snap.Compressed,
			Landmarks:  snap.Landmarks,
			Tail:       snap.Tail,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].TermID < entries[j].TermID })
	return entries
}

func (s *Segment) toMetricEntries() []metricEntryDTO {
	entries := make([]metricEntryDTO, 0, len(s.metricStore))
	for key, entry := range s.metricStore {
		compressed, tail := entry.series.Snapshot()
		bytes := make([][]byte, len(compressed))
		for i, cb := range compressed {
			bytes[i] = cb.Bytes()
		}
		entries = append(entries, metricEntryDTO{
			Key:        key,
			Labels:     entry.labels,
			Compressed: bytes,
			Tail:       tail.Points(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Commit serializes the segment's full state into its directory under dir,
// writing metadata.bin, terms.bin, inverted_map.bin, log_store.bin and
// metric_store.bin as five independent whole-file writes. It returns the
// segment's live uncompressed size and the total bytes written to disk, so
// the index manager can decide on roll-over and record the uncompressed size
// in the segment's summary. Committing twice with no intervening appends writes
// identical bytes to every file.
func (s *Segment) Commit(backend storage.Backend, dir string, segmentNumber uint32, fsync bool) (uncompressed uint64, compressed uint64, err error) {
	s.mu.RLock()
	meta := s.toMetadataDTO()
	terms := s.toTermEntries()
	postingsEntries := s.toPostingsEntries()
	logStore := make([]LogMessage, len(s.logStore))
	copy(logStore, s.logStore)
	metrics := s.toMetricEntries()
	s.mu.RUnlock()

	uncompressed = s.UncompressedSize()

	segDir := storage.SegmentDir(dir, segmentNumber)
	if err = backend.CreateDir(segDir); err != nil {
		return 0, 0, err
	}

	n, err := storage.Write(backend, meta, filepath.Join(segDir, storage.SegmentMetadataFile), fsync)
	if err != nil {
		return 0, 0, err
	}
	compressed += uint64(n)

	n, err = storage.Write(backend, terms, filepath.Join(segDir, storage.TermsFile), fsync)
	if err != nil {
		return 0, 0, err
	}
	compressed += uint64(n)

	n, err = storage.Write(backend, postingsEntries, filepath.Join(segDir, storage.InvertedMapFile), fsync)
	if err != nil {
		return 0, 0, err
	}
	compressed += uint64(n)

	n, err = storage.Write(backend, logStore, filepath.Join(segDir, storage.LogStoreFile), fsync)
	if err != nil {
		return 0, 0, err
	}
	compressed += uint64(n)

	n, err = storage.Write(backend, metrics, filepath.Join(segDir, storage.MetricStoreFile), fsync)
	if err != nil {
		return 0, 0, err
	}
	compressed += uint64(n)

	return uncompressed, compressed, nil
}

// Refresh reloads a segment's full state from its directory under dir,
// rebuilding every in-memory structure from the five files Commit wrote.
func Refresh(backend storage.Backend, dir string, segmentNumber uint32) (*Segment, error) {
	segDir := storage.SegmentDir(dir, segmentNumber)

	meta, _, err := storage.Read[metadataDTO](backend, filepath.Join(segDir, storage.SegmentMetadataFile))
	if err != nil {
		return nil, err
	}
	terms, _, err := storage.Read[[]termEntryDTO](backend, filepath.Join(segDir, storage.TermsFile))
	if err != nil {
		return nil, err
	}
	postingsEntries, _, err := storage.Read[[]postingsEntryDTO](backend, filepath.Join(segDir, storage.InvertedMapFile))
	if err != nil {
		return nil, err
	}
	logStore, _, err := storage.Read[[]LogMessage](backend, filepath.Join(segDir, storage.LogStoreFile))
	if err != nil {
		return nil, err
	}
	metrics, _, err := storage.Read[[]metricEntryDTO](backend, filepath.Join(segDir, storage.MetricStoreFile))
	if err != nil {
		return nil, err
	}

	s := &Segment{
		id:               meta.ID,
		startTime:        meta.StartTime,
		endTime:          meta.EndTime,
		hasData:          meta.HasData,
		logMessageCount:  meta.LogMessageCount,
		metricPointCount: meta.MetricPointCount,
		nextTermID:       meta.NextTermID,
		termDictionary:   make(map[string]uint32, len(terms)),
		invertedMap:      make(map[uint32]*postings.List, len(postingsEntries)),
		logStore:         logStore,
		metricStore:      make(map[string]*metricSeries, len(metrics)),
	}

	for _, t := range terms {
		s.termDictionary[t.Term] = t.ID
	}
	for _, p := range postingsEntries {
		s.invertedMap[p.TermID] = postings.FromSnapshot(p.Compressed, p.Landmarks, p.Tail)
	}
	for _, m := range metrics {
		compressed := make([]*metricblock.CompressedBlock, len(m.Compressed))
		for i, b := range m.Compressed {
			compressed[i] = metricblock.FromBytes(b)
		}
		tail := metricblock.NewWithPoints(m.Tail)
		s.metricStore[m.Key] = &metricSeries{labels: m.Labels, series: metricblock.FromSnapshot(compressed, tail)}
	}

	return s, nil
}
