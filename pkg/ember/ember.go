// Package ember provides the public surface of the ember telemetry engine:
// a single-node index over structured log messages and numeric metric
// points, persisted as a sequence of immutable-once-committed segments. It
// is a thin facade over internal/index that assembles a logger and options,
// then forwards every public operation to the index manager.
package ember

import (
	"github.com/iamNilotpal/ember/internal/index"
	"github.com/iamNilotpal/ember/internal/seginfo"
	"github.com/iamNilotpal/ember/internal/segment"
	"github.com/iamNilotpal/ember/pkg/logger"
	"github.com/iamNilotpal/ember/pkg/options"
	"go.uber.org/zap"
)

// LogMessage is one indexed log line: its time, field map, and free text.
type LogMessage = segment.LogMessage

// MetricPoint is one (time, value) sample returned by GetMetrics.
type MetricPoint = index.MetricPoint

// SegmentSummary is the compact per-segment catalog entry GetAllSegmentsSummaries returns.
type SegmentSummary = seginfo.Summary

// Index is one open telemetry index: the entry point for appends, searches,
// and lifecycle operations (commit, refresh, segment deletion) against a
// single index directory.
type Index struct {
	manager *index.Manager
}

// Open opens (or creates) an index rooted at the directory named by the
// supplied options, applying WithDefaultOptions first unless the caller
// overrides every field.
func Open(opts ...options.OptionFunc) (*Index, error) {
	return OpenWithLogger(nil, opts...)
}

// OpenWithLogger is Open with an explicit logger, for callers that want
// ember's internals to log through their own *zap.SugaredLogger rather
// than a package default.
func OpenWithLogger(log *zap.SugaredLogger, opts ...options.OptionFunc) (*Index, error) {
	if log == nil {
		var err error
		log, err = logger.New()
		if err != nil {
			return nil, err
		}
	}

	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	manager, err := index.Open(resolved, log)
	if err != nil {
		return nil, err
	}
	return &Index{manager: manager}, nil
}

// AppendLogMessage appends a log message to the index's current segment.
// time is an application-defined epoch ordinal, typically milliseconds
// since the Unix epoch; fields are indexed alongside text as
// "field<delimiter>value" terms.
func (idx *Index) AppendLogMessage(time uint64, fields map[string]string, text string) error {
	return idx.manager.AppendLogMessage(time, fields, text)
}

// AppendMetricPoint appends a (time, value) sample to the time series
// identified by metricName and labels.
func (idx *Index) AppendMetricPoint(metricName string, labels map[string]string, time uint64, value float64) error {
	return idx.manager.AppendMetricPoint(metricName, labels, time, value)
}

// SearchLogs evaluates a query-DSL search over every segment overlapping
// [rangeStart, rangeEnd] and returns matches in ascending time order.
// jsonQuery, when non-empty, takes precedence over urlQuery; if both are
// empty the call fails with a NoQueryProvided error.
func (idx *Index) SearchLogs(urlQuery, jsonQuery string, rangeStart, rangeEnd uint64) ([]LogMessage, error) {
	return idx.manager.SearchLogs(urlQuery, jsonQuery, rangeStart, rangeEnd)
}

// GetMetrics returns every point labeled (labelName, labelValue) within
// [rangeStart, rangeEnd], across every overlapping segment.
func (idx *Index) GetMetrics(labelName, labelValue string, rangeStart, rangeEnd uint64) ([]MetricPoint, error) {
	return idx.manager.GetMetrics(labelName, labelValue, rangeStart, rangeEnd)
}

// Commit serializes the current segment to disk, rolling over to a new
// current segment when the size threshold is exceeded, and persists the
// summaries catalog and index metadata. If fsync is true, every write is
// flushed to stable storage before Commit returns.
func (idx *Index) Commit(fsync bool) error {
	return idx.manager.Commit(fsync)
}

// Refresh reloads the index's metadata, summaries, and resident segments
// from disk, replacing in-memory state.
func (idx *Index) Refresh() error {
	return idx.manager.Refresh()
}

// GetAllSegmentsSummaries returns the index's segment catalog, in
// reverse-chronological order by end time.
func (idx *Index) GetAllSegmentsSummaries() []SegmentSummary {
	return idx.manager.GetAllSegmentsSummaries()
}

// DeleteSegment removes a non-resident segment's on-disk directory. It
// fails with a SegmentInMemory error if the segment is still resident.
func (idx *Index) DeleteSegment(segmentNumber uint32) error {
	return idx.manager.DeleteSegment(segmentNumber)
}

// Delete removes the entire index directory.
func (idx *Index) Delete() error {
	return idx.manager.Delete()
}
