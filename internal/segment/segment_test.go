package segment

import (
	"fmt"
	"testing"

	"github.com/iamNilotpal/ember/internal/query"
	"github.com/iamNilotpal/ember/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendLogAssignsDenseDocIDs(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		id, err := s.AppendLog(uint64(i), nil, fmt.Sprintf("content#%d", i))
		require.NoError(t, err)
		assert.Equal(t, uint32(i), id)
	}
	assert.EqualValues(t, 5, s.LogMessageCount())
	assert.Equal(t, uint64(0), s.StartTime())
	assert.Equal(t, uint64(4), s.EndTime())
}

func TestSearchLogsMatchesAndFiltersByRange(t *testing.T) {
	s := New()
	for i := 1; i <= 999; i++ {
		_, err := s.AppendLog(uint64(i), nil, fmt.Sprintf("this is my log message %d", i))
		require.NoError(t, err)
	}
	_, err := s.AppendLog(1000, nil, "thisisunique")
	require.NoError(t, err)

	matcher, err := query.ParseJSON(query.WrapURLQuery("message"))
	require.NoError(t, err)

	results, err := s.SearchLogs(matcher, 0, ^uint64(0))
	require.NoError(t, err)
	assert.Len(t, results, 999)

	matcher, err = query.ParseJSON(query.WrapURLQuery("thisisunique"))
	require.NoError(t, err)
	results, err = s.SearchLogs(matcher, 0, ^uint64(0))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "thisisunique", results[0].Text)
}

func TestSearchLogsRespectsTimeRange(t *testing.T) {
	s := New()
	_, err := s.AppendLog(10, nil, "alpha")
	require.NoError(t, err)
	_, err = s.AppendLog(200, nil, "alpha")
	require.NoError(t, err)

	matcher, err := query.ParseJSON(query.WrapURLQuery("alpha"))
	require.NoError(t, err)

	results, err := s.SearchLogs(matcher, 0, 50)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, uint64(10), results[0].Time)
}

func TestAppendMetricAndSearchByLabel(t *testing.T) {
	s := New()
	for i := 1; i <= 5; i++ {
		err := s.AppendMetric("request_count", map[string]string{"method": "GET"}, uint64(i), float64(i))
		require.NoError(t, err)
	}

	points, err := s.SearchMetrics(AllNameLabel, "request_count", 0, ^uint64(0))
	require.NoError(t, err)
	require.Len(t, points, 5)

	points, err = s.SearchMetrics("method", "GET", 0, ^uint64(0))
	require.NoError(t, err)
	assert.Len(t, points, 5)

	points, err = s.SearchMetrics("method", "POST", 0, ^uint64(0))
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestOverlapsNoDataNeverOverlaps(t *testing.T) {
	s := New()
	assert.False(t, s.Overlaps(0, ^uint64(0)))
	_, err := s.AppendLog(100, nil, "x")
	require.NoError(t, err)
	assert.True(t, s.Overlaps(50, 150))
	assert.False(t, s.Overlaps(200, 300))
}

func TestCommitRefreshRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend := storage.NewFileBackend(nil)

	s := New()
	for i := 0; i < 5; i++ {
		_, err := s.AppendLog(uint64(i), map[string]string{"env": "prod"}, fmt.Sprintf("content#%d", i+1))
		require.NoError(t, err)
	}
	for i := 1; i <= 5; i++ {
		err := s.AppendMetric("request_count", map[string]string{"method": "GET"}, uint64(i), float64(i))
		require.NoError(t, err)
	}

	_, _, err := s.Commit(backend, dir, 0, false)
	require.NoError(t, err)

	restored, err := Refresh(backend, dir, 0)
	require.NoError(t, err)

	assert.Equal(t, s.LogMessageCount(), restored.LogMessageCount())
	assert.Equal(t, s.MetricPointCount(), restored.MetricPointCount())
	assert.Equal(t, s.ID(), restored.ID())

	matcher, err := query.ParseJSON(query.WrapURLQuery("content"))
	require.NoError(t, err)
	results, err := restored.SearchLogs(matcher, 0, ^uint64(0))
	require.NoError(t, err)
	assert.Len(t, results, 5)
}

func TestCommitIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	backend := storage.NewFileBackend(nil)

	s := New()
	_, err := s.AppendLog(1, nil, "hello world")
	require.NoError(t, err)

	u1, c1, err := s.Commit(backend, dir, 0, false)
	require.NoError(t, err)
	u2, c2, err := s.Commit(backend, dir, 0, false)
	require.NoError(t, err)

	assert.Equal(t, u1, u2)
	assert.Equal(t, c1, c2)
}
