package index

import (
	"fmt"
	"testing"

	"github.com/iamNilotpal/ember/pkg/errors"
	"github.com/iamNilotpal/ember/pkg/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T, thresholdBytes, budgetBytes uint64) options.Options {
	t.Helper()
	opts := options.NewDefaultOptions()
	opts.DataDir = t.TempDir()
	if thresholdBytes > 0 {
		opts.SegmentSizeThresholdBytes = thresholdBytes
	}
	if budgetBytes > 0 {
		opts.SearchMemoryBudgetBytes = budgetBytes
	} else {
		opts.SearchMemoryBudgetBytes = opts.SegmentSizeThresholdBytes * 64
	}
	opts.Fsync = false
	return opts
}

func TestOpenEmptyIndex(t *testing.T) {
	opts := testOptions(t, 0, 0)
	m, err := Open(opts, nil)
	require.NoError(t, err)

	current := m.currentSegment()
	assert.EqualValues(t, 0, current.LogMessageCount())

	summaries := m.GetAllSegmentsSummaries()
	require.Len(t, summaries, 1)
}

func TestCommitRefreshPreservesCounts(t *testing.T) {
	opts := testOptions(t, 0, 0)
	m, err := Open(opts, nil)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		require.NoError(t, m.AppendLogMessage(uint64(i), nil, fmt.Sprintf("content#%d", i)))
		require.NoError(t, m.AppendMetricPoint("request_count", map[string]string{"method": "GET"}, uint64(i), float64(i)))
	}

	require.NoError(t, m.Commit(false))

	before := m.currentSegment()
	beforeLogs := before.LogMessageCount()
	beforeMetrics := before.MetricPointCount()

	require.NoError(t, m.Refresh())

	after := m.currentSegment()
	assert.Equal(t, beforeLogs, after.LogMessageCount())
	assert.Equal(t, beforeMetrics, after.MetricPointCount())
}

func TestSearchLogsFindsTerms(t *testing.T) {
	opts := testOptions(t, 0, 0)
	m, err := Open(opts, nil)
	require.NoError(t, err)

	for i := 1; i <= 999; i++ {
		require.NoError(t, m.AppendLogMessage(uint64(i), nil, fmt.Sprintf("this is my log message %d", i)))
	}
	require.NoError(t, m.AppendLogMessage(1000, nil, "thisisunique"))

	results, err := m.SearchLogs("message", "", 0, ^uint64(0))
	require.NoError(t, err)
	assert.Len(t, results, 999)

	results, err = m.SearchLogs("thisisunique", "", 0, ^uint64(0))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "thisisunique", results[0].Text)
}

func TestSearchLogsNoQueryProvided(t *testing.T) {
	opts := testOptions(t, 0, 0)
	m, err := Open(opts, nil)
	require.NoError(t, err)

	_, err = m.SearchLogs("", "", 0, ^uint64(0))
	require.Error(t, err)
}

func TestRollOverProducesMultipleSegments(t *testing.T) {
	opts := testOptions(t, 1024, 0)
	m, err := Open(opts, nil)
	require.NoError(t, err)

	const total = 10000
	for i := 0; i < total; i++ {
		text := fmt.Sprintf("uniquesuffix%d", i)
		require.NoError(t, m.AppendLogMessage(uint64(i), nil, text))
		if i%1000 == 999 {
			require.NoError(t, m.Commit(false))
		}
	}
	require.NoError(t, m.Commit(false))

	m.segmentsMu.RLock()
	resident := len(m.segments)
	m.segmentsMu.RUnlock()
	assert.Greater(t, resident, 1)

	current := m.currentSegment()
	assert.EqualValues(t, 0, current.LogMessageCount())

	// Sample a subset of distinct suffixes rather than all 10000: each must
	// still produce exactly one hit, demonstrating demand loading works
	// across every rolled-over segment.
	for i := 0; i < total; i += 37 {
		text := fmt.Sprintf("uniquesuffix%d", i)
		results, err := m.SearchLogs(text, "", 0, ^uint64(0))
		require.NoError(t, err)
		assert.Len(t, results, 1, "expected exactly one hit for %q", text)
	}
}

func TestOverlappingSegments(t *testing.T) {
	// One segment per pair of appends: force a roll-over after every 2 logs
	// by committing after every pair of appends with a tiny threshold.
	opts := testOptions(t, 1, 0)
	m, err := Open(opts, nil)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, m.AppendLogMessage(uint64(i*2000), nil, "a"))
		require.NoError(t, m.AppendLogMessage(uint64(i*2000+500), nil, "b"))
		require.NoError(t, m.Commit(false))
	}

	assert.Len(t, m.overlappingSegments(500, 1800), 1)
	assert.Len(t, m.overlappingSegments(500, 2800), 2)
	assert.Len(t, m.overlappingSegments(500, 10000), 6)
	assert.Len(t, m.overlappingSegments(1500, 1800), 0)
}

func TestEvictionRespectsBudgetAndDemandLoads(t *testing.T) {
	threshold := uint64(2048)
	for _, k := range []uint64{4, 8, 16, 24, 32} {
		k := k
		t.Run(fmt.Sprintf("K=%d", k), func(t *testing.T) {
			opts := testOptions(t, threshold, threshold*k)
			m, err := Open(opts, nil)
			require.NoError(t, err)

			seen := make([]string, 0, 20)
			for i := 0; i < 20; i++ {
				text := fmt.Sprintf("segmentmarker%d", i)
				seen = append(seen, text)
				// pad the text so the segment crosses the threshold quickly.
				require.NoError(t, m.AppendLogMessage(uint64(i), nil, text+" filler filler filler filler filler"))
				require.NoError(t, m.Commit(false))
			}

			m.segmentsMu.RLock()
			resident := len(m.segments)
			m.segmentsMu.RUnlock()
			assert.LessOrEqual(t, resident, int(k)+1)

			for _, text := range seen {
				results, err := m.SearchLogs(text, "", 0, ^uint64(0))
				require.NoError(t, err)
				assert.Len(t, results, 1, "expected exactly one hit for %q", text)
			}
		})
	}
}

func TestDeleteSegmentRefusesResident(t *testing.T) {
	opts := testOptions(t, 0, 0)
	m, err := Open(opts, nil)
	require.NoError(t, err)

	err = m.DeleteSegment(0)
	require.Error(t, err)
}

func TestRefreshMissingMetadataFails(t *testing.T) {
	opts := testOptions(t, 0, 0)
	m, err := Open(opts, nil)
	require.NoError(t, err)

	require.NoError(t, m.backend.RemoveDir(m.dir))
	require.NoError(t, m.backend.CreateDir(m.dir))

	err = m.Refresh()
	require.Error(t, err)

	var storageErr *errors.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, errors.ErrorCodeMetadataNotFound, storageErr.Code())
}
