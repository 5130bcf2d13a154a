package retention

import (
	"testing"

	"github.com/iamNilotpal/ember/internal/seginfo"
	"github.com/stretchr/testify/assert"
)

func TestExpiredZeroRetentionDisablesPolicy(t *testing.T) {
	summaries := []seginfo.Summary{{SegmentNumber: 1, EndTime: 100}}
	assert.Empty(t, Expired(summaries, 10000, 0))
}

func TestExpiredSkipsSegmentsWithNoData(t *testing.T) {
	summaries := []seginfo.Summary{{SegmentNumber: 1, EndTime: 0}}
	assert.Empty(t, Expired(summaries, 10000, 100))
}

func TestExpiredReturnsOnlySegmentsOlderThanCutoff(t *testing.T) {
	summaries := []seginfo.Summary{
		{SegmentNumber: 1, EndTime: 100},
		{SegmentNumber: 2, EndTime: 5000},
		{SegmentNumber: 3, EndTime: 9999},
	}

	got := Expired(summaries, 10000, 1000)
	assert.Equal(t, []uint32{1, 2}, got)
}

func TestExpiredNowBeforeRetentionNeverExpires(t *testing.T) {
	summaries := []seginfo.Summary{{SegmentNumber: 1, EndTime: 5}}
	assert.Empty(t, Expired(summaries, 50, 1000))
}
