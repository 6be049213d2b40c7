package performance

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerLifecycle(t *testing.T) {
	tracker := NewTracker(nil)

	marker := tracker.StartOperation("session_start")
	active := tracker.GetActiveOperations()
	require.Len(t, active, 1)
	assert.Equal(t, "session_start", active[0].Operation)
	assert.Empty(t, tracker.GetRecentMetrics(time.Minute))

	marker.AddMetadata("sessionId", "sess-0001")
	marker.SetSuccess(true)
	marker.Complete()

	assert.Empty(t, tracker.GetActiveOperations())
	recent := tracker.GetRecentMetrics(time.Minute)
	require.Len(t, recent, 1)
	assert.True(t, recent[0].Success)
	assert.Equal(t, "sess-0001", recent[0].Metadata["sessionId"])
}

func TestOperationStatsAggregateByPrefix(t *testing.T) {
	tracker := NewTracker(nil)

	ok := tracker.StartOperation("session_start")
	ok.SetSuccess(true)
	ok.Complete()

	failed := tracker.StartOperation("session_end")
	failed.SetError(errors.New("archive unavailable"))
	failed.Complete()

	other := tracker.StartOperation("events_record_pageview")
	other.Complete()

	stats := tracker.GetOperationStats("session")
	assert.Equal(t, 2, stats["operations"])
	assert.Equal(t, 1, stats["failures"])
	assert.Contains(t, stats, "avgDuration")

	assert.Equal(t, 1, tracker.GetOperationStats("events")["operations"])
}

func TestCleanupEvictsExpiredMarkers(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxMarkers: 100, RetentionWindow: time.Nanosecond})

	marker := tracker.StartOperation("session_start")
	marker.Complete()
	time.Sleep(2 * time.Millisecond)

	tracker.Cleanup()
	assert.Empty(t, tracker.GetRecentMetrics(time.Minute))

	stats := tracker.GetOverallStats()
	assert.Equal(t, 0, stats["totalMarkers"])
	assert.Contains(t, stats, "trackerUptime")
}

func TestCompleteIsIdempotent(t *testing.T) {
	tracker := NewTracker(nil)

	marker := tracker.StartOperation("session_start")
	marker.Complete()
	first := marker.Duration

	time.Sleep(time.Millisecond)
	marker.Complete()
	assert.Equal(t, first, marker.Duration)
}
