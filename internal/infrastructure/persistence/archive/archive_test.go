package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
	"github.com/PulsePath/pulsetrack-go/internal/domain/events"
	"github.com/PulsePath/pulsetrack-go/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	old := config.ArchiveSQLitePath
	config.ArchiveSQLitePath = filepath.Join(t.TempDir(), "archive.db")
	t.Cleanup(func() { config.ArchiveSQLitePath = old })

	store, err := NewStore(nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func closedSession() *session.Session {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Minute)
	return &session.Session{
		ID:        "sess-0001",
		UserID:    "user1",
		StartTime: start,
		EndTime:   &end,
		Source:    session.SourceOrganic,
		PageViews: []session.PageView{
			{Page: "/home", Title: "Home", Timestamp: start, TimeSpent: 10 * time.Second, ScrollDepth: 80, InteractionCount: 2},
			{Page: "/departments", Title: "Departments", Timestamp: start.Add(10 * time.Second)},
		},
		Interactions: []events.InteractionEvent{
			{Type: events.TypeClick, Element: "cta", Coordinates: &events.Coordinates{X: 12, Y: 34}, Timestamp: start.Add(time.Second)},
			{Type: events.TypeScroll, Element: "window", Value: "80", Timestamp: start.Add(2 * time.Second)},
		},
	}
}

func TestArchiveSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := closedSession()
	require.NoError(t, store.ArchiveSession(ctx, sess))

	count, err := store.ArchivedSessionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var userID, source string
	var startMs, endMs int64
	var pvCount, evCount int
	err = store.conn.QueryRowContext(ctx,
		`SELECT user_id, source, start_time, end_time, page_view_count, interaction_count FROM sessions WHERE id = ?`,
		sess.ID).Scan(&userID, &source, &startMs, &endMs, &pvCount, &evCount)
	require.NoError(t, err)
	assert.Equal(t, "user1", userID)
	assert.Equal(t, session.SourceOrganic, source)
	assert.Equal(t, sess.StartTime.UnixMilli(), startMs)
	assert.Equal(t, sess.EndTime.UnixMilli(), endMs)
	assert.Equal(t, 2, pvCount)
	assert.Equal(t, 2, evCount)

	var timeSpentMs int64
	var depth int
	err = store.conn.QueryRowContext(ctx,
		`SELECT time_spent_ms, scroll_depth FROM page_views WHERE session_id = ? AND seq = 0`, sess.ID).
		Scan(&timeSpentMs, &depth)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), timeSpentMs)
	assert.Equal(t, 80, depth)

	// The scroll interaction carries no coordinates; its columns are NULL.
	var x, y *int
	err = store.conn.QueryRowContext(ctx,
		`SELECT x, y FROM interactions WHERE session_id = ? AND seq = 1`, sess.ID).Scan(&x, &y)
	require.NoError(t, err)
	assert.Nil(t, x)
	assert.Nil(t, y)
}

func TestArchiveSessionReplacesExistingRows(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := closedSession()
	require.NoError(t, store.ArchiveSession(ctx, sess))
	require.NoError(t, store.ArchiveSession(ctx, sess))

	count, err := store.ArchivedSessionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestArchiveSessionRefusesOpenSession(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := closedSession()
	sess.EndTime = nil
	require.Error(t, store.ArchiveSession(ctx, sess))

	count, err := store.ArchivedSessionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
