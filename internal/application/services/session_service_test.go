package services

import (
	"sync"
	"testing"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSessionAssignsIDAndSource(t *testing.T) {
	env := newTestEnv()
	defer env.teardown()

	sessionID := env.sessions.StartSession("user1", "social")
	assert.Equal(t, "sess-0001", sessionID)

	sess, found := env.cacheManager.Sessions.GetActive("user1")
	require.True(t, found)
	assert.Equal(t, "user1", sess.UserID)
	assert.Equal(t, session.SourceSocial, sess.Source)
	assert.True(t, sess.IsActive)
	assert.Nil(t, sess.EndTime)
	assert.Equal(t, 1, env.scheduler.ActiveTasks())
}

func TestStartSessionNormalizesUnknownSource(t *testing.T) {
	env := newTestEnv()
	defer env.teardown()

	env.sessions.StartSession("user1", "carrier-pigeon")
	sess, _ := env.cacheManager.Sessions.GetActive("user1")
	assert.Equal(t, session.SourceDirect, sess.Source)
}

func TestStartSessionWithoutIdentityIsDropped(t *testing.T) {
	env := newTestEnv()
	defer env.teardown()

	sessionID := env.sessions.StartSession("", "direct")
	assert.Empty(t, sessionID)
	assert.Equal(t, 0, env.cacheManager.Sessions.ActiveCount())
	assert.Equal(t, 0, env.scheduler.ActiveTasks())
}

func TestDoubleStartClosesStaleSession(t *testing.T) {
	env := newTestEnv()
	defer env.teardown()

	first := env.sessions.StartSession("user1", "direct")
	env.clock.Advance(2 * time.Minute)
	second := env.sessions.StartSession("user1", "email")

	assert.NotEqual(t, first, second)
	assert.Equal(t, 1, env.cacheManager.Sessions.ActiveCount())

	sess, _ := env.cacheManager.Sessions.GetActive("user1")
	assert.Equal(t, second, sess.ID)

	// The stale session went through the full end path.
	assert.Equal(t, 1, env.archiver.count())
	_, closed, _, _ := env.cacheManager.Sessions.Tallies()
	assert.Equal(t, 1, closed)
}

func TestConcurrentStartsKeepAccountingConsistent(t *testing.T) {
	env := newTestEnv()
	defer env.teardown()

	const starts = 64
	var wg sync.WaitGroup
	wg.Add(starts)
	for i := 0; i < starts; i++ {
		go func() {
			defer wg.Done()
			env.sessions.StartSession("user1", "direct")
		}()
	}
	wg.Wait()

	// Every start either stayed active or ran the full end path; no session
	// may be overwritten without being closed.
	started, closed, _, _ := env.cacheManager.Sessions.Tallies()
	active := env.cacheManager.Sessions.ActiveCount()
	assert.Equal(t, starts, started)
	assert.Equal(t, 1, active)
	assert.Equal(t, started, closed+active)
	assert.Equal(t, closed, env.archiver.count())
}

func TestConcurrentStartAndEndNeverLeakSessions(t *testing.T) {
	env := newTestEnv()
	defer env.teardown()

	const rounds = 32
	var wg sync.WaitGroup
	wg.Add(2 * rounds)
	for i := 0; i < rounds; i++ {
		go func() {
			defer wg.Done()
			env.sessions.StartSession("user1", "direct")
		}()
		go func() {
			defer wg.Done()
			env.sessions.EndSession("user1")
		}()
	}
	wg.Wait()

	started, closed, _, _ := env.cacheManager.Sessions.Tallies()
	active := env.cacheManager.Sessions.ActiveCount()
	assert.Equal(t, rounds, started)
	assert.Equal(t, started, closed+active)
	assert.LessOrEqual(t, active, 1)
}

func TestEndSessionIsIdempotent(t *testing.T) {
	env := newTestEnv()
	defer env.teardown()

	env.sessions.StartSession("user1", "direct")
	env.clock.Advance(time.Minute)

	env.sessions.EndSession("user1")
	profileAfterFirst, found := env.cacheManager.Profiles.GetBehavior("user1")
	require.True(t, found)
	_, closedAfterFirst, _, _ := env.cacheManager.Sessions.Tallies()

	env.sessions.EndSession("user1")
	profileAfterSecond, _ := env.cacheManager.Profiles.GetBehavior("user1")
	_, closedAfterSecond, _, _ := env.cacheManager.Sessions.Tallies()

	assert.Equal(t, profileAfterFirst, profileAfterSecond)
	assert.Equal(t, closedAfterFirst, closedAfterSecond)
	assert.Equal(t, 1, env.archiver.count())
}

func TestEndSessionRunsFinalAnalysisSynchronously(t *testing.T) {
	env := newTestEnv()
	defer env.teardown()

	env.sessions.StartSession("user1", "direct")
	env.recorder.RecordPageView("user1", PageViewInput{Path: "/consultation/a", Title: "Consultation"})
	env.clock.Advance(90 * time.Second)
	env.sessions.EndSession("user1")

	profile, found := env.cacheManager.Profiles.GetBehavior("user1")
	require.True(t, found)
	assert.Equal(t, 1, profile.PageViewCount)
	assert.Equal(t, 90*time.Second, profile.SessionDuration)

	_, content, found := env.cacheManager.Profiles.GetPersonalization("user1")
	require.True(t, found)
	assert.NotEmpty(t, content.PersonalizedMessage)

	assert.NotNil(t, env.cacheManager.Profiles.GetPrediction())
	assert.Equal(t, 0, env.scheduler.ActiveTasks())
}

func TestEndSessionFlushesOpenPageViewDwell(t *testing.T) {
	env := newTestEnv()
	defer env.teardown()

	env.sessions.StartSession("user1", "direct")
	env.recorder.RecordPageView("user1", PageViewInput{Path: "/home", Title: "Home"})
	env.clock.Advance(45 * time.Second)
	env.sessions.EndSession("user1")

	require.Equal(t, 1, env.archiver.count())
	archived := env.archiver.archived[0]
	require.Len(t, archived.PageViews, 1)
	assert.Equal(t, 45*time.Second, archived.PageViews[0].TimeSpent)
	assert.False(t, archived.IsActive)
	require.NotNil(t, archived.EndTime)
	assert.Equal(t, 45*time.Second, archived.EndTime.Sub(archived.StartTime))
}

func TestEndSessionSkipsSubThresholdDwell(t *testing.T) {
	env := newTestEnv()
	defer env.teardown()

	env.sessions.StartSession("user1", "direct")
	env.recorder.RecordPageView("user1", PageViewInput{Path: "/home", Title: "Home"})
	env.clock.Advance(500 * time.Millisecond)
	env.sessions.EndSession("user1")

	archived := env.archiver.archived[0]
	assert.Equal(t, time.Duration(0), archived.PageViews[0].TimeSpent)
}
