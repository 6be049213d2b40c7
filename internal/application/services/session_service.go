package services

import (
	"context"
	"sync"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/interfaces"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/security"
	"github.com/PulsePath/pulsetrack-go/pkg/config"
)

const archiveTimeout = 5 * time.Second

// SessionService owns the session lifecycle. It is the only component that
// mutates sessions; once closed, a session is an immutable historical record.
// Start and end for one user serialize through a per-user mutex so two
// concurrent starts cannot both pass the duplicate-session check.
type SessionService struct {
	cacheManager *manager.Manager
	ids          security.IDProvider
	analyzer     *BehaviorAnalysisService
	personalizer *PersonalizationService
	predictor    *PredictionService
	scheduler    *AnalysisScheduler
	archiver     interfaces.SessionArchiver
	broadcaster  interfaces.LiveBroadcaster
	clock        Clock
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker

	userLocks sync.Map
}

// NewSessionService creates the session lifecycle service. archiver and
// broadcaster may be nil.
func NewSessionService(cacheManager *manager.Manager, ids security.IDProvider, analyzer *BehaviorAnalysisService, personalizer *PersonalizationService, predictor *PredictionService, scheduler *AnalysisScheduler, archiver interfaces.SessionArchiver, broadcaster interfaces.LiveBroadcaster, clock Clock, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionService {
	return &SessionService{
		cacheManager: cacheManager,
		ids:          ids,
		analyzer:     analyzer,
		personalizer: personalizer,
		predictor:    predictor,
		scheduler:    scheduler,
		archiver:     archiver,
		broadcaster:  broadcaster,
		clock:        orWallClock(clock),
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// StartSession opens a new session for the user and schedules its periodic
// analysis. An empty userID means the caller has no authenticated identity;
// nothing is tracked and the returned id is empty. A still-active session
// for the same user is implicitly ended first.
func (s *SessionService) StartSession(userID, source string) string {
	marker := s.perfTracker.StartOperation("session_start")
	defer marker.Complete()

	if userID == "" {
		s.logger.Session().Warn("Session start without user identity, dropping")
		marker.AddMetadata("dropped", true)
		marker.SetSuccess(true)
		return ""
	}

	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	if _, exists := s.cacheManager.Sessions.GetActive(userID); exists {
		s.logger.Session().Warn("Session start while previous session still active, closing stale session", "userId", userID)
		s.closeActiveSession(userID)
	}

	sess := &session.Session{
		ID:        s.ids.NewID(),
		UserID:    userID,
		StartTime: s.clock(),
		Source:    session.NormalizeSource(source),
		IsActive:  true,
	}

	s.cacheManager.Sessions.PutActive(sess)
	s.scheduler.Schedule(userID)

	s.logger.Session().Info("Session started", "userId", userID, "sessionId", sess.ID, "source", sess.Source)

	s.broadcastState("session_started")
	marker.AddMetadata("sessionId", sess.ID)
	marker.SetSuccess(true)
	return sess.ID
}

// EndSession closes the user's active session: flushes pending dwell time,
// stamps the end time, cancels the periodic analysis task, and synchronously
// runs a final analyze and personalize pass so readers immediately see the
// latest profile. Calling it without an active session is a no-op.
func (s *SessionService) EndSession(userID string) {
	marker := s.perfTracker.StartOperation("session_end")
	defer marker.Complete()

	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	sess := s.closeActiveSession(userID)
	if sess == nil {
		marker.AddMetadata("noop", true)
		marker.SetSuccess(true)
		return
	}

	marker.AddMetadata("sessionId", sess.ID)
	marker.SetSuccess(true)
}

// lockUser returns the mutex serializing lifecycle operations for one user.
// Locks live for the process lifetime; user cardinality is bounded by the
// host application.
func (s *SessionService) lockUser(userID string) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// closeActiveSession runs the full end path for the user's active session
// and returns it, or nil when none is active. Callers hold the user lock.
func (s *SessionService) closeActiveSession(userID string) *session.Session {
	sess, found := s.cacheManager.Sessions.RemoveActive(userID)
	if !found {
		return nil
	}

	now := s.clock()
	flushOpenPageView(sess, now)

	end := now
	sess.EndTime = &end
	sess.IsActive = false

	s.scheduler.Cancel(userID)
	s.cacheManager.Sessions.RecordClosed(end.Sub(sess.StartTime))

	profile := s.analyzer.Analyze(sess)
	s.personalizer.Personalize(sess, profile)
	s.predictor.Refresh()

	s.archive(sess)

	s.logger.Session().Info("Session ended",
		"userId", userID,
		"sessionId", sess.ID,
		"duration", end.Sub(sess.StartTime),
		"pageViews", len(sess.PageViews),
		"interactions", len(sess.Interactions))

	s.broadcastState("session_ended")
	return sess
}

// flushOpenPageView finalizes the dwell time of the still-open page view.
// Dwell below the minimum threshold stays at zero, matching the
// micro-navigation rule of the recorder.
func flushOpenPageView(sess *session.Session, now time.Time) {
	if len(sess.PageViews) == 0 {
		return
	}
	last := len(sess.PageViews) - 1
	if sess.PageViews[last].TimeSpent != 0 {
		return
	}

	elapsed := now.Sub(sess.PageViews[last].Timestamp)
	if elapsed <= config.MinDwellThreshold {
		return
	}

	finalized := sess.PageViews[last]
	finalized.TimeSpent = elapsed
	sess.PageViews[last] = finalized
}

// archive persists the closed session, best-effort
func (s *SessionService) archive(sess *session.Session) {
	if s.archiver == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	if err := s.archiver.ArchiveSession(ctx, sess); err != nil {
		s.logger.LogError(logging.ChannelArchive, "session_archive", err, map[string]any{"sessionId": sess.ID})
	}
}

func (s *SessionService) broadcastState(event string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastEngagement(map[string]any{
		"type":           event,
		"activeSessions": s.cacheManager.Sessions.ActiveCount(),
	})
}
