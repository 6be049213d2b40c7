package services

import (
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/behavior"
	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/PulsePath/pulsetrack-go/pkg/config"
)

// Engagement score weights. The score is a weighted sum normalized against
// the combined weight ceiling.
const (
	pageViewWeightStep    = 10.0
	pageViewWeightCap     = 100.0
	interactionWeightStep = 5.0
	interactionWeightCap  = 50.0
	durationWeightStep    = 2.0
	durationWeightCap     = 30.0
	totalWeightCeiling    = pageViewWeightCap + interactionWeightCap + durationWeightCap
)

// BehaviorAnalysisService derives behavior profiles from session snapshots
type BehaviorAnalysisService struct {
	cacheManager *manager.Manager
	clock        Clock
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewBehaviorAnalysisService creates the behavior analysis service
func NewBehaviorAnalysisService(cacheManager *manager.Manager, clock Clock, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *BehaviorAnalysisService {
	return &BehaviorAnalysisService{
		cacheManager: cacheManager,
		clock:        orWallClock(clock),
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// Analyze computes a behavior profile from a session snapshot and caches it
// against the user. The computation is pure over the snapshot; caching is the
// only side effect.
func (s *BehaviorAnalysisService) Analyze(sess *session.Session) *behavior.BehaviorProfile {
	marker := s.perfTracker.StartOperation("analytics_analyze_session")
	defer marker.Complete()

	profile := s.ComputeProfile(sess)
	s.cacheManager.Profiles.SetBehavior(profile)

	s.logger.Analytics().Debug("Session analyzed",
		"userId", sess.UserID,
		"sessionId", sess.ID,
		"score", profile.EngagementScore,
		"bounced", profile.Bounced,
		"pageViews", profile.PageViewCount)

	marker.AddMetadata("score", profile.EngagementScore)
	marker.SetSuccess(true)
	return profile
}

// ComputeProfile derives a profile without touching the cache
func (s *BehaviorAnalysisService) ComputeProfile(sess *session.Session) *behavior.BehaviorProfile {
	now := s.clock()
	pageViews := len(sess.PageViews)
	interactions := len(sess.Interactions)
	totalDwell := sess.TotalDwell()
	duration := sess.Duration(now)

	avgTimePerPage := time.Duration(0)
	if pageViews > 0 {
		avgTimePerPage = totalDwell / time.Duration(pageViews)
	}

	interactionRate := float64(interactions) / float64(max(1, pageViews))

	bounced := pageViews == 1 && totalDwell < config.BounceThreshold

	return &behavior.BehaviorProfile{
		UserID:          sess.UserID,
		SessionDuration: duration,
		PageViewCount:   pageViews,
		AvgTimePerPage:  avgTimePerPage,
		InteractionRate: interactionRate,
		Bounced:         bounced,
		EngagementScore: engagementScore(pageViews, interactions, duration),
		AnalyzedAt:      now,
	}
}

// engagementScore is the weighted sum of page view, interaction, and
// duration contributions, normalized to [0, 100]
func engagementScore(pageViews, interactions int, duration time.Duration) float64 {
	timeWeight := minFloat(float64(pageViews)*pageViewWeightStep, pageViewWeightCap)
	interactionWeight := minFloat(float64(interactions)*interactionWeightStep, interactionWeightCap)
	durationWeight := minFloat(duration.Minutes()*durationWeightStep, durationWeightCap)

	score := (timeWeight + interactionWeight + durationWeight) / totalWeightCeiling * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
