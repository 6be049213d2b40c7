package services

import (
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/behavior"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/interfaces"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
)

// EngagementAnalyticsService is the read-only rollup surface for dashboards.
// It implements interfaces.EngagementReader.
type EngagementAnalyticsService struct {
	cacheManager *manager.Manager
	clock        Clock
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewEngagementAnalyticsService creates the analytics rollup service
func NewEngagementAnalyticsService(cacheManager *manager.Manager, clock Clock, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EngagementAnalyticsService {
	return &EngagementAnalyticsService{
		cacheManager: cacheManager,
		clock:        orWallClock(clock),
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

var _ interfaces.EngagementReader = (*EngagementAnalyticsService)(nil)

// GetBehaviorProfile returns the cached behavior profile for a user
func (s *EngagementAnalyticsService) GetBehaviorProfile(userID string) (*behavior.BehaviorProfile, bool) {
	return s.cacheManager.Profiles.GetBehavior(userID)
}

// GetPersonalizedContent returns the cached personalization profile and
// content payload for a user
func (s *EngagementAnalyticsService) GetPersonalizedContent(userID string) (*behavior.PersonalizationProfile, *behavior.PersonalizedContent, bool) {
	return s.cacheManager.Profiles.GetPersonalization(userID)
}

// GetHeatmapSnapshot returns a read-only copy of the click aggregate
func (s *EngagementAnalyticsService) GetHeatmapSnapshot() map[string]int {
	return s.cacheManager.Heatmap.Snapshot()
}

// GetPerformancePrediction returns the latest prediction, nil before any
// profile has been analyzed
func (s *EngagementAnalyticsService) GetPerformancePrediction() *behavior.PerformancePrediction {
	return s.cacheManager.Profiles.GetPrediction()
}

// GetEngagementAnalytics assembles the dashboard rollup
func (s *EngagementAnalyticsService) GetEngagementAnalytics() *behavior.EngagementAnalytics {
	marker := s.perfTracker.StartOperation("analytics_dashboard_rollup")
	defer marker.Complete()

	now := s.clock()
	started, closed, closedDuration, sources := s.cacheManager.Sessions.Tallies()

	totalDuration := closedDuration
	activeIDs := s.cacheManager.Sessions.ActiveUserIDs()
	for _, userID := range activeIDs {
		if sess, ok := s.cacheManager.Sessions.GetActive(userID); ok {
			totalDuration += sess.Duration(now)
		}
	}

	avgDuration := time.Duration(0)
	if sessionCount := closed + len(activeIDs); sessionCount > 0 {
		avgDuration = totalDuration / time.Duration(sessionCount)
	}

	bounced, totalProfiles := s.cacheManager.Profiles.BounceStats()
	bounceRate := 0.0
	if totalProfiles > 0 {
		bounceRate = float64(bounced) / float64(totalProfiles)
	}

	rollup := &behavior.EngagementAnalytics{
		TotalSessions:          started,
		ActiveSessions:         len(activeIDs),
		AvgSessionDuration:     avgDuration,
		BounceRate:             bounceRate,
		OrphanedEvents:         s.cacheManager.Sessions.OrphanedEvents(),
		TrafficSources:         sources,
		HeatmapData:            s.cacheManager.Heatmap.Snapshot(),
		PerformancePredictions: s.cacheManager.Profiles.GetPrediction(),
		GeneratedAt:            now,
	}

	marker.SetSuccess(true)
	return rollup
}
