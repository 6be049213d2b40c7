package services

import (
	"strconv"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
	"github.com/PulsePath/pulsetrack-go/internal/domain/events"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/PulsePath/pulsetrack-go/pkg/config"
)

// PageViewInput carries a navigation notification into the recorder
type PageViewInput struct {
	Path     string `json:"path"`
	Title    string `json:"title"`
	Referrer string `json:"referrer,omitempty"`
}

// RecorderService appends page views and interactions to the active session.
// Events for users without an active session are dropped and counted, never
// surfaced as errors; engagement tracking must not disturb host flows.
type RecorderService struct {
	cacheManager *manager.Manager
	clock        Clock
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewRecorderService creates the interaction recorder
func NewRecorderService(cacheManager *manager.Manager, clock Clock, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RecorderService {
	return &RecorderService{
		cacheManager: cacheManager,
		clock:        orWallClock(clock),
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// RecordPageView opens a new page view, finalizing the dwell time of the
// previous one when it exceeds the minimum threshold. Micro-navigations
// below the threshold freeze at zero dwell.
func (s *RecorderService) RecordPageView(userID string, input PageViewInput) {
	marker := s.perfTracker.StartOperation("events_record_pageview")
	defer marker.Complete()

	now := s.clock()
	recorded := s.cacheManager.Sessions.Mutate(userID, func(sess *session.Session) {
		if n := len(sess.PageViews); n > 0 && sess.PageViews[n-1].TimeSpent == 0 {
			elapsed := now.Sub(sess.PageViews[n-1].Timestamp)
			if elapsed > config.MinDwellThreshold {
				finalized := sess.PageViews[n-1]
				finalized.TimeSpent = elapsed
				sess.PageViews[n-1] = finalized
			}
		}

		sess.PageViews = append(sess.PageViews, session.PageView{
			Page:      input.Path,
			Title:     input.Title,
			Timestamp: now,
		})
	})

	if !recorded {
		s.countOrphan("pageview", userID)
		marker.AddMetadata("orphaned", true)
		marker.SetSuccess(true)
		return
	}

	s.logger.Events().Debug("Page view recorded", "userId", userID, "path", input.Path)
	marker.SetSuccess(true)
}

// RecordInteraction appends an interaction to the active session's log in
// arrival order. Clicks carrying coordinates are also forwarded to the
// heatmap aggregate.
func (s *RecorderService) RecordInteraction(userID string, event events.InteractionEvent) {
	marker := s.perfTracker.StartOperation("events_record_interaction")
	defer marker.Complete()

	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	if !events.IsValidType(event.Type) {
		s.logger.Events().Warn("Unrecognized interaction type", "userId", userID, "type", event.Type)
	}

	recorded := s.cacheManager.Sessions.Mutate(userID, func(sess *session.Session) {
		sess.Interactions = append(sess.Interactions, event)

		if n := len(sess.PageViews); n > 0 {
			sess.PageViews[n-1].InteractionCount++
			if event.Type == events.TypeScroll {
				if depth, err := strconv.Atoi(event.Value); err == nil {
					sess.PageViews[n-1].ScrollDepth = clampPercent(depth)
				}
			}
		}
	})

	if !recorded {
		s.countOrphan("interaction", userID)
		marker.AddMetadata("orphaned", true)
		marker.SetSuccess(true)
		return
	}

	if event.Type == events.TypeClick && event.Coordinates != nil {
		s.cacheManager.Heatmap.RecordClick(event.Coordinates.X, event.Coordinates.Y)
	}

	s.logger.Events().Debug("Interaction recorded", "userId", userID, "type", event.Type, "element", event.Element)
	marker.SetSuccess(true)
}

func (s *RecorderService) countOrphan(kind, userID string) {
	s.cacheManager.Sessions.CountOrphanedEvent()
	s.logger.WithOperation(logging.ChannelEvents, "record_"+kind).Debug("Dropped event without active session", "userId", userID)
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
