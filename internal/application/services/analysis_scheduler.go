package services

import (
	"context"
	"sync"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/interfaces"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
)

// AnalysisScheduler owns the periodic re-analysis tasks, one cancellable
// goroutine per active session. Tasks are cancelled on session end and on
// engine shutdown; no ticker survives teardown.
type AnalysisScheduler struct {
	cacheManager *manager.Manager
	analyzer     *BehaviorAnalysisService
	personalizer *PersonalizationService
	predictor    *PredictionService
	broadcaster  interfaces.LiveBroadcaster
	interval     time.Duration
	logger       *logging.ChanneledLogger

	baseCtx    context.Context
	cancelBase context.CancelFunc
	mu         sync.Mutex
	tasks      map[string]context.CancelFunc
	wg         sync.WaitGroup
}

// NewAnalysisScheduler creates the scheduler. broadcaster may be nil.
func NewAnalysisScheduler(ctx context.Context, cacheManager *manager.Manager, analyzer *BehaviorAnalysisService, personalizer *PersonalizationService, predictor *PredictionService, broadcaster interfaces.LiveBroadcaster, interval time.Duration, logger *logging.ChanneledLogger) *AnalysisScheduler {
	baseCtx, cancelBase := context.WithCancel(ctx)
	return &AnalysisScheduler{
		cacheManager: cacheManager,
		analyzer:     analyzer,
		personalizer: personalizer,
		predictor:    predictor,
		broadcaster:  broadcaster,
		interval:     interval,
		logger:       logger,
		baseCtx:      baseCtx,
		cancelBase:   cancelBase,
		tasks:        make(map[string]context.CancelFunc),
	}
}

// Schedule starts the periodic analysis task for a user's active session.
// An existing task for the same user is cancelled first.
func (s *AnalysisScheduler) Schedule(userID string) {
	s.mu.Lock()
	if cancel, exists := s.tasks[userID]; exists {
		cancel()
	}
	taskCtx, cancel := context.WithCancel(s.baseCtx)
	s.tasks[userID] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(taskCtx, userID)

	s.logger.WithUser(logging.ChannelAnalytics, userID).Debug("Analysis task scheduled", "interval", s.interval)
}

// Cancel stops the analysis task for a user, if any
func (s *AnalysisScheduler) Cancel(userID string) {
	s.mu.Lock()
	cancel, exists := s.tasks[userID]
	if exists {
		delete(s.tasks, userID)
	}
	s.mu.Unlock()

	if exists {
		cancel()
		s.logger.WithUser(logging.ChannelAnalytics, userID).Debug("Analysis task cancelled")
	}
}

// ActiveTasks returns the number of scheduled tasks
func (s *AnalysisScheduler) ActiveTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Shutdown cancels all tasks and waits for their goroutines to exit
func (s *AnalysisScheduler) Shutdown() {
	s.cancelBase()

	s.mu.Lock()
	s.tasks = make(map[string]context.CancelFunc)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Shutdown().Info("Analysis scheduler stopped")
}

func (s *AnalysisScheduler) run(ctx context.Context, userID string) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sess, ok := s.cacheManager.Sessions.GetActive(userID)
			if !ok {
				// Session ended without an explicit cancel; stop ticking.
				s.Cancel(userID)
				return
			}

			profile := s.analyzer.Analyze(sess)
			s.personalizer.Personalize(sess, profile)
			s.predictor.Refresh()
			s.broadcast(userID, profile.EngagementScore)
		}
	}
}

func (s *AnalysisScheduler) broadcast(userID string, score float64) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastEngagement(map[string]any{
		"type":           "engagement_update",
		"userId":         userID,
		"score":          score,
		"activeSessions": s.cacheManager.Sessions.ActiveCount(),
	})
}
