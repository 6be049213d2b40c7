// Package container wires the engagement engine's singleton services.
package container

import (
	"context"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/application/services"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/interfaces"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/messaging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/persistence/archive"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/security"
	"github.com/PulsePath/pulsetrack-go/pkg/config"
)

// Container holds the engine's singleton services. One container is the one
// engagement engine instance per process.
type Container struct {
	Logger       *logging.ChanneledLogger
	PerfTracker  *performance.Tracker
	CacheManager *manager.Manager
	IDProvider   security.IDProvider

	Broadcaster *messaging.EngagementBroadcaster
	Archiver    interfaces.SessionArchiver

	BehaviorService        *services.BehaviorAnalysisService
	PersonalizationService *services.PersonalizationService
	PredictionService      *services.PredictionService
	AnalyticsService       *services.EngagementAnalyticsService
	RecorderService        *services.RecorderService
	Scheduler              *services.AnalysisScheduler
	SessionService         *services.SessionService
	AuthService            *services.AuthService
}

// New builds the fully wired container. ctx bounds the lifetime of the
// scheduler and broadcaster goroutines.
// perfCleanupInterval is the cadence of performance marker eviction
const perfCleanupInterval = 15 * time.Minute

func New(ctx context.Context, logger *logging.ChanneledLogger) (*Container, error) {
	perfTracker := performance.NewTracker(nil)
	go runPerfCleanup(ctx, perfTracker, logger)

	cacheManager := manager.NewManager(config.HeatmapGridSize, logger)

	c := &Container{
		Logger:       logger,
		PerfTracker:  perfTracker,
		CacheManager: cacheManager,
		IDProvider:   security.NewULIDProvider(),
	}

	if config.LiveFeedEnabled {
		c.Broadcaster = messaging.NewEngagementBroadcaster(cacheManager, config.MaxLiveFeedClients, logger)
		go c.Broadcaster.Run(ctx)
	}

	if config.ArchiveEnabled {
		store, err := archive.NewStore(logger)
		if err != nil {
			// Archiving is best-effort; the engine runs without it.
			logger.Archive().Error("Archive store unavailable, continuing without persistence", "error", err)
		} else {
			c.Archiver = store
		}
	}

	var broadcaster interfaces.LiveBroadcaster
	if c.Broadcaster != nil {
		broadcaster = c.Broadcaster
	}

	c.BehaviorService = services.NewBehaviorAnalysisService(cacheManager, nil, logger, perfTracker)
	c.PersonalizationService = services.NewPersonalizationService(cacheManager, nil, logger, perfTracker)
	c.PredictionService = services.NewPredictionService(cacheManager, nil, logger, perfTracker)
	c.AnalyticsService = services.NewEngagementAnalyticsService(cacheManager, nil, logger, perfTracker)
	c.RecorderService = services.NewRecorderService(cacheManager, nil, logger, perfTracker)

	c.Scheduler = services.NewAnalysisScheduler(ctx, cacheManager,
		c.BehaviorService, c.PersonalizationService, c.PredictionService,
		broadcaster, config.AnalysisInterval, logger)

	c.SessionService = services.NewSessionService(cacheManager, c.IDProvider,
		c.BehaviorService, c.PersonalizationService, c.PredictionService,
		c.Scheduler, c.Archiver, broadcaster, nil, logger, perfTracker)

	c.AuthService = services.NewAuthService(config.JWTSecret, config.DashboardPasswordHash, config.TokenLifetime, logger)

	return c, nil
}

// runPerfCleanup evicts expired performance markers until ctx is cancelled
func runPerfCleanup(ctx context.Context, tracker *performance.Tracker, logger *logging.ChanneledLogger) {
	ticker := time.NewTicker(perfCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tracker.Cleanup()
			logger.Perf().Debug("Performance marker cleanup complete")
		}
	}
}

// Shutdown tears the engine down: stops all analysis tasks and closes the
// archive connection
func (c *Container) Shutdown() {
	c.Scheduler.Shutdown()

	if c.Archiver != nil {
		if err := c.Archiver.Close(); err != nil {
			c.Logger.Shutdown().Error("Archive close failed", "error", err)
		}
	}

	c.Logger.Shutdown().Info("Container shut down")
}
