package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
)

// fakeClock is a settable clock shared by all services in a test env
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

// seqIDProvider yields deterministic session ids
type seqIDProvider struct {
	mu sync.Mutex
	n  int
}

func (p *seqIDProvider) NewID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	return fmt.Sprintf("sess-%04d", p.n)
}

// recordingArchiver captures archived sessions for assertions
type recordingArchiver struct {
	mu       sync.Mutex
	archived []*session.Session
}

func (a *recordingArchiver) ArchiveSession(_ context.Context, sess *session.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.archived = append(a.archived, sess.Clone())
	return nil
}

func (a *recordingArchiver) Close() error { return nil }

func (a *recordingArchiver) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.archived)
}

// testEnv bundles a fully wired in-memory engine for tests
type testEnv struct {
	clock        *fakeClock
	ids          *seqIDProvider
	cacheManager *manager.Manager
	analyzer     *BehaviorAnalysisService
	personalizer *PersonalizationService
	predictor    *PredictionService
	analytics    *EngagementAnalyticsService
	recorder     *RecorderService
	scheduler    *AnalysisScheduler
	sessions     *SessionService
	archiver     *recordingArchiver
	cancel       context.CancelFunc
}

func newTestEnv() *testEnv {
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: true,
		JSONFormat:      true,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	if err != nil {
		panic(err)
	}

	clock := newFakeClock()
	ids := &seqIDProvider{}
	archiver := &recordingArchiver{}
	perfTracker := performance.NewTracker(nil)
	cacheManager := manager.NewManager(10, logger)

	analyzer := NewBehaviorAnalysisService(cacheManager, clock.Now, logger, perfTracker)
	personalizer := NewPersonalizationService(cacheManager, clock.Now, logger, perfTracker)
	predictor := NewPredictionService(cacheManager, clock.Now, logger, perfTracker)
	analytics := NewEngagementAnalyticsService(cacheManager, clock.Now, logger, perfTracker)
	recorder := NewRecorderService(cacheManager, clock.Now, logger, perfTracker)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := NewAnalysisScheduler(ctx, cacheManager, analyzer, personalizer, predictor, nil, time.Hour, logger)

	sessions := NewSessionService(cacheManager, ids, analyzer, personalizer, predictor,
		scheduler, archiver, nil, clock.Now, logger, perfTracker)

	return &testEnv{
		clock:        clock,
		ids:          ids,
		cacheManager: cacheManager,
		analyzer:     analyzer,
		personalizer: personalizer,
		predictor:    predictor,
		analytics:    analytics,
		recorder:     recorder,
		scheduler:    scheduler,
		sessions:     sessions,
		archiver:     archiver,
		cancel:       cancel,
	}
}

func (env *testEnv) teardown() {
	env.scheduler.Shutdown()
	env.cancel()
}
