// Package interfaces defines the contracts between the engagement engine's
// application services and its infrastructure adapters.
package interfaces

import (
	"context"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/behavior"
	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
)

// EngagementReader is the read-only rollup surface consumed by the
// presentation layer
type EngagementReader interface {
	GetBehaviorProfile(userID string) (*behavior.BehaviorProfile, bool)
	GetPersonalizedContent(userID string) (*behavior.PersonalizationProfile, *behavior.PersonalizedContent, bool)
	GetHeatmapSnapshot() map[string]int
	GetPerformancePrediction() *behavior.PerformancePrediction
	GetEngagementAnalytics() *behavior.EngagementAnalytics
}

// SessionArchiver persists closed sessions. Archiving is best-effort; the
// engine logs failures and moves on.
type SessionArchiver interface {
	ArchiveSession(ctx context.Context, sess *session.Session) error
	Close() error
}

// LiveBroadcaster pushes engagement state updates to connected dashboard
// clients
type LiveBroadcaster interface {
	BroadcastEngagement(payload map[string]any)
}
