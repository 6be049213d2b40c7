// Package types defines the in-memory cache structures for engagement state.
package types

import (
	"sync"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/behavior"
	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
)

// SessionCache holds live sessions and closed-session tallies
type SessionCache struct {
	// Active sessions by userId; at most one per user
	Active map[string]*session.Session

	// Closed-session tallies, monotonically increasing
	StartedCount   int
	ClosedCount    int
	ClosedDuration time.Duration
	TrafficSources map[string]int

	// Events that arrived without an active session
	OrphanedEvents int64

	LastUpdated time.Time
	Mu          sync.RWMutex // Exported for access
}

// ProfileCache holds derived behavior and personalization state
type ProfileCache struct {
	Behavior        map[string]*behavior.BehaviorProfile
	Personalization map[string]*behavior.PersonalizationProfile
	Content         map[string]*behavior.PersonalizedContent

	// Engagement scores in analysis order, newest last. Feeds the
	// conversion trend window of the predictor.
	ScoreHistory []float64

	Prediction *behavior.PerformancePrediction

	LastUpdated time.Time
	Mu          sync.RWMutex // Exported for access
}

// HeatmapCache accumulates click counts per discretized grid cell.
// Counts only grow; the aggregate is never reset.
type HeatmapCache struct {
	Counts map[string]int // "x-y" grid key -> click count

	LastUpdated time.Time
	Mu          sync.RWMutex // Exported for access
}
