// Package behavior defines the derived engagement profiles computed from
// session snapshots.
package behavior

import "time"

// Engagement level tiers
const (
	EngagementHigh   = "high"
	EngagementMedium = "medium"
	EngagementLow    = "low"
)

// Session pattern classifications
const (
	PatternShort  = "short"
	PatternMedium = "medium"
	PatternLong   = "long"
)

// Interaction style classifications
const (
	StylePassive  = "passive"
	StyleModerate = "moderate"
	StyleActive   = "active"
)

// Content priority values, high first
const (
	PriorityHigh   = 1
	PriorityMedium = 2
	PriorityLow    = 3
)

// BehaviorProfile is a pure derivation over a session snapshot
type BehaviorProfile struct {
	UserID          string        `json:"userId"`
	SessionDuration time.Duration `json:"sessionDuration"`
	PageViewCount   int           `json:"pageViewCount"`
	AvgTimePerPage  time.Duration `json:"avgTimePerPage"`
	InteractionRate float64       `json:"interactionRate"`
	Bounced         bool          `json:"bounced"`
	EngagementScore float64       `json:"engagementScore"`
	AnalyzedAt      time.Time     `json:"analyzedAt"`
}

// PersonalizationProfile classifies a user's observed behavior
type PersonalizationProfile struct {
	UserID            string    `json:"userId"`
	PreferredCategory string    `json:"preferredCategory"`
	EngagementLevel   string    `json:"engagementLevel"`
	SessionPattern    string    `json:"sessionPattern"`
	InteractionStyle  string    `json:"interactionStyle"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// PersonalizedContent is the recommendation payload paired with a profile
type PersonalizedContent struct {
	RecommendedPages    []string `json:"recommendedPages"`
	SuggestedActions    []string `json:"suggestedActions"`
	PersonalizedMessage string   `json:"personalizedMessage"`
	ContentPriority     int      `json:"contentPriority"`
}

// HorizonPrediction is one forecast horizon of a performance prediction
type HorizonPrediction struct {
	ExpectedUsers      int     `json:"expectedUsers"`
	ExpectedEngagement float64 `json:"expectedEngagement"`
	ExpectedConversion float64 `json:"expectedConversion"`
	Confidence         float64 `json:"confidence"`
}

// PerformancePrediction forecasts growth across three horizons. Confidence
// strictly decreases with horizon length.
type PerformancePrediction struct {
	OneMonth    HorizonPrediction `json:"oneMonth"`
	OneYear     HorizonPrediction `json:"oneYear"`
	FiveYear    HorizonPrediction `json:"fiveYear"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// EngagementAnalytics is the read-only dashboard rollup
type EngagementAnalytics struct {
	TotalSessions          int                    `json:"totalSessions"`
	ActiveSessions         int                    `json:"activeSessions"`
	AvgSessionDuration     time.Duration          `json:"avgSessionDuration"`
	BounceRate             float64                `json:"bounceRate"`
	OrphanedEvents         int64                  `json:"orphanedEvents"`
	TrafficSources         map[string]int         `json:"trafficSources"`
	HeatmapData            map[string]int         `json:"heatmapData"`
	PerformancePredictions *PerformancePrediction `json:"performancePredictions,omitempty"`
	GeneratedAt            time.Time              `json:"generatedAt"`
}
