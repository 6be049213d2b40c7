package stores

import (
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/behavior"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/types"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
)

// maxScoreHistory bounds the analysis-order score log. The predictor only
// reads a small trailing window, so the bound just prevents unbounded growth.
const maxScoreHistory = 1000

// ProfileStore implements derived profile caching operations
type ProfileStore struct {
	cache  *types.ProfileCache
	logger *logging.ChanneledLogger
}

// NewProfileStore creates a new profile cache store
func NewProfileStore(logger *logging.ChanneledLogger) *ProfileStore {
	if logger != nil {
		logger.Cache().Info("Initializing profile cache store")
	}
	return &ProfileStore{
		cache: &types.ProfileCache{
			Behavior:        make(map[string]*behavior.BehaviorProfile),
			Personalization: make(map[string]*behavior.PersonalizationProfile),
			Content:         make(map[string]*behavior.PersonalizedContent),
			LastUpdated:     time.Now().UTC(),
		},
		logger: logger,
	}
}

// =============================================================================
// Behavior Profile Operations
// =============================================================================

// SetBehavior caches a behavior profile and appends its score to the
// analysis-order history
func (ps *ProfileStore) SetBehavior(profile *behavior.BehaviorProfile) {
	start := time.Now()
	ps.cache.Mu.Lock()
	defer ps.cache.Mu.Unlock()

	ps.cache.Behavior[profile.UserID] = profile
	ps.cache.ScoreHistory = append(ps.cache.ScoreHistory, profile.EngagementScore)
	if len(ps.cache.ScoreHistory) > maxScoreHistory {
		ps.cache.ScoreHistory = ps.cache.ScoreHistory[len(ps.cache.ScoreHistory)-maxScoreHistory:]
	}
	ps.cache.LastUpdated = time.Now().UTC()

	if ps.logger != nil {
		ps.logger.Cache().Debug("Cache operation", "operation", "set", "type", "behavior", "userId", profile.UserID, "score", profile.EngagementScore, "duration", time.Since(start))
	}
}

// GetBehavior returns the cached behavior profile for a user
func (ps *ProfileStore) GetBehavior(userID string) (*behavior.BehaviorProfile, bool) {
	start := time.Now()
	ps.cache.Mu.RLock()
	defer ps.cache.Mu.RUnlock()

	profile, found := ps.cache.Behavior[userID]
	if ps.logger != nil {
		ps.logger.Cache().Debug("Cache operation", "operation", "get", "type", "behavior", "userId", userID, "hit", found, "duration", time.Since(start))
	}
	if !found {
		return nil, false
	}
	p := *profile
	return &p, true
}

// =============================================================================
// Personalization Operations
// =============================================================================

// SetPersonalization caches a personalization profile with its content payload
func (ps *ProfileStore) SetPersonalization(profile *behavior.PersonalizationProfile, content *behavior.PersonalizedContent) {
	start := time.Now()
	ps.cache.Mu.Lock()
	defer ps.cache.Mu.Unlock()

	ps.cache.Personalization[profile.UserID] = profile
	ps.cache.Content[profile.UserID] = content
	ps.cache.LastUpdated = time.Now().UTC()

	if ps.logger != nil {
		ps.logger.Cache().Debug("Cache operation", "operation", "set", "type", "personalization", "userId", profile.UserID, "level", profile.EngagementLevel, "duration", time.Since(start))
	}
}

// GetPersonalization returns the cached personalization profile and content
func (ps *ProfileStore) GetPersonalization(userID string) (*behavior.PersonalizationProfile, *behavior.PersonalizedContent, bool) {
	start := time.Now()
	ps.cache.Mu.RLock()
	defer ps.cache.Mu.RUnlock()

	profile, found := ps.cache.Personalization[userID]
	content, contentFound := ps.cache.Content[userID]
	if ps.logger != nil {
		ps.logger.Cache().Debug("Cache operation", "operation", "get", "type", "personalization", "userId", userID, "hit", found, "duration", time.Since(start))
	}
	if !found || !contentFound {
		return nil, nil, false
	}

	p := *profile
	c := *content
	c.RecommendedPages = append([]string(nil), content.RecommendedPages...)
	c.SuggestedActions = append([]string(nil), content.SuggestedActions...)
	return &p, &c, true
}

// =============================================================================
// Score History and Prediction Operations
// =============================================================================

// ProfileCount returns the number of cached behavior profiles
func (ps *ProfileStore) ProfileCount() int {
	ps.cache.Mu.RLock()
	defer ps.cache.Mu.RUnlock()
	return len(ps.cache.Behavior)
}

// MeanScore returns the mean engagement score over all cached profiles
func (ps *ProfileStore) MeanScore() float64 {
	ps.cache.Mu.RLock()
	defer ps.cache.Mu.RUnlock()

	if len(ps.cache.Behavior) == 0 {
		return 0
	}
	var sum float64
	for _, profile := range ps.cache.Behavior {
		sum += profile.EngagementScore
	}
	return sum / float64(len(ps.cache.Behavior))
}

// RecentScores returns up to n most recent scores in analysis order
func (ps *ProfileStore) RecentScores(n int) []float64 {
	ps.cache.Mu.RLock()
	defer ps.cache.Mu.RUnlock()

	history := ps.cache.ScoreHistory
	if len(history) > n {
		history = history[len(history)-n:]
	}
	return append([]float64(nil), history...)
}

// BounceStats returns bounced and total profile counts
func (ps *ProfileStore) BounceStats() (bounced, total int) {
	ps.cache.Mu.RLock()
	defer ps.cache.Mu.RUnlock()

	for _, profile := range ps.cache.Behavior {
		if profile.Bounced {
			bounced++
		}
	}
	return bounced, len(ps.cache.Behavior)
}

// SetPrediction caches the latest performance prediction
func (ps *ProfileStore) SetPrediction(prediction *behavior.PerformancePrediction) {
	ps.cache.Mu.Lock()
	defer ps.cache.Mu.Unlock()
	ps.cache.Prediction = prediction
	ps.cache.LastUpdated = time.Now().UTC()
}

// GetPrediction returns the cached performance prediction, nil when no
// profiles have been analyzed yet
func (ps *ProfileStore) GetPrediction() *behavior.PerformancePrediction {
	ps.cache.Mu.RLock()
	defer ps.cache.Mu.RUnlock()

	if ps.cache.Prediction == nil {
		return nil
	}
	p := *ps.cache.Prediction
	return &p
}
