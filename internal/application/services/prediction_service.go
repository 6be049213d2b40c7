package services

import (
	"math"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/behavior"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/PulsePath/pulsetrack-go/pkg/config"
)

// baseConversionRate anchors the conversion projection before the trend
// adjustment is applied, in percent
const baseConversionRate = 2.5

// PredictionService projects growth from the aggregate behavior profiles.
// The model is a coarse compounding-growth projection, not a statistical
// forecast.
type PredictionService struct {
	cacheManager *manager.Manager
	clock        Clock
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewPredictionService creates the prediction service
func NewPredictionService(cacheManager *manager.Manager, clock Clock, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PredictionService {
	return &PredictionService{
		cacheManager: cacheManager,
		clock:        orWallClock(clock),
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// Refresh recomputes the performance prediction and caches it. Returns nil
// when no behavior profiles exist yet; the nil sentinel means "no prediction"
// and is not an error.
func (s *PredictionService) Refresh() *behavior.PerformancePrediction {
	marker := s.perfTracker.StartOperation("analytics_predict")
	defer marker.Complete()

	if s.cacheManager.Profiles.ProfileCount() == 0 {
		marker.AddMetadata("profiles", 0)
		marker.SetSuccess(true)
		return nil
	}

	avgEngagement := s.cacheManager.Profiles.MeanScore()
	trend := s.conversionTrend()
	started, _, _, _ := s.cacheManager.Sessions.Tallies()

	prediction := &behavior.PerformancePrediction{
		OneMonth:    s.horizon(started, avgEngagement, trend, 1, config.OneMonthConfidence),
		OneYear:     s.horizon(started, avgEngagement, trend, 12, config.OneYearConfidence),
		FiveYear:    s.horizon(started, avgEngagement, trend, 60, config.FiveYearConfidence),
		GeneratedAt: s.clock(),
	}

	s.cacheManager.Profiles.SetPrediction(prediction)

	s.logger.Analytics().Debug("Prediction refreshed",
		"avgEngagement", avgEngagement,
		"trend", trend,
		"currentUsers", started)

	marker.SetSuccess(true)
	return prediction
}

// conversionTrend compares the trailing analysis window against the baseline
// score, normalized to [-0.5, 0.5]
func (s *PredictionService) conversionTrend() float64 {
	recent := s.cacheManager.Profiles.RecentScores(config.TrendWindowSize)
	if len(recent) == 0 {
		return 0
	}

	var sum float64
	for _, score := range recent {
		sum += score
	}
	mean := sum / float64(len(recent))

	trend := (mean - config.TrendBaselineScore) / 100
	if trend > 0.5 {
		return 0.5
	}
	if trend < -0.5 {
		return -0.5
	}
	return trend
}

// horizon projects one forecast horizon months out
func (s *PredictionService) horizon(currentUsers int, avgEngagement, trend float64, months int, confidence float64) behavior.HorizonPrediction {
	growth := math.Pow(config.MonthlyGrowthRate, float64(months))

	engagement := avgEngagement * (1 + trend)
	if engagement > 100 {
		engagement = 100
	}
	if engagement < 0 {
		engagement = 0
	}

	conversion := baseConversionRate * (1 + trend)
	if conversion < 0 {
		conversion = 0
	}

	return behavior.HorizonPrediction{
		ExpectedUsers:      int(math.Round(float64(currentUsers) * growth)),
		ExpectedEngagement: math.Round(engagement*100) / 100,
		ExpectedConversion: math.Round(conversion*100) / 100,
		Confidence:         confidence,
	}
}
