package handlers

import (
	"net/http"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/interfaces"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// AnalyticsHandlers handles the read-only engagement rollup endpoints
type AnalyticsHandlers struct {
	reader      interfaces.EngagementReader
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAnalyticsHandlers creates engagement read handlers
func NewAnalyticsHandlers(reader interfaces.EngagementReader, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AnalyticsHandlers {
	return &AnalyticsHandlers{
		reader:      reader,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetBehaviorProfile handles GET /api/v1/engagement/behavior/:userId
func (h *AnalyticsHandlers) GetBehaviorProfile(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_get_behavior")
	defer marker.Complete()

	userID := c.Param("userId")
	profile, found := h.reader.GetBehaviorProfile(userID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no behavior profile for user"})
		marker.SetSuccess(true)
		return
	}

	c.JSON(http.StatusOK, profile)
	marker.SetSuccess(true)
}

// GetPersonalization handles GET /api/v1/engagement/personalization/:userId
func (h *AnalyticsHandlers) GetPersonalization(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_get_personalization")
	defer marker.Complete()

	userID := c.Param("userId")
	profile, content, found := h.reader.GetPersonalizedContent(userID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no personalization for user"})
		marker.SetSuccess(true)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": profile,
		"content": content,
	})
	marker.SetSuccess(true)
}

// GetHeatmap handles GET /api/v1/engagement/heatmap
func (h *AnalyticsHandlers) GetHeatmap(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_get_heatmap")
	defer marker.Complete()

	c.JSON(http.StatusOK, gin.H{"heatmap": h.reader.GetHeatmapSnapshot()})
	marker.SetSuccess(true)
}

// GetPrediction handles GET /api/v1/engagement/prediction. The prediction is
// null until at least one behavior profile exists.
func (h *AnalyticsHandlers) GetPrediction(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_get_prediction")
	defer marker.Complete()

	c.JSON(http.StatusOK, gin.H{"prediction": h.reader.GetPerformancePrediction()})
	marker.SetSuccess(true)
}

// GetPerformanceMetrics handles GET /api/v1/engagement/performance, the
// operational view of the engine itself
func (h *AnalyticsHandlers) GetPerformanceMetrics(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_get_performance")
	defer marker.Complete()

	c.JSON(http.StatusOK, gin.H{
		"overall":  h.perfTracker.GetOverallStats(),
		"active":   h.perfTracker.GetActiveOperations(),
		"recent":   h.perfTracker.GetRecentMetrics(time.Hour),
		"sessions": h.perfTracker.GetOperationStats("session"),
		"events":   h.perfTracker.GetOperationStats("events"),
		"http":     h.perfTracker.GetOperationStats("http"),
	})
	marker.SetSuccess(true)
}

// GetEngagementAnalytics handles GET /api/v1/engagement/analytics
func (h *AnalyticsHandlers) GetEngagementAnalytics(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_get_analytics")
	defer marker.Complete()

	c.JSON(http.StatusOK, h.reader.GetEngagementAnalytics())
	marker.SetSuccess(true)
}
