package handlers

import (
	"net/http"

	"github.com/PulsePath/pulsetrack-go/internal/application/services"
	"github.com/PulsePath/pulsetrack-go/internal/domain/events"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// EventHandlers handles event recording endpoints
type EventHandlers struct {
	recorderService *services.RecorderService
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

// NewEventHandlers creates event recording handlers
func NewEventHandlers(recorderService *services.RecorderService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EventHandlers {
	return &EventHandlers{
		recorderService: recorderService,
		logger:          logger,
		perfTracker:     perfTracker,
	}
}

type pageViewRequest struct {
	UserID   string `json:"userId"`
	Path     string `json:"path"`
	Title    string `json:"title"`
	Referrer string `json:"referrer"`
}

type interactionRequest struct {
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Element string `json:"element"`
	X       *int   `json:"x"`
	Y       *int   `json:"y"`
	Value   string `json:"value"`
}

// PostPageView handles POST /api/v1/events/pageview. Always answers 200;
// missing sessions are counted, not surfaced.
func (h *EventHandlers) PostPageView(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_record_pageview")
	defer marker.Complete()

	var req pageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Events().Warn("Malformed page view request", "error", err)
		c.JSON(http.StatusOK, gin.H{"tracked": false})
		marker.SetSuccess(true)
		return
	}

	h.recorderService.RecordPageView(req.UserID, services.PageViewInput{
		Path:     req.Path,
		Title:    req.Title,
		Referrer: req.Referrer,
	})
	c.JSON(http.StatusOK, gin.H{"tracked": true})
	marker.SetSuccess(true)
}

// PostInteraction handles POST /api/v1/events/interaction
func (h *EventHandlers) PostInteraction(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_record_interaction")
	defer marker.Complete()

	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Events().Warn("Malformed interaction request", "error", err)
		c.JSON(http.StatusOK, gin.H{"tracked": false})
		marker.SetSuccess(true)
		return
	}

	event := events.InteractionEvent{
		Type:    req.Type,
		Element: req.Element,
		Value:   req.Value,
	}
	if req.Type == events.TypeClick && req.X != nil && req.Y != nil {
		event.Coordinates = &events.Coordinates{X: *req.X, Y: *req.Y}
	}

	h.recorderService.RecordInteraction(req.UserID, event)
	c.JSON(http.StatusOK, gin.H{"tracked": true})
	marker.SetSuccess(true)
}
