// Package handlers provides HTTP handlers for the engagement API.
package handlers

import (
	"net/http"

	"github.com/PulsePath/pulsetrack-go/internal/application/services"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// SessionHandlers handles session lifecycle endpoints
type SessionHandlers struct {
	sessionService *services.SessionService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewSessionHandlers creates session lifecycle handlers
func NewSessionHandlers(sessionService *services.SessionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionHandlers {
	return &SessionHandlers{
		sessionService: sessionService,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

type startSessionRequest struct {
	UserID string `json:"userId"`
	Source string `json:"source"`
}

type endSessionRequest struct {
	UserID string `json:"userId"`
}

// PostStartSession handles POST /api/v1/sessions/start.
// Tracking is best-effort; the response is always 200 so host flows are
// never interrupted by the analytics path.
func (h *SessionHandlers) PostStartSession(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_session_start")
	defer marker.Complete()

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Session().Warn("Malformed session start request", "error", err)
		c.JSON(http.StatusOK, gin.H{"tracked": false})
		marker.SetSuccess(true)
		return
	}

	sessionID := h.sessionService.StartSession(req.UserID, req.Source)
	c.JSON(http.StatusOK, gin.H{
		"tracked":   sessionID != "",
		"sessionId": sessionID,
	})
	marker.SetSuccess(true)
}

// PostEndSession handles POST /api/v1/sessions/end. Idempotent.
func (h *SessionHandlers) PostEndSession(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_session_end")
	defer marker.Complete()

	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Session().Warn("Malformed session end request", "error", err)
		c.JSON(http.StatusOK, gin.H{"tracked": false})
		marker.SetSuccess(true)
		return
	}

	h.sessionService.EndSession(req.UserID)
	c.JSON(http.StatusOK, gin.H{"tracked": true})
	marker.SetSuccess(true)
}
