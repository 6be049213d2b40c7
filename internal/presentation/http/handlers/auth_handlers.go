package handlers

import (
	"errors"
	"net/http"

	"github.com/PulsePath/pulsetrack-go/internal/application/services"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// AuthHandlers handles dashboard authentication
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates dashboard auth handlers
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

// PostLogin handles POST /api/v1/auth/login
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	marker := h.perfTracker.StartOperation("http_auth_login")
	defer marker.Complete()

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		marker.SetSuccess(true)
		return
	}

	token, err := h.authService.Login(req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, services.ErrInvalidCredentials) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		marker.SetSuccess(true)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
	marker.SetSuccess(true)
}
