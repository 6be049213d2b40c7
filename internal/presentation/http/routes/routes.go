// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/PulsePath/pulsetrack-go/internal/application/container"
	"github.com/PulsePath/pulsetrack-go/internal/presentation/http/handlers"
	"github.com/PulsePath/pulsetrack-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(c *container.Container) *gin.Engine {
	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	sessionHandlers := handlers.NewSessionHandlers(c.SessionService, c.Logger, c.PerfTracker)
	eventHandlers := handlers.NewEventHandlers(c.RecorderService, c.Logger, c.PerfTracker)
	analyticsHandlers := handlers.NewAnalyticsHandlers(c.AnalyticsService, c.Logger, c.PerfTracker)
	authHandlers := handlers.NewAuthHandlers(c.AuthService, c.Logger, c.PerfTracker)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{
			"status":      "ok",
			"cache":       c.CacheManager.GetStats(),
			"performance": c.PerfTracker.GetOverallStats(),
		})
	})

	api := r.Group("/api/v1")
	{
		sessions := api.Group("/sessions")
		{
			sessions.POST("/start", sessionHandlers.PostStartSession)
			sessions.POST("/end", sessionHandlers.PostEndSession)
		}

		events := api.Group("/events")
		{
			events.POST("/pageview", eventHandlers.PostPageView)
			events.POST("/interaction", eventHandlers.PostInteraction)
		}

		api.POST("/auth/login", authHandlers.PostLogin)

		engagement := api.Group("/engagement")
		{
			engagement.GET("/behavior/:userId", analyticsHandlers.GetBehaviorProfile)
			engagement.GET("/personalization/:userId", analyticsHandlers.GetPersonalization)
			engagement.GET("/heatmap", analyticsHandlers.GetHeatmap)
			engagement.GET("/prediction", analyticsHandlers.GetPrediction)

			// Dashboard rollup and operational metrics require a token
			engagement.GET("/analytics",
				middleware.DashboardAuthMiddleware(c.AuthService),
				analyticsHandlers.GetEngagementAnalytics)
			engagement.GET("/performance",
				middleware.DashboardAuthMiddleware(c.AuthService),
				analyticsHandlers.GetPerformanceMetrics)

			if c.Broadcaster != nil {
				liveHandlers := handlers.NewLiveHandlers(c.Broadcaster, c.Logger)
				engagement.GET("/live", liveHandlers.GetLiveFeed)
			}
		}
	}

	return r
}
