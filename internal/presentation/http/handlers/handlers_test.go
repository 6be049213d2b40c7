package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/application/services"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/security"
	"github.com/PulsePath/pulsetrack-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct horse battery staple"

type testStack struct {
	router       *gin.Engine
	cacheManager *manager.Manager
	scheduler    *services.AnalysisScheduler
	cancel       context.CancelFunc
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: true,
		JSONFormat:      true,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   make(map[logging.Channel]slog.Level),
	})
	require.NoError(t, err)

	perfTracker := performance.NewTracker(nil)
	cacheManager := manager.NewManager(10, logger)

	analyzer := services.NewBehaviorAnalysisService(cacheManager, nil, logger, perfTracker)
	personalizer := services.NewPersonalizationService(cacheManager, nil, logger, perfTracker)
	predictor := services.NewPredictionService(cacheManager, nil, logger, perfTracker)
	analytics := services.NewEngagementAnalyticsService(cacheManager, nil, logger, perfTracker)
	recorder := services.NewRecorderService(cacheManager, nil, logger, perfTracker)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler := services.NewAnalysisScheduler(ctx, cacheManager, analyzer, personalizer, predictor, nil, time.Hour, logger)

	sessions := services.NewSessionService(cacheManager, security.NewULIDProvider(),
		analyzer, personalizer, predictor, scheduler, nil, nil, nil, logger, perfTracker)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	auth := services.NewAuthService("test-jwt-secret", string(hash), time.Hour, logger)

	router := gin.New()
	api := router.Group("/api/v1")
	sessionHandlers := NewSessionHandlers(sessions, logger, perfTracker)
	eventHandlers := NewEventHandlers(recorder, logger, perfTracker)
	analyticsHandlers := NewAnalyticsHandlers(analytics, logger, perfTracker)
	authHandlers := NewAuthHandlers(auth, logger, perfTracker)

	api.POST("/sessions/start", sessionHandlers.PostStartSession)
	api.POST("/sessions/end", sessionHandlers.PostEndSession)
	api.POST("/events/pageview", eventHandlers.PostPageView)
	api.POST("/events/interaction", eventHandlers.PostInteraction)
	api.POST("/auth/login", authHandlers.PostLogin)
	api.GET("/engagement/behavior/:userId", analyticsHandlers.GetBehaviorProfile)
	api.GET("/engagement/personalization/:userId", analyticsHandlers.GetPersonalization)
	api.GET("/engagement/heatmap", analyticsHandlers.GetHeatmap)
	api.GET("/engagement/prediction", analyticsHandlers.GetPrediction)
	api.GET("/engagement/analytics", middleware.DashboardAuthMiddleware(auth), analyticsHandlers.GetEngagementAnalytics)
	api.GET("/engagement/performance", middleware.DashboardAuthMiddleware(auth), analyticsHandlers.GetPerformanceMetrics)

	return &testStack{router: router, cacheManager: cacheManager, scheduler: scheduler, cancel: cancel}
}

func (s *testStack) teardown() {
	s.scheduler.Shutdown()
	s.cancel()
}

func (s *testStack) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestSessionEndpoints(t *testing.T) {
	stack := newTestStack(t)
	defer stack.teardown()

	w := stack.do("POST", "/api/v1/sessions/start", `{"userId":"user1","source":"direct"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tracked":true`)
	assert.Contains(t, w.Body.String(), `"sessionId"`)
	assert.Equal(t, 1, stack.cacheManager.Sessions.ActiveCount())

	w = stack.do("POST", "/api/v1/sessions/end", `{"userId":"user1"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, stack.cacheManager.Sessions.ActiveCount())
}

func TestSessionStartWithoutIdentityNotTracked(t *testing.T) {
	stack := newTestStack(t)
	defer stack.teardown()

	w := stack.do("POST", "/api/v1/sessions/start", `{"source":"direct"}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tracked":false`)
}

func TestMalformedBodiesNeverFailTracking(t *testing.T) {
	stack := newTestStack(t)
	defer stack.teardown()

	for _, path := range []string{
		"/api/v1/sessions/start",
		"/api/v1/sessions/end",
		"/api/v1/events/pageview",
		"/api/v1/events/interaction",
	} {
		w := stack.do("POST", path, `{not json`, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"tracked":false`, path)
	}
}

func TestEventEndpointsFeedEngine(t *testing.T) {
	stack := newTestStack(t)
	defer stack.teardown()

	stack.do("POST", "/api/v1/sessions/start", `{"userId":"user1","source":"organic"}`, nil)
	stack.do("POST", "/api/v1/events/pageview", `{"userId":"user1","path":"/home","title":"Home"}`, nil)
	stack.do("POST", "/api/v1/events/interaction", `{"userId":"user1","type":"click","element":"cta","x":25,"y":35}`, nil)

	sess, found := stack.cacheManager.Sessions.GetActive("user1")
	require.True(t, found)
	assert.Len(t, sess.PageViews, 1)
	assert.Len(t, sess.Interactions, 1)

	w := stack.do("GET", "/api/v1/engagement/heatmap", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"20-30":1`)
}

func TestBehaviorEndpointNotFoundThenFound(t *testing.T) {
	stack := newTestStack(t)
	defer stack.teardown()

	w := stack.do("GET", "/api/v1/engagement/behavior/user1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	stack.do("POST", "/api/v1/sessions/start", `{"userId":"user1","source":"direct"}`, nil)
	stack.do("POST", "/api/v1/events/pageview", `{"userId":"user1","path":"/home","title":"Home"}`, nil)
	stack.do("POST", "/api/v1/sessions/end", `{"userId":"user1"}`, nil)

	w = stack.do("GET", "/api/v1/engagement/behavior/user1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pageViewCount":1`)

	w = stack.do("GET", "/api/v1/engagement/personalization/user1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"recommendedPages"`)
}

func TestPredictionEndpointNullSentinel(t *testing.T) {
	stack := newTestStack(t)
	defer stack.teardown()

	w := stack.do("GET", "/api/v1/engagement/prediction", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"prediction":null`)
}

func TestAnalyticsRequiresToken(t *testing.T) {
	stack := newTestStack(t)
	defer stack.teardown()

	w := stack.do("GET", "/api/v1/engagement/analytics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = stack.do("GET", "/api/v1/engagement/analytics", "", map[string]string{"Authorization": "Bearer bogus"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = stack.do("POST", "/api/v1/auth/login", `{"password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = stack.do("POST", "/api/v1/auth/login", `{"password":"`+testPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var token string
	body := w.Body.String()
	start := strings.Index(body, `"token":"`) + len(`"token":"`)
	end := strings.Index(body[start:], `"`)
	token = body[start : start+end]

	w = stack.do("GET", "/api/v1/engagement/analytics", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalSessions"`)
}

func TestPerformanceEndpointRequiresTokenAndReportsOperations(t *testing.T) {
	stack := newTestStack(t)
	defer stack.teardown()

	w := stack.do("GET", "/api/v1/engagement/performance", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	stack.do("POST", "/api/v1/sessions/start", `{"userId":"user1","source":"direct"}`, nil)

	w = stack.do("POST", "/api/v1/auth/login", `{"password":"`+testPassword+`"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	start := strings.Index(body, `"token":"`) + len(`"token":"`)
	token := body[start : start+strings.Index(body[start:], `"`)]

	w = stack.do("GET", "/api/v1/engagement/performance", "", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"overall"`)
	assert.Contains(t, w.Body.String(), `"trackerUptime"`)
	assert.Contains(t, w.Body.String(), `"session_start"`)
}
