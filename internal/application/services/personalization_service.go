package services

import (
	"strings"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/behavior"
	"github.com/PulsePath/pulsetrack-go/internal/domain/entities/session"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/performance"
)

// Page path categories
const (
	CategoryMedicalServices = "medical_services"
	CategoryConsultations   = "consultations"
	CategoryHealthRecords   = "health_records"
	CategoryAppointments    = "appointments"
	CategoryHealthAnalytics = "health_analytics"
	CategoryGeneral         = "general"
)

// categoryPatterns maps path fragments to categories, checked in order
var categoryPatterns = []struct {
	fragment string
	category string
}{
	{"department", CategoryMedicalServices},
	{"consultation", CategoryConsultations},
	{"record", CategoryHealthRecords},
	{"appointment", CategoryAppointments},
	{"analytics", CategoryHealthAnalytics},
}

// recommendedPages is the deterministic destination table per category
var recommendedPages = map[string][]string{
	CategoryMedicalServices: {"/departments", "/consultation/new", "/health-analytics"},
	CategoryConsultations:   {"/consultation/new", "/appointments", "/health-records"},
	CategoryHealthRecords:   {"/health-records", "/appointments", "/consultation/new"},
	CategoryAppointments:    {"/appointments", "/consultation/new", "/departments"},
	CategoryHealthAnalytics: {"/health-analytics", "/health-records", "/departments"},
	CategoryGeneral:         {"/", "/departments", "/consultation/new"},
}

// tierMessages is the fixed welcome message per engagement tier
var tierMessages = map[string]string{
	behavior.EngagementHigh:   "Welcome back! Your health journey is on track.",
	behavior.EngagementMedium: "Good to see you again. Let's continue where you left off.",
	behavior.EngagementLow:    "Welcome! Take a moment to explore what we offer.",
}

// Suggested action hints. Rules are independent; several may fire at once.
const (
	ActionCompleteProfile    = "complete your health profile"
	ActionExploreDepartments = "explore our departments"
	ActionBookConsultation   = "book a consultation"
)

// PersonalizationService maps behavior profiles to personalization output
type PersonalizationService struct {
	cacheManager *manager.Manager
	clock        Clock
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

// NewPersonalizationService creates the personalization service
func NewPersonalizationService(cacheManager *manager.Manager, clock Clock, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PersonalizationService {
	return &PersonalizationService{
		cacheManager: cacheManager,
		clock:        orWallClock(clock),
		logger:       logger,
		perfTracker:  perfTracker,
	}
}

// Personalize derives the personalization profile and content payload from a
// session snapshot and its behavior profile, then caches both
func (s *PersonalizationService) Personalize(sess *session.Session, profile *behavior.BehaviorProfile) (*behavior.PersonalizationProfile, *behavior.PersonalizedContent) {
	marker := s.perfTracker.StartOperation("personalization_refresh")
	defer marker.Complete()

	category := preferredCategory(sess.PageViews)
	level := engagementLevel(profile.EngagementScore)

	personalization := &behavior.PersonalizationProfile{
		UserID:            sess.UserID,
		PreferredCategory: category,
		EngagementLevel:   level,
		SessionPattern:    sessionPattern(profile.SessionDuration),
		InteractionStyle:  interactionStyle(profile.InteractionRate),
		UpdatedAt:         s.clock(),
	}

	content := &behavior.PersonalizedContent{
		RecommendedPages:    recommendations(category),
		SuggestedActions:    suggestedActions(profile),
		PersonalizedMessage: tierMessages[level],
		ContentPriority:     contentPriority(level),
	}

	s.cacheManager.Profiles.SetPersonalization(personalization, content)

	s.logger.Personalization().Debug("Personalization refreshed",
		"userId", sess.UserID,
		"category", category,
		"level", level,
		"pattern", personalization.SessionPattern,
		"style", personalization.InteractionStyle)

	marker.SetSuccess(true)
	return personalization, content
}

// preferredCategory picks the most frequent category across page views.
// Ties resolve to the category seen first.
func preferredCategory(pageViews []session.PageView) string {
	if len(pageViews) == 0 {
		return CategoryGeneral
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for i, pv := range pageViews {
		category := categorize(pv.Page)
		counts[category]++
		if _, seen := firstSeen[category]; !seen {
			firstSeen[category] = i
		}
	}

	best := ""
	for category, count := range counts {
		if best == "" {
			best = category
			continue
		}
		if count > counts[best] || (count == counts[best] && firstSeen[category] < firstSeen[best]) {
			best = category
		}
	}
	return best
}

// categorize maps a page path to its coarse category
func categorize(path string) string {
	lower := strings.ToLower(path)
	for _, pattern := range categoryPatterns {
		if strings.Contains(lower, pattern.fragment) {
			return pattern.category
		}
	}
	return CategoryGeneral
}

func engagementLevel(score float64) string {
	switch {
	case score > 70:
		return behavior.EngagementHigh
	case score > 40:
		return behavior.EngagementMedium
	default:
		return behavior.EngagementLow
	}
}

func sessionPattern(duration time.Duration) string {
	switch {
	case duration < 60*time.Second:
		return behavior.PatternShort
	case duration < 300*time.Second:
		return behavior.PatternMedium
	default:
		return behavior.PatternLong
	}
}

func interactionStyle(rate float64) string {
	switch {
	case rate < 0.5:
		return behavior.StylePassive
	case rate < 2:
		return behavior.StyleModerate
	default:
		return behavior.StyleActive
	}
}

func recommendations(category string) []string {
	if pages, ok := recommendedPages[category]; ok {
		return append([]string(nil), pages...)
	}
	return append([]string(nil), recommendedPages[CategoryGeneral]...)
}

func suggestedActions(profile *behavior.BehaviorProfile) []string {
	var actions []string
	if profile.EngagementScore < 50 {
		actions = append(actions, ActionCompleteProfile)
	}
	if profile.PageViewCount < 3 {
		actions = append(actions, ActionExploreDepartments)
	}
	if profile.InteractionRate < 1 {
		actions = append(actions, ActionBookConsultation)
	}
	return actions
}

func contentPriority(level string) int {
	switch level {
	case behavior.EngagementHigh:
		return behavior.PriorityHigh
	case behavior.EngagementMedium:
		return behavior.PriorityMedium
	default:
		return behavior.PriorityLow
	}
}
