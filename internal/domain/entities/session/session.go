// Package session defines the session aggregate tracked by the engine.
package session

import (
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/domain/events"
)

// Traffic source attribution values
const (
	SourceOrganic  = "organic"
	SourceSocial   = "social"
	SourceDirect   = "direct"
	SourceReferral = "referral"
	SourceEmail    = "email"
)

// PageView is one visited page within a session. TimeSpent is zero until the
// view is finalized by the next navigation or by session end; finalization
// replaces the slice element with a new value rather than mutating a shared
// pointer.
type PageView struct {
	Page             string        `json:"page"`
	Title            string        `json:"title"`
	Timestamp        time.Time     `json:"timestamp"`
	TimeSpent        time.Duration `json:"timeSpent"`
	ScrollDepth      int           `json:"scrollDepth"`
	InteractionCount int           `json:"interactionCount"`
}

// Session is the per-user engagement aggregate. At most one active session
// exists per user.
type Session struct {
	ID           string                    `json:"id"`
	UserID       string                    `json:"userId"`
	StartTime    time.Time                 `json:"startTime"`
	EndTime      *time.Time                `json:"endTime,omitempty"`
	Source       string                    `json:"source"`
	PageViews    []PageView                `json:"pageViews"`
	Interactions []events.InteractionEvent `json:"interactions"`
	IsActive     bool                      `json:"isActive"`
}

// NormalizeSource maps unknown attribution values to direct
func NormalizeSource(source string) string {
	switch source {
	case SourceOrganic, SourceSocial, SourceDirect, SourceReferral, SourceEmail:
		return source
	}
	return SourceDirect
}

// Duration returns elapsed time since start, using EndTime when closed
func (s *Session) Duration(now time.Time) time.Duration {
	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return now.Sub(s.StartTime)
}

// TotalDwell sums finalized page view dwell time
func (s *Session) TotalDwell() time.Duration {
	var total time.Duration
	for _, pv := range s.PageViews {
		total += pv.TimeSpent
	}
	return total
}

// Clone returns a deep copy safe to hand outside the store lock
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	if s.EndTime != nil {
		end := *s.EndTime
		clone.EndTime = &end
	}
	clone.PageViews = make([]PageView, len(s.PageViews))
	copy(clone.PageViews, s.PageViews)
	clone.Interactions = make([]events.InteractionEvent, len(s.Interactions))
	for i, ev := range s.Interactions {
		if ev.Coordinates != nil {
			coords := *ev.Coordinates
			ev.Coordinates = &coords
		}
		clone.Interactions[i] = ev
	}
	return &clone
}
