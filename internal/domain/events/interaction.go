// Package events defines the interaction event model and the inbound port
// through which host applications feed engagement signals into the engine.
package events

import "time"

// Interaction event types
const (
	TypeClick       = "click"
	TypeScroll      = "scroll"
	TypeFormSubmit  = "form_submit"
	TypePageTime    = "page_time"
	TypeQuickAction = "quick_action"
)

// Coordinates is a viewport position attached to click events
type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InteractionEvent is a single user interaction within a session. Events are
// append-only once recorded.
type InteractionEvent struct {
	Type        string       `json:"type"`
	Element     string       `json:"element"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Value       string       `json:"value,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// IsValidType reports whether t is a recognized interaction type
func IsValidType(t string) bool {
	switch t {
	case TypeClick, TypeScroll, TypeFormSubmit, TypePageTime, TypeQuickAction:
		return true
	}
	return false
}
