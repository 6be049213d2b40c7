package services

import (
	"strconv"

	"github.com/PulsePath/pulsetrack-go/internal/domain/events"
)

// CurrentUserFunc resolves the current authenticated user. Identity is owned
// by the host application; an empty result means "no tracking".
type CurrentUserFunc func() string

// EventAdapter normalizes host UI signals into recorder calls. It implements
// events.Adapter.
type EventAdapter struct {
	currentUser CurrentUserFunc
	recorder    *RecorderService
	clock       Clock
}

// NewEventAdapter creates the inbound event adapter
func NewEventAdapter(currentUser CurrentUserFunc, recorder *RecorderService, clock Clock) *EventAdapter {
	return &EventAdapter{
		currentUser: currentUser,
		recorder:    recorder,
		clock:       orWallClock(clock),
	}
}

var _ events.Adapter = (*EventAdapter)(nil)

// OnNavigate records a page view for the current user
func (a *EventAdapter) OnNavigate(path, title string) {
	userID := a.currentUser()
	if userID == "" {
		return
	}
	a.recorder.RecordPageView(userID, PageViewInput{Path: path, Title: title})
}

// OnClick records a click with its viewport coordinates
func (a *EventAdapter) OnClick(element string, coords *events.Coordinates, text string) {
	userID := a.currentUser()
	if userID == "" {
		return
	}
	a.recorder.RecordInteraction(userID, events.InteractionEvent{
		Type:        events.TypeClick,
		Element:     element,
		Coordinates: coords,
		Value:       text,
		Timestamp:   a.clock(),
	})
}

// OnScroll records the deepest observed scroll depth in percent
func (a *EventAdapter) OnScroll(depth int) {
	userID := a.currentUser()
	if userID == "" {
		return
	}
	a.recorder.RecordInteraction(userID, events.InteractionEvent{
		Type:      events.TypeScroll,
		Element:   "window",
		Value:     strconv.Itoa(depth),
		Timestamp: a.clock(),
	})
}

// OnFormSubmit records a form submission
func (a *EventAdapter) OnFormSubmit(form string) {
	userID := a.currentUser()
	if userID == "" {
		return
	}
	a.recorder.RecordInteraction(userID, events.InteractionEvent{
		Type:      events.TypeFormSubmit,
		Element:   form,
		Timestamp: a.clock(),
	})
}

// OnQuickAction records a named shortcut action
func (a *EventAdapter) OnQuickAction(name string) {
	userID := a.currentUser()
	if userID == "" {
		return
	}
	a.recorder.RecordInteraction(userID, events.InteractionEvent{
		Type:      events.TypeQuickAction,
		Element:   name,
		Value:     name,
		Timestamp: a.clock(),
	})
}
