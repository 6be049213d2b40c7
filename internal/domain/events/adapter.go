package events

// Adapter is the inbound port host applications implement against. Each hook
// translates a UI signal into session and interaction records for the current
// user. Implementations must treat an empty current user as "no tracking" and
// never propagate errors back into the host flow.
type Adapter interface {
	// OnNavigate records a page view for the current user.
	OnNavigate(path, title string)

	// OnClick records a click with viewport coordinates and the clicked
	// element's text or identifier.
	OnClick(element string, coords *Coordinates, text string)

	// OnScroll records the deepest observed scroll depth in percent.
	OnScroll(depth int)

	// OnFormSubmit records a form submission.
	OnFormSubmit(form string)

	// OnQuickAction records a named shortcut action.
	OnQuickAction(name string)
}
