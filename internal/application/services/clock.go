// Package services contains the application service layer orchestrating
// engagement tracking, analysis, and personalization.
package services

import "time"

// Clock supplies the current time. Services take a Clock so tests can pin
// time deterministically; pass nil for the wall clock.
type Clock func() time.Time

func orWallClock(clock Clock) Clock {
	if clock == nil {
		return time.Now
	}
	return clock
}
