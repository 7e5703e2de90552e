// Package system provides a real clock implementation.
package system

import "time"

// Clock reports wall time in a fixed location. The report date is the
// calendar day in that location.
type Clock struct {
	loc *time.Location
}

// New creates a Clock in the host's local time zone.
func New() *Clock {
	return &Clock{loc: time.Local}
}

// NewIn creates a Clock in loc; nil means UTC.
func NewIn(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

// Now returns the current time.
func (c *Clock) Now() time.Time {
	if c == nil || c.loc == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.loc)
}
