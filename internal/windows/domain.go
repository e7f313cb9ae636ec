package windows

import "time"

// Window is a half-open interval [Start, End) scoped to one principal.
type Window struct {
	ID          int64
	PrincipalID int64
	Start       time.Time
	End         time.Time
}

// Contains reports whether now falls inside the half-open interval.
func (w Window) Contains(now time.Time) bool {
	return !now.Before(w.Start) && now.Before(w.End)
}

// Schedule is the effective access policy for one principal. A principal with
// no configured windows is unrestricted; with one or more windows, access is
// limited to their union. The distinction is carried explicitly rather than as
// an empty-slice convention.
type Schedule struct {
	restricted bool
	windows    []Window
}

// Unrestricted returns the schedule that permits access at any instant.
func Unrestricted() Schedule {
	return Schedule{}
}

// RestrictedTo returns a schedule limited to the union of the given windows.
// An empty slice degrades to Unrestricted.
func RestrictedTo(ws []Window) Schedule {
	if len(ws) == 0 {
		return Unrestricted()
	}
	return Schedule{restricted: true, windows: ws}
}

// IsRestricted reports whether any window applies.
func (s Schedule) IsRestricted() bool {
	return s.restricted
}

// Windows returns the configured windows, nil when unrestricted.
func (s Schedule) Windows() []Window {
	return s.windows
}

// Permits reports whether an attempt at now is inside the permitted set.
// Overlapping windows are legal and simply widen that set.
func (s Schedule) Permits(now time.Time) bool {
	if !s.restricted {
		return true
	}
	for _, w := range s.windows {
		if w.Contains(now) {
			return true
		}
	}
	return false
}
