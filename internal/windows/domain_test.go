package windows

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowHalfOpenInterval(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: start.Add(time.Hour)}

	// Inclusive at start, exclusive at end.
	assert.True(t, w.Contains(start))
	assert.True(t, w.Contains(start.Add(59*time.Minute)))
	assert.False(t, w.Contains(start.Add(time.Hour)))
	assert.False(t, w.Contains(start.Add(-time.Nanosecond)))
}

func TestUnrestrictedSchedulePermitsAnyInstant(t *testing.T) {
	s := Unrestricted()
	assert.False(t, s.IsRestricted())
	assert.True(t, s.Permits(time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, s.Permits(time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRestrictedToEmptyDegradesToUnrestricted(t *testing.T) {
	s := RestrictedTo(nil)
	assert.False(t, s.IsRestricted())
	assert.True(t, s.Permits(time.Now().UTC()))
}

func TestRestrictedSchedulePermitsUnionOfWindows(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := RestrictedTo([]Window{
		{Start: base, End: base.Add(time.Hour)},
		{Start: base.Add(30 * time.Minute), End: base.Add(2 * time.Hour)}, // overlaps the first
		{Start: base.Add(5 * time.Hour), End: base.Add(6 * time.Hour)},
	})

	assert.True(t, s.IsRestricted())
	assert.True(t, s.Permits(base.Add(45*time.Minute)))
	assert.True(t, s.Permits(base.Add(90*time.Minute)))
	assert.True(t, s.Permits(base.Add(5*time.Hour)))
	assert.False(t, s.Permits(base.Add(3*time.Hour)))
	assert.False(t, s.Permits(base.Add(6*time.Hour)))
}
