package engine

import (
	"fmt"
	"math"
)

// Work hours are fixed: stoppage time only counts between 08:00 and 18:00.
const (
	WorkDayStartMinute = 8 * 60
	WorkDayEndMinute   = 18 * 60
)

// TimeOfDay is a wall-clock time expressed as minutes from midnight.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ClipToWorkHours returns the billable duration in hours of a stoppage,
// counting only the portion inside the working window, at minute precision
// rounded to two decimal places. An interval entirely outside the window
// yields zero, which callers treat as "not billable", not as an error.
func ClipToWorkHours(start, end TimeOfDay) float64 {
	s := start
	if s < WorkDayStartMinute {
		s = WorkDayStartMinute
	}
	e := end
	if e > WorkDayEndMinute {
		e = WorkDayEndMinute
	}

	minutes := int(e) - int(s)
	if minutes <= 0 {
		return 0
	}
	return math.Round(float64(minutes)/60*100) / 100
}

// EndFromDuration resolves the end time for duration-mode input, so entries
// supplied as (start, duration) converge on the same clipping function as
// entries supplied as (start, end). The result is capped at midnight.
func EndFromDuration(start TimeOfDay, hours float64) TimeOfDay {
	end := int(start) + int(math.Round(hours*60))
	if end > 24*60 {
		end = 24 * 60
	}
	return TimeOfDay(end)
}

// Deduct takes a stoppage's duration out of the remaining daily budget,
// clamping at zero. It fails with ErrBudgetExceeded when the stoppage does
// not fit.
func Deduct(remaining, duration float64) (float64, error) {
	// Tolerate float noise so an exact-fit stoppage is not rejected.
	if duration > remaining+1e-9 {
		return remaining, fmt.Errorf("duration %.2fh, remaining %.2fh: %w", duration, remaining, ErrBudgetExceeded)
	}
	left := remaining - duration
	if left < 0 {
		left = 0
	}
	return math.Round(left*100) / 100, nil
}
