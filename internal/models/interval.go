package models

import (
	"fmt"
	"strconv"
	"strings"
)

// minutesPerDay bounds interval endpoints; "24:00" is a valid end of day.
const minutesPerDay = 24 * 60

// TimeInterval is a clock range within a single day, stored as minutes since
// midnight. Invariant: 0 <= StartMinute < EndMinute <= 1440.
type TimeInterval struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// ParseClock converts an "HH:MM" 24-hour string into minutes since midnight.
// The minute field must be exactly two digits; a single-digit hour is allowed.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || !twoDigits(parts[1]) {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if hour < 0 || hour > 24 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	total := hour*60 + minute
	if total > minutesPerDay {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return total, nil
}

// NewInterval builds a TimeInterval from "HH:MM" start and end strings,
// rejecting malformed input and empty or inverted ranges.
func NewInterval(start, end string) (TimeInterval, error) {
	startMinute, err := ParseClock(start)
	if err != nil {
		return TimeInterval{}, err
	}
	endMinute, err := ParseClock(end)
	if err != nil {
		return TimeInterval{}, err
	}
	if startMinute >= endMinute {
		return TimeInterval{}, fmt.Errorf("start %q must be before end %q", start, end)
	}
	return TimeInterval{StartMinute: startMinute, EndMinute: endMinute}, nil
}

// Overlaps reports whether the two intervals share any time. The comparison
// is half-open: intervals that merely touch do not overlap.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.StartMinute < other.EndMinute && i.EndMinute > other.StartMinute
}

// DurationHours returns the interval length in fractional hours.
func (i TimeInterval) DurationHours() float64 {
	return float64(i.EndMinute-i.StartMinute) / 60
}

// StartClock renders the start as "HH:MM".
func (i TimeInterval) StartClock() string {
	return FormatClock(i.StartMinute)
}

// EndClock renders the end as "HH:MM".
func (i TimeInterval) EndClock() string {
	return FormatClock(i.EndMinute)
}

// String renders the interval as "HH:MM-HH:MM".
func (i TimeInterval) String() string {
	return i.StartClock() + "-" + i.EndClock()
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func twoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}
