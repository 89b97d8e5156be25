package models

import (
	"fmt"
	"strings"
)

// DayOfWeek identifies a timetable day. Equality is exact enum match; there
// are no calendar-date semantics.
type DayOfWeek string

const (
	Monday    DayOfWeek = "MONDAY"
	Tuesday   DayOfWeek = "TUESDAY"
	Wednesday DayOfWeek = "WEDNESDAY"
	Thursday  DayOfWeek = "THURSDAY"
	Friday    DayOfWeek = "FRIDAY"
	Saturday  DayOfWeek = "SATURDAY"
	Sunday    DayOfWeek = "SUNDAY"
)

// Week lists the days in timetable order.
var Week = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseDay normalises a day name to its enum value.
func ParseDay(s string) (DayOfWeek, error) {
	day := DayOfWeek(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Week {
		if day == known {
			return day, nil
		}
	}
	return "", fmt.Errorf("unknown day of week %q", s)
}
