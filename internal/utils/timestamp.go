package utils

import (
	"fmt"
	"time"
)

// SecondsSinceMidnight is measured on the timestamp's own wall clock.
func SecondsSinceMidnight(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

// FormatClock renders seconds since midnight as HH:MM.
func FormatClock(secs float64) string {
	s := int(secs)
	if s < 0 {
		s = 0
	}
	s %= 24 * 3600
	return fmt.Sprintf("%02d:%02d", s/3600, (s%3600)/60)
}

// MostActiveDay returns the weekday with the largest share, the earliest in
// the week on ties. ok is false for an empty map.
func MostActiveDay(share map[time.Weekday]float64) (day time.Weekday, ok bool) {
	best := -1.0
	for _, d := range []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
	} {
		if v, found := share[d]; found && v > best {
			best = v
			day = d
			ok = true
		}
	}
	return day, ok
}
