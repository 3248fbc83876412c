// Package activity summarises on which weekdays, and between which local
// times, an account tends to commit.
package activity

import (
	"time"

	"github.com/gnomegl/githunt/internal/utils"
)

// Bounds are mean seconds since local midnight of the morning-side (hour <= 12)
// and evening-side commits of one weekday. An empty side is 0.
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Report only has entries for weekdays that appear in the input.
type Report struct {
	Share  map[time.Weekday]float64
	Bounds map[time.Weekday]Bounds
}

// Week lists weekdays in report order.
var Week = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

type bucket struct {
	sum   float64
	count int
}

func (b bucket) mean() float64 {
	if b.count == 0 {
		return 0
	}
	return b.sum / float64(b.count)
}

// Analyze groups timestamps by weekday in their own zone.
func Analyze(timestamps []time.Time) *Report {
	r := &Report{
		Share:  make(map[time.Weekday]float64),
		Bounds: make(map[time.Weekday]Bounds),
	}
	if len(timestamps) == 0 {
		return r
	}

	counts := make(map[time.Weekday]int)
	lower := make(map[time.Weekday]bucket)
	upper := make(map[time.Weekday]bucket)

	for _, ts := range timestamps {
		day := ts.Weekday()
		counts[day]++

		secs := float64(utils.SecondsSinceMidnight(ts))
		if ts.Hour() <= 12 {
			b := lower[day]
			b.sum += secs
			b.count++
			lower[day] = b
		} else {
			b := upper[day]
			b.sum += secs
			b.count++
			upper[day] = b
		}
	}

	total := float64(len(timestamps))
	for day, n := range counts {
		r.Share[day] = float64(n) / total
		r.Bounds[day] = Bounds{Lower: lower[day].mean(), Upper: upper[day].mean()}
	}
	return r
}
