package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeMondayMornings(t *testing.T) {
	zone := time.FixedZone("", 2*3600)
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, zone)

	var ts []time.Time
	for i := 0; i < 10; i++ {
		ts = append(ts, start.AddDate(0, 0, 7*i))
	}

	r := Analyze(ts)
	assert.Equal(t, map[time.Weekday]float64{time.Monday: 1}, r.Share)
	assert.Equal(t, map[time.Weekday]Bounds{time.Monday: {Lower: 32400, Upper: 0}}, r.Bounds)
}

func TestAnalyzeUsesOwnZone(t *testing.T) {
	// Sunday 23:30 in UTC-5 is Monday 04:30 UTC.
	ts := time.Date(2024, 1, 7, 23, 30, 0, 0, time.FixedZone("", -5*3600))

	r := Analyze([]time.Time{ts})
	require.Contains(t, r.Share, time.Sunday)
	assert.NotContains(t, r.Share, time.Monday)
	assert.Equal(t, Bounds{Lower: 0, Upper: 23*3600 + 30*60}, r.Bounds[time.Sunday])
}

func TestAnalyzeBuckets(t *testing.T) {
	utc := time.UTC
	ts := []time.Time{
		time.Date(2024, 1, 2, 8, 0, 0, 0, utc),
		time.Date(2024, 1, 2, 10, 0, 0, 0, utc),
		time.Date(2024, 1, 2, 12, 59, 0, 0, utc),
		time.Date(2024, 1, 2, 13, 0, 0, 0, utc),
		time.Date(2024, 1, 2, 19, 0, 0, 0, utc),
		time.Date(2024, 1, 6, 15, 0, 0, 0, utc),
	}

	r := Analyze(ts)

	assert.InDelta(t, 5.0/6, r.Share[time.Tuesday], 1e-12)
	assert.InDelta(t, 1.0/6, r.Share[time.Saturday], 1e-12)
	assert.Len(t, r.Share, 2)

	var total float64
	for _, v := range r.Share {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-12)

	tue := r.Bounds[time.Tuesday]
	assert.InDelta(t, float64(8*3600+10*3600+12*3600+59*60)/3, tue.Lower, 1e-9)
	assert.InDelta(t, float64(13*3600+19*3600)/2, tue.Upper, 1e-9)
	assert.Equal(t, Bounds{Lower: 0, Upper: 15 * 3600}, r.Bounds[time.Saturday])
}

func TestAnalyzeEmpty(t *testing.T) {
	r := Analyze(nil)
	assert.Empty(t, r.Share)
	assert.Empty(t, r.Bounds)
}
