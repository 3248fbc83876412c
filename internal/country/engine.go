// Package country ranks the countries a set of commit timestamps most likely
// came from.
package country

import (
	"math"
	"sort"
	"time"

	"github.com/gnomegl/githunt/internal/geo"
	"github.com/gnomegl/githunt/internal/timezone"
	"github.com/maypok86/otter/v2"
	"github.com/sirupsen/logrus"
)

const (
	wakeStart = 6
	wakeEnd   = 23

	matchWeight = 0.75
	wakeWeight  = 0.25

	localDivisor = 100.0

	// PlaceholderFlag stands in for a flag that could not be rendered.
	PlaceholderFlag = "🏳"
)

// Result is one ranked candidate. LocalProbability is AdjustedScore/100; it
// is a relative figure that may exceed 1 and does not sum to 1.
type Result struct {
	Code              string  `json:"code"`
	Name              string  `json:"name"`
	Flag              string  `json:"flag"`
	GlobalProbability float64 `json:"probability_global"`
	LocalProbability  float64 `json:"probability_local"`
	MatchFraction     float64 `json:"match_fraction"`
	WakeFraction      float64 `json:"wake_fraction"`
	ZoneCount         int     `json:"zone_count"`
	RawScore          float64 `json:"raw_score"`
	AdjustedScore     float64 `json:"adjusted_score"`
}

type Engine struct {
	resolver        *timezone.Resolver
	index           *timezone.CountryIndex
	lookup          geo.Lookup
	logger          logrus.FieldLogger
	populationPrior bool
}

type Option func(*Engine)

func WithPopulationPrior(enabled bool) Option {
	return func(e *Engine) {
		e.populationPrior = enabled
	}
}

func NewEngine(resolver *timezone.Resolver, index *timezone.CountryIndex, lookup geo.Lookup, logger logrus.FieldLogger, opts ...Option) *Engine {
	e := &Engine{
		resolver: resolver,
		index:    index,
		lookup:   lookup,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type pair struct {
	unixNano int64
	offset   int
}

type sample struct {
	instant time.Time
	zones   []string
}

// Infer returns up to topN candidates sorted by global probability. No
// timestamps, or no country reachable from any observed offset, yields an
// empty result.
func (e *Engine) Infer(timestamps []time.Time, topN int) []Result {
	if len(timestamps) == 0 {
		e.logger.Warn("No timestamps available for country detection")
		return nil
	}

	samples := e.resolveAll(timestamps)

	candidates := make(map[string]struct{})
	for _, s := range samples {
		for _, z := range s.zones {
			for _, code := range e.index.Countries(z) {
				candidates[code] = struct{}{}
			}
		}
	}
	if len(candidates) == 0 {
		e.logger.Warn("No countries matched any timestamps")
		return nil
	}

	hours := e.localHours(samples, candidates)

	results := make([]Result, 0, len(candidates))
	for code := range candidates {
		results = append(results, e.score(code, samples, hours))
	}

	normalize(results)
	for i := range results {
		results[i].LocalProbability = results[i].AdjustedScore / localDivisor
		results[i].Name, results[i].Flag = e.describe(results[i].Code)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].GlobalProbability != results[j].GlobalProbability {
			return results[i].GlobalProbability > results[j].GlobalProbability
		}
		return results[i].Code < results[j].Code
	})

	if topN < 0 {
		topN = 0
	}
	if topN < len(results) {
		results = results[:topN]
	}

	e.logger.WithField("candidates", len(candidates)).Debug("Country inference complete")
	return results
}

// resolveAll maps every timestamp to its candidate zones. The cache only
// lives for this call, so repeated (instant, offset) pairs are resolved once
// per run.
func (e *Engine) resolveAll(timestamps []time.Time) []sample {
	cache := otter.Must(&otter.Options[pair, []string]{
		MaximumSize:     len(timestamps),
		InitialCapacity: min(len(timestamps), 1024),
	})

	samples := make([]sample, 0, len(timestamps))
	for _, ts := range timestamps {
		ts = e.withOffset(ts)
		_, offset := ts.Zone()
		key := pair{unixNano: ts.UnixNano(), offset: offset}

		zones, ok := cache.GetIfPresent(key)
		if !ok {
			zones = e.resolver.Resolve(ts.UTC(), offset)
			cache.Set(key, zones)
			if len(zones) == 0 {
				e.logger.WithFields(logrus.Fields{"timestamp": ts, "offset": offset}).
					Trace("No timezone candidates for timestamp")
			}
		}
		samples = append(samples, sample{instant: ts, zones: zones})
	}

	e.logger.WithFields(logrus.Fields{
		"timestamps":   len(timestamps),
		"unique_pairs": cache.EstimatedSize(),
	}).Debug("Resolved timestamp offsets")
	return samples
}

// withOffset treats a timestamp carrying the process-local zone as naive:
// its wall clock is reinterpreted as UTC.
func (e *Engine) withOffset(ts time.Time) time.Time {
	if ts.Location() != time.Local {
		return ts
	}
	e.logger.WithField("timestamp", ts).Warn("Naive timestamp detected, assuming UTC")
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
}

// localHours computes, once per zone used by a candidate country, the local
// hour of every sample. -1 marks a zone that could not be loaded.
func (e *Engine) localHours(samples []sample, candidates map[string]struct{}) map[string][]int {
	hours := make(map[string][]int)
	for code := range candidates {
		for _, z := range e.index.Zones(code) {
			if _, done := hours[z]; done {
				continue
			}
			hs := make([]int, len(samples))
			loc, err := e.location(z)
			for i, s := range samples {
				if err != nil {
					hs[i] = -1
					continue
				}
				hs[i] = s.instant.In(loc).Hour()
			}
			if err != nil {
				e.logger.WithError(err).WithField("zone", z).Debug("Local hours unknown for zone")
			}
			hours[z] = hs
		}
	}
	return hours
}

func (e *Engine) location(zone string) (*time.Location, error) {
	if loc, ok := e.resolver.Location(zone); ok {
		return loc, nil
	}
	return time.LoadLocation(zone)
}

func (e *Engine) score(code string, samples []sample, hours map[string][]int) Result {
	zones := e.index.Zones(code)
	own := make(map[string]struct{}, len(zones))
	for _, z := range zones {
		own[z] = struct{}{}
	}

	var matched, awake int
	for i, s := range samples {
		for _, z := range s.zones {
			if _, ok := own[z]; ok {
				matched++
				break
			}
		}
		for _, z := range zones {
			if h := hours[z][i]; h >= wakeStart && h <= wakeEnd {
				awake++
				break
			}
		}
	}

	n := float64(len(samples))
	r := Result{
		Code:          code,
		MatchFraction: float64(matched) / n,
		WakeFraction:  float64(awake) / n,
		ZoneCount:     max(len(zones), 1),
	}
	r.RawScore = (matchWeight*r.MatchFraction + wakeWeight*r.WakeFraction) / math.Sqrt(float64(r.ZoneCount))
	r.AdjustedScore = r.RawScore * e.prior(code)
	return r
}

func (e *Engine) prior(code string) float64 {
	if !e.populationPrior {
		return 1
	}
	pop, err := e.lookup.Population(code)
	if err != nil || pop <= 0 {
		e.logger.WithError(err).WithField("country", code).Warn("Failed retrieving population, using a neutral prior")
		return 1
	}
	return math.Pow(float64(pop), 0.25)
}

// normalize fills GlobalProbability from the adjusted scores, or from the
// match fractions when every score is degenerate.
func normalize(results []Result) {
	var total float64
	for _, r := range results {
		total += r.AdjustedScore
	}
	if total > 0 {
		for i := range results {
			results[i].GlobalProbability = results[i].AdjustedScore / total
		}
		return
	}

	total = 0
	for _, r := range results {
		total += r.MatchFraction
	}
	for i := range results {
		if total > 0 {
			results[i].GlobalProbability = results[i].MatchFraction / total
		} else {
			results[i].GlobalProbability = 0
		}
	}
}

func (e *Engine) describe(code string) (name, flag string) {
	name, err := e.lookup.Name(code)
	if err != nil {
		e.logger.WithError(err).WithField("country", code).Warn("Failed reading the country name")
		name = code
	}
	flag, err = e.lookup.Flag(code)
	if err != nil {
		e.logger.WithError(err).WithField("country", code).Warn("Failed rendering the country flag")
		flag = PlaceholderFlag
	}
	return name, flag
}
