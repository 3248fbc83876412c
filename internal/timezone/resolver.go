// Package timezone maps UTC offsets observed at a given instant back to the
// zones and countries that could have produced them.
package timezone

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gnomegl/githunt/internal/geo"
	"github.com/sirupsen/logrus"
)

// Catalog returns the zone names known to the country table plus UTC and the
// fixed Etc/GMT zones, sorted and deduplicated.
func Catalog(countries []geo.Country) []string {
	seen := map[string]struct{}{"UTC": {}, "Etc/GMT": {}}
	for h := 1; h <= 14; h++ {
		seen[fmt.Sprintf("Etc/GMT-%d", h)] = struct{}{}
		if h <= 12 {
			seen[fmt.Sprintf("Etc/GMT+%d", h)] = struct{}{}
		}
	}
	for _, c := range countries {
		for _, z := range c.Zones {
			seen[z] = struct{}{}
		}
	}

	zones := make([]string, 0, len(seen))
	for z := range seen {
		zones = append(zones, z)
	}
	sort.Strings(zones)
	return zones
}

var defaultCatalog = sync.OnceValue(func() []string {
	return Catalog(geo.Default().Countries())
})

func DefaultCatalog() []string {
	return defaultCatalog()
}

type zone struct {
	name string
	loc  *time.Location
}

// Resolver tests an (instant, offset) pair against every zone of a catalog.
// It is safe for concurrent use.
type Resolver struct {
	zones []zone
}

// NewResolver loads every zone of the catalog. Zones the runtime cannot load
// are logged and skipped.
func NewResolver(catalog []string, logger logrus.FieldLogger) *Resolver {
	r := &Resolver{zones: make([]zone, 0, len(catalog))}
	for _, name := range catalog {
		loc, err := time.LoadLocation(name)
		if err != nil {
			logger.WithError(err).WithField("zone", name).Debug("Skipping zone that failed to load")
			continue
		}
		r.zones = append(r.zones, zone{name: name, loc: loc})
	}
	sort.Slice(r.zones, func(i, j int) bool { return r.zones[i].name < r.zones[j].name })
	return r
}

// Len is the number of usable zones.
func (r *Resolver) Len() int {
	return len(r.zones)
}

// Resolve returns, sorted, every zone whose UTC offset at instant equals
// offset seconds.
func (r *Resolver) Resolve(instant time.Time, offset int) []string {
	var matches []string
	for _, z := range r.zones {
		if _, off := instant.In(z.loc).Zone(); off == offset {
			matches = append(matches, z.name)
		}
	}
	return matches
}

// Location returns the loaded location for a catalog zone.
func (r *Resolver) Location(name string) (*time.Location, bool) {
	i := sort.Search(len(r.zones), func(i int) bool { return r.zones[i].name >= name })
	if i < len(r.zones) && r.zones[i].name == name {
		return r.zones[i].loc, true
	}
	return nil, false
}
