package timezone

import (
	"sort"
	"sync"

	"github.com/gnomegl/githunt/internal/geo"
)

// CountryIndex maps zones to the countries using them and back.
type CountryIndex struct {
	byZone    map[string][]string
	byCountry map[string][]string
}

func NewCountryIndex(countries []geo.Country) *CountryIndex {
	idx := &CountryIndex{
		byZone:    make(map[string][]string),
		byCountry: make(map[string][]string, len(countries)),
	}
	for _, c := range countries {
		if len(c.Zones) == 0 {
			continue
		}
		idx.byCountry[c.Code] = append([]string(nil), c.Zones...)
		for _, z := range c.Zones {
			idx.byZone[z] = append(idx.byZone[z], c.Code)
		}
	}
	for z := range idx.byZone {
		sort.Strings(idx.byZone[z])
	}
	return idx
}

var defaultIndex = sync.OnceValue(func() *CountryIndex {
	return NewCountryIndex(geo.Default().Countries())
})

// DefaultIndex is built from the embedded country table on first use.
func DefaultIndex() *CountryIndex {
	return defaultIndex()
}

// Countries returns the codes of countries that use zone.
func (idx *CountryIndex) Countries(zone string) []string {
	return idx.byZone[zone]
}

// Zones returns the zones a country spans.
func (idx *CountryIndex) Zones(code string) []string {
	return idx.byCountry[code]
}
