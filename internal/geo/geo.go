// Package geo holds the static country table: names, flags, populations and
// the timezones each country uses.
package geo

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var countriesYAML []byte

var ErrUnknownCountry = errors.New("unknown country")

type Country struct {
	Code       string   `yaml:"code"`
	Name       string   `yaml:"name"`
	Population int64    `yaml:"population"`
	Zones      []string `yaml:"zones"`
}

// Lookup resolves display data for a country code. Each method fails
// independently so callers can fall back field by field.
type Lookup interface {
	Name(code string) (string, error)
	Flag(code string) (string, error)
	Population(code string) (int64, error)
}

// Table is an in-memory country table.
type Table struct {
	countries []Country
	byCode    map[string]*Country
}

// Parse reads a table in the embedded YAML layout.
func Parse(data []byte) (*Table, error) {
	var doc struct {
		Countries []Country `yaml:"countries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing country table: %w", err)
	}
	return NewTable(doc.Countries), nil
}

func NewTable(countries []Country) *Table {
	t := &Table{
		countries: make([]Country, len(countries)),
		byCode:    make(map[string]*Country, len(countries)),
	}
	copy(t.countries, countries)
	sort.Slice(t.countries, func(i, j int) bool { return t.countries[i].Code < t.countries[j].Code })
	for i := range t.countries {
		t.byCode[t.countries[i].Code] = &t.countries[i]
	}
	return t
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := Parse(countriesYAML)
	if err != nil {
		panic(err)
	}
	return t
})

// Default returns the embedded table, parsed once.
func Default() *Table {
	return defaultTable()
}

// Countries returns every country sorted by code.
func (t *Table) Countries() []Country {
	return t.countries
}

func (t *Table) country(code string) (*Country, error) {
	c, ok := t.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
	}
	return c, nil
}

func (t *Table) Name(code string) (string, error) {
	c, err := t.country(code)
	if err != nil {
		return "", err
	}
	return c.Name, nil
}

func (t *Table) Flag(code string) (string, error) {
	if _, err := t.country(code); err != nil {
		return "", err
	}
	return FlagEmoji(code)
}

// Population fails for countries without a known population.
func (t *Table) Population(code string) (int64, error) {
	c, err := t.country(code)
	if err != nil {
		return 0, err
	}
	if c.Population <= 0 {
		return 0, fmt.Errorf("no population for %q", code)
	}
	return c.Population, nil
}

// FlagEmoji renders a two-letter code as a pair of regional indicator symbols.
func FlagEmoji(code string) (string, error) {
	if len(code) != 2 {
		return "", fmt.Errorf("invalid country code %q", code)
	}
	var runes [2]rune
	for i := 0; i < 2; i++ {
		ch := code[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		if ch < 'A' || ch > 'Z' {
			return "", fmt.Errorf("invalid country code %q", code)
		}
		runes[i] = 0x1F1E6 + rune(ch-'A')
	}
	return string(runes[:]), nil
}
