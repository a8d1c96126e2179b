package radio

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"ignis/internal/configstore"
)

const (
	// PageSize is the number of station buttons shown per page.
	PageSize = 5
	// MaxCountries is the select menu option limit.
	MaxCountries = 25
)

var (
	ErrCountryNotFound = errors.New("country not found")
	ErrStationNotFound = errors.New("station not found")
	ErrNoStationURL    = errors.New("station has no url")
)

type Station = configstore.Station

// Catalog is the radios document seen as country -> stations.
type Catalog struct {
	radios configstore.Radios
}

func NewCatalog(radios configstore.Radios) *Catalog {
	if radios == nil {
		radios = configstore.Radios{}
	}
	return &Catalog{radios: radios}
}

// Countries returns the countries that have at least one station, sorted
// and capped at MaxCountries.
func (c *Catalog) Countries() []string {
	out := make([]string, 0, len(c.radios))
	for country, stations := range c.radios {
		if len(stations) > 0 {
			out = append(out, country)
		}
	}
	sort.Strings(out)
	if len(out) > MaxCountries {
		out = out[:MaxCountries]
	}
	return out
}

// Resolve maps a country taken from a component back to its catalog name.
// Names cut to fit a custom ID match the first country they prefix.
func (c *Catalog) Resolve(ref string) string {
	if _, ok := c.radios[ref]; ok {
		return ref
	}
	for _, country := range c.Countries() {
		if strings.HasPrefix(country, ref) {
			return country
		}
	}
	return ref
}

func (c *Catalog) Empty() bool {
	return len(c.Countries()) == 0
}

// Stations returns the stations of country.
func (c *Catalog) Stations(country string) ([]Station, error) {
	stations, ok := c.radios[country]
	if !ok || len(stations) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCountryNotFound, country)
	}
	return stations, nil
}

// Station returns the index-th station of country. A station without a URL
// is returned together with ErrNoStationURL so callers can name it.
func (c *Catalog) Station(country string, index int) (Station, error) {
	stations, err := c.Stations(country)
	if err != nil {
		return Station{}, err
	}
	if index < 0 || index >= len(stations) {
		return Station{}, fmt.Errorf("%w: index %d", ErrStationNotFound, index)
	}
	st := stations[index]
	if st.URL == "" {
		return st, fmt.Errorf("%w: %s", ErrNoStationURL, st.Name)
	}
	return st, nil
}

// Page is one screen of station buttons.
type Page struct {
	Number   int // zero based
	Total    int
	Offset   int // index of Stations[0] in the country list
	Stations []Station
}

func (p Page) HasPrev() bool { return p.Number > 0 }
func (p Page) HasNext() bool { return p.Number < p.Total-1 }

// Page returns page n of country, clamped into range.
func (c *Catalog) Page(country string, n int) (Page, error) {
	stations, err := c.Stations(country)
	if err != nil {
		return Page{}, err
	}
	total := (len(stations) + PageSize - 1) / PageSize
	if n >= total {
		n = total - 1
	}
	if n < 0 {
		n = 0
	}
	start := n * PageSize
	end := min(start+PageSize, len(stations))
	return Page{Number: n, Total: total, Offset: start, Stations: stations[start:end]}, nil
}

// Direction of a prev/next step.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// Step moves index one place in dir over total entries, wrapping at both ends.
func Step(index, total int, dir Direction) int {
	if total <= 0 {
		return 0
	}
	return ((index+int(dir))%total + total) % total
}
