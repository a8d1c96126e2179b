package radio

import (
	"errors"
	"fmt"
	"testing"

	"ignis/internal/configstore"
)

func stations(n int) []Station {
	out := make([]Station, n)
	for i := range out {
		out[i] = Station{Name: fmt.Sprintf("R%d", i), URL: fmt.Sprintf("http://r/%d", i)}
	}
	return out
}

func TestCountriesSortedAndFiltered(t *testing.T) {
	c := NewCatalog(configstore.Radios{
		"Portugal": stations(2),
		"Brasil":   stations(1),
		"Vazio":    nil,
	})
	got := c.Countries()
	if len(got) != 2 || got[0] != "Brasil" || got[1] != "Portugal" {
		t.Fatalf("Countries = %v", got)
	}
	if c.Empty() {
		t.Error("catalog should not be empty")
	}
	if !NewCatalog(nil).Empty() {
		t.Error("nil catalog should be empty")
	}
}

func TestCountriesCapped(t *testing.T) {
	radios := configstore.Radios{}
	for i := 0; i < 30; i++ {
		radios[fmt.Sprintf("C%02d", i)] = stations(1)
	}
	if got := len(NewCatalog(radios).Countries()); got != MaxCountries {
		t.Errorf("len = %d, want %d", got, MaxCountries)
	}
}

func TestStationErrors(t *testing.T) {
	c := NewCatalog(configstore.Radios{
		"Brasil": {{Name: "Sem URL"}, {Name: "Ok", URL: "http://ok"}},
	})

	if _, err := c.Station("Chile", 0); !errors.Is(err, ErrCountryNotFound) {
		t.Errorf("unknown country: %v", err)
	}
	if _, err := c.Station("Brasil", 2); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("out of range: %v", err)
	}
	if _, err := c.Station("Brasil", -1); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("negative: %v", err)
	}
	st, err := c.Station("Brasil", 0)
	if !errors.Is(err, ErrNoStationURL) || st.Name != "Sem URL" {
		t.Errorf("empty url: %v %+v", err, st)
	}
	if st, err := c.Station("Brasil", 1); err != nil || st.Name != "Ok" {
		t.Errorf("valid: %v %+v", err, st)
	}
}

func TestPage(t *testing.T) {
	c := NewCatalog(configstore.Radios{"Brasil": stations(12)})

	tests := []struct {
		in, number, offset, size int
		prev, next               bool
	}{
		{0, 0, 0, 5, false, true},
		{1, 1, 5, 5, true, true},
		{2, 2, 10, 2, true, false},
		{9, 2, 10, 2, true, false},
		{-3, 0, 0, 5, false, true},
	}
	for _, tt := range tests {
		p, err := c.Page("Brasil", tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if p.Number != tt.number || p.Offset != tt.offset || len(p.Stations) != tt.size || p.Total != 3 {
			t.Errorf("Page(%d) = %+v", tt.in, p)
		}
		if p.HasPrev() != tt.prev || p.HasNext() != tt.next {
			t.Errorf("Page(%d) prev/next = %v/%v", tt.in, p.HasPrev(), p.HasNext())
		}
	}
}

func TestStepWraps(t *testing.T) {
	tests := []struct {
		index, total int
		dir          Direction
		want         int
	}{
		{0, 3, Next, 1},
		{2, 3, Next, 0},
		{0, 3, Prev, 2},
		{1, 3, Prev, 0},
		{0, 1, Next, 0},
		{0, 0, Next, 0},
	}
	for _, tt := range tests {
		if got := Step(tt.index, tt.total, tt.dir); got != tt.want {
			t.Errorf("Step(%d,%d,%d) = %d, want %d", tt.index, tt.total, tt.dir, got, tt.want)
		}
	}
}
