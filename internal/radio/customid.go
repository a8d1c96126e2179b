package radio

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	IDPrefix        = "radio"
	IDCountrySelect = "radio_country_select"
	IDBack          = "radio_back"
	IDPrev          = "radio_prev"
	IDStop          = "radio_stop"
	IDNext          = "radio_next"

	playPrefix = "radio_play_"
	pagePrefix = "radio_page_"

	// maxComponentID is Discord's limit for custom IDs and select values.
	maxComponentID = 100
)

// ActionKind identifies what a radio component does.
type ActionKind int

const (
	ActionCountrySelect ActionKind = iota + 1
	ActionPlay
	ActionPage
	ActionBack
	ActionPrev
	ActionStop
	ActionNext
)

// Action is a decoded component custom ID. Number is the station index for
// ActionPlay and the page for ActionPage.
type Action struct {
	Kind    ActionKind
	Number  int
	Country string
}

func PlayID(index int, country string) string {
	head := playPrefix + strconv.Itoa(index) + "_"
	return head + fit(country, maxComponentID-len(head))
}

func PageID(page int, country string) string {
	head := pagePrefix + strconv.Itoa(page) + "_"
	return head + fit(country, maxComponentID-len(head))
}

// CountryValue is the select menu value for country. Long names are cut;
// Catalog.Resolve maps them back.
func CountryValue(country string) string {
	return fit(country, maxComponentID)
}

// fit cuts s to at most n bytes on a rune boundary.
func fit(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// ParseCustomID decodes the custom IDs produced by this package. The number
// comes before the country so countries may contain underscores.
func ParseCustomID(id string) (Action, error) {
	switch id {
	case IDCountrySelect:
		return Action{Kind: ActionCountrySelect}, nil
	case IDBack:
		return Action{Kind: ActionBack}, nil
	case IDPrev:
		return Action{Kind: ActionPrev}, nil
	case IDStop:
		return Action{Kind: ActionStop}, nil
	case IDNext:
		return Action{Kind: ActionNext}, nil
	}

	var kind ActionKind
	var rest string
	switch {
	case strings.HasPrefix(id, playPrefix):
		kind, rest = ActionPlay, strings.TrimPrefix(id, playPrefix)
	case strings.HasPrefix(id, pagePrefix):
		kind, rest = ActionPage, strings.TrimPrefix(id, pagePrefix)
	default:
		return Action{}, fmt.Errorf("unknown radio component %q", id)
	}

	num, country, ok := strings.Cut(rest, "_")
	if !ok || country == "" {
		return Action{}, fmt.Errorf("malformed radio component %q", id)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return Action{}, fmt.Errorf("malformed radio component %q", id)
	}
	return Action{Kind: kind, Number: n, Country: country}, nil
}
