// Package configstore reads the bot's configuration documents (canais, escopos,
// status, radios) from a document store.
package configstore

import (
	"strconv"
	"strings"
)

// Document IDs as stored in the configuration collection.
const (
	DocChannels = "canais"
	DocScopes   = "escopos"
	DocStatus   = "status"
	DocRadios   = "radios"
)

// Channel names looked up in the canais document.
const (
	ChannelBot       = "bot"
	ChannelMemberLog = "registros-membros"
)

type ChannelRef struct {
	Name string `bson:"nome" json:"nome"`
	ID   string `bson:"id" json:"id"`
}

type ChannelCategory struct {
	Name     string       `bson:"nome,omitempty" json:"nome,omitempty"`
	Channels []ChannelRef `bson:"canais" json:"canais"`
}

// Channels is the canais document.
type Channels struct {
	Categories []ChannelCategory `bson:"categorias" json:"categorias"`
}

// ChannelByName returns the ID of the first channel called name, scanning
// categories in document order, or "" when none matches.
func (c *Channels) ChannelByName(name string) string {
	if c == nil {
		return ""
	}
	for _, cat := range c.Categories {
		for _, ch := range cat.Channels {
			if ch.Name == name {
				return ch.ID
			}
		}
	}
	return ""
}

type RoleRef struct {
	ID string `bson:"id" json:"id"`
}

type ScopeRoles struct {
	DJ *RoleRef `bson:"dj,omitempty" json:"dj,omitempty"`
}

// Scopes is the escopos document.
type Scopes struct {
	Roles ScopeRoles `bson:"cargos" json:"cargos"`
}

// DJRoleID returns the configured DJ role or "" when none is set.
func (s *Scopes) DJRoleID() string {
	if s == nil || s.Roles.DJ == nil {
		return ""
	}
	return s.Roles.DJ.ID
}

type StatusColors struct {
	Positive string `bson:"positive" json:"positive"`
	Negative string `bson:"negative" json:"negative"`
	Change   string `bson:"change" json:"change"`
}

type StatusEmojis struct {
	Create string `bson:"create" json:"create"`
	Delete string `bson:"delete" json:"delete"`
	Move   string `bson:"move" json:"move"`
}

// Status is the status document: colors and emojis for voice activity entries.
type Status struct {
	Colors StatusColors `bson:"colors" json:"colors"`
	Emojis StatusEmojis `bson:"emojis" json:"emojis"`
}

type StatusKind int

const (
	StatusPositive StatusKind = iota
	StatusNegative
	StatusChange
)

var (
	defaultColors = map[StatusKind]int{
		StatusPositive: 0x57F287,
		StatusNegative: 0xED4245,
		StatusChange:   0xFFA500,
	}
	defaultEmojis = map[StatusKind]string{
		StatusPositive: "📥",
		StatusNegative: "📤",
		StatusChange:   "🔀",
	}
)

// Color parses the configured "#RRGGBB" color for kind. A nil receiver or a
// missing/malformed value yields the built-in default.
func (s *Status) Color(kind StatusKind) int {
	if s == nil {
		return defaultColors[kind]
	}
	var raw string
	switch kind {
	case StatusPositive:
		raw = s.Colors.Positive
	case StatusNegative:
		raw = s.Colors.Negative
	case StatusChange:
		raw = s.Colors.Change
	}
	if c, ok := ParseHexColor(raw); ok {
		return c
	}
	return defaultColors[kind]
}

// Emoji returns the configured emoji for kind, or the built-in default.
func (s *Status) Emoji(kind StatusKind) string {
	if s == nil {
		return defaultEmojis[kind]
	}
	var e string
	switch kind {
	case StatusPositive:
		e = s.Emojis.Create
	case StatusNegative:
		e = s.Emojis.Delete
	case StatusChange:
		e = s.Emojis.Move
	}
	if e == "" {
		return defaultEmojis[kind]
	}
	return e
}

// ParseHexColor parses "#RRGGBB" (the leading '#' is optional).
func ParseHexColor(s string) (int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

// Station is one entry of a country list in the radios document.
type Station struct {
	Name        string `bson:"name" json:"name"`
	URL         string `bson:"url" json:"url"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Place       string `bson:"place,omitempty" json:"place,omitempty"`
}

// Radios is the radios document without its _id: country -> stations.
type Radios map[string][]Station
