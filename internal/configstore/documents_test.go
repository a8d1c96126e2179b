package configstore

import "testing"

func TestChannelByName(t *testing.T) {
	doc := &Channels{Categories: []ChannelCategory{
		{Name: "geral", Channels: []ChannelRef{{Name: "chat", ID: "1"}}},
		{Channels: nil},
		{Name: "logs", Channels: []ChannelRef{{Name: "registros-membros", ID: "2"}, {Name: "bot", ID: "3"}}},
		{Name: "extra", Channels: []ChannelRef{{Name: "bot", ID: "4"}}},
	}}

	tests := []struct {
		name string
		want string
	}{
		{ChannelBot, "3"},
		{ChannelMemberLog, "2"},
		{"missing", ""},
	}
	for _, tt := range tests {
		if got := doc.ChannelByName(tt.name); got != tt.want {
			t.Errorf("ChannelByName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}

	var nilDoc *Channels
	if got := nilDoc.ChannelByName(ChannelBot); got != "" {
		t.Errorf("nil document returned %q", got)
	}
}

func TestDJRoleID(t *testing.T) {
	if got := (&Scopes{}).DJRoleID(); got != "" {
		t.Errorf("empty scopes = %q", got)
	}
	s := &Scopes{Roles: ScopeRoles{DJ: &RoleRef{ID: "42"}}}
	if got := s.DJRoleID(); got != "42" {
		t.Errorf("DJRoleID = %q", got)
	}
}

func TestStatusColorAndEmoji(t *testing.T) {
	s := &Status{
		Colors: StatusColors{Positive: "#00ff00", Negative: "nope", Change: "123ABC"},
		Emojis: StatusEmojis{Create: "✅"},
	}

	if got := s.Color(StatusPositive); got != 0x00FF00 {
		t.Errorf("positive = %#x", got)
	}
	if got := s.Color(StatusNegative); got != 0xED4245 {
		t.Errorf("malformed negative should fall back, got %#x", got)
	}
	if got := s.Color(StatusChange); got != 0x123ABC {
		t.Errorf("change = %#x", got)
	}
	if got := s.Emoji(StatusPositive); got != "✅" {
		t.Errorf("create emoji = %q", got)
	}
	if got := s.Emoji(StatusChange); got != "🔀" {
		t.Errorf("move emoji default = %q", got)
	}

	var nilStatus *Status
	if got := nilStatus.Color(StatusChange); got != 0xFFA500 {
		t.Errorf("nil status color = %#x", got)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"#FFFFFF", 0xFFFFFF, true},
		{"3498db", 0x3498DB, true},
		{" #000001 ", 1, true},
		{"#FFF", 0, false},
		{"#GGGGGG", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseHexColor(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseHexColor(%q) = %#x,%v want %#x,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
