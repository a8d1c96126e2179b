package partnership

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"ignis/internal/bot/bottest"
	"ignis/internal/command"
	"ignis/internal/configstore"
)

func TestClaimIsSingleUseAndOwnerOnly(t *testing.T) {
	c := &PartnershipCommand{Window: time.Hour}
	c.track("tok", "u1", &discordgo.Interaction{}, func() {})

	if _, status := c.claim("tok", "u2"); status != claimWrongUser {
		t.Errorf("other user status = %v", status)
	}
	if _, status := c.claim("tok", "u1"); status != claimOK {
		t.Errorf("owner status = %v", status)
	}
	if _, status := c.claim("tok", "u1"); status != claimExpired {
		t.Errorf("second claim status = %v", status)
	}
}

func TestRequestExpires(t *testing.T) {
	c := &PartnershipCommand{Window: 5 * time.Millisecond}
	fired := make(chan struct{})
	c.track("tok", "u1", &discordgo.Interaction{}, func() {
		c.mu.Lock()
		delete(c.pending, "tok")
		c.mu.Unlock()
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expiry never fired")
	}
	if _, status := c.claim("tok", "u1"); status != claimExpired {
		t.Errorf("status after expiry = %v", status)
	}
}

func TestNotifyRow(t *testing.T) {
	row := notifyRow("123", true)
	b := row.Components[0].(discordgo.Button)
	if b.CustomID != "parceria_notify:123" || !b.Disabled || b.Label != "📥 Notificar Responsável" {
		t.Errorf("button = %+v", b)
	}
}

func TestRequestEmbed(t *testing.T) {
	user := &discordgo.User{ID: "175928847299117063", Username: "ana"}
	joined := time.Unix(1700000000, 0)
	e := requestEmbed(user, joined, time.Unix(1800000000, 0).UTC())

	if e.Color != 0x4B0082 || e.Title != "Nova Solicitação de Parceria" {
		t.Errorf("embed = %+v", e)
	}
	if !strings.Contains(e.Description, "[ana](https://discord.com/users/175928847299117063)") {
		t.Errorf("description = %q", e.Description)
	}
	if len(e.Fields) != 4 {
		t.Fatalf("fields = %d", len(e.Fields))
	}
	if e.Fields[2].Value != "<t:1462015105:R>" {
		t.Errorf("created = %q", e.Fields[2].Value)
	}
	if e.Fields[3].Name != "📥 Entrou no Servidor" || e.Fields[3].Value != "<t:1700000000:R>" {
		t.Errorf("joined = %+v", e.Fields[3])
	}

	if got := len(requestEmbed(user, time.Time{}, time.Now()).Fields); got != 3 {
		t.Errorf("fields without join date = %d", got)
	}
}

func TestUsageEmbed(t *testing.T) {
	e := usageEmbed(&discordgo.User{ID: "1", Username: "ana"}, 0x123456, time.Now())
	if e.Title != "ana usou" || e.Description != "Usuário usou o comando `/parceria`" || e.Color != 0x123456 {
		t.Errorf("embed = %+v", e)
	}
	if e.Thumbnail == nil || e.Thumbnail.URL == "" {
		t.Error("missing avatar thumbnail")
	}
}

type noChannels struct{}

func (noChannels) Channels(context.Context) (*configstore.Channels, error) {
	return nil, configstore.ErrNotFound
}

func slashEvent(userID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "i1",
		AppID:   "app",
		Token:   "tok",
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "g1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID, Username: "ana"}},
		Data:    discordgo.ApplicationCommandInteractionData{Name: "parceria"},
	}}
}

func clickEvent(interactionID, userID, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      interactionID,
		AppID:   "app",
		Token:   "tok-" + interactionID,
		Type:    discordgo.InteractionMessageComponent,
		GuildID: "g1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: userID, Username: "ana"}},
		Data:    discordgo.MessageComponentInteractionData{CustomID: customID},
	}}
}

func clickReply(t *testing.T, c *PartnershipCommand, s *discordgo.Session, api *bottest.API, interactionID, userID string) bottest.Callback {
	t.Helper()
	e := clickEvent(interactionID, userID, "parceria_notify:i1")
	if err := c.Component(&command.ComponentInteractionContext{Session: s, Event: e}); err != nil {
		t.Fatalf("Component: %v", err)
	}
	var cb bottest.Callback
	api.Must(t, http.MethodPost, bottest.Path("interactions", interactionID, "tok-"+interactionID, "callback")).Decode(t, &cb)
	return cb
}

func runCommand(t *testing.T, c *PartnershipCommand, s *discordgo.Session) {
	t.Helper()
	if err := c.Run(&command.SlashInteractionContext{Session: s, Event: slashEvent("u1")}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunShowsRequirementsWithButton(t *testing.T) {
	s, api := bottest.New(t)
	c := &PartnershipCommand{Store: noChannels{}, ContactID: "contact", Window: time.Hour}

	runCommand(t, c, s)

	var cb bottest.Callback
	api.Must(t, http.MethodPost, bottest.Path("interactions", "i1", "tok", "callback")).Decode(t, &cb)
	if cb.Type != int(discordgo.InteractionResponseChannelMessageWithSource) || cb.Data.Content != requirements {
		t.Errorf("callback = %+v", cb)
	}
	if cb.Data.Flags != int(discordgo.MessageFlagsEphemeral) {
		t.Errorf("flags = %d", cb.Data.Flags)
	}
	if !strings.Contains(string(cb.Data.Components), `"custom_id":"parceria_notify:i1"`) {
		t.Errorf("components = %s", cb.Data.Components)
	}
}

func TestNotifySendsDMOnce(t *testing.T) {
	s, api := bottest.New(t)
	c := &PartnershipCommand{Store: noChannels{}, ContactID: "contact", Window: time.Hour}
	runCommand(t, c, s)

	if cb := clickReply(t, c, s, api, "i2", "u2"); cb.Data.Content != msgNotYours || cb.Data.Flags != int(discordgo.MessageFlagsEphemeral) {
		t.Errorf("other user = %+v", cb)
	}

	cb := clickReply(t, c, s, api, "i3", "u1")
	if cb.Type != int(discordgo.InteractionResponseUpdateMessage) || cb.Data.Content != msgNotified {
		t.Errorf("owner = %+v", cb)
	}
	if !strings.Contains(string(cb.Data.Components), `"disabled":true`) {
		t.Errorf("button not disabled: %s", cb.Data.Components)
	}

	var dm struct {
		RecipientID string `json:"recipient_id"`
	}
	api.Must(t, http.MethodPost, bottest.Path("users", "@me", "channels")).Decode(t, &dm)
	if dm.RecipientID != "contact" {
		t.Errorf("DM opened with %q", dm.RecipientID)
	}
	var sent bottest.Message
	api.Must(t, http.MethodPost, bottest.Path("channels", "dm", "messages")).Decode(t, &sent)
	if len(sent.Embeds) != 1 || !strings.Contains(string(sent.Embeds[0]), "Nova Solicitação de Parceria") {
		t.Errorf("DM embeds = %s", sent.Embeds)
	}

	if cb := clickReply(t, c, s, api, "i4", "u1"); cb.Data.Content != msgExpired {
		t.Errorf("second click = %+v", cb)
	}
}

func TestNotifyReportsDMFailure(t *testing.T) {
	s, api := bottest.New(t)
	api.Fail["POST "+bottest.Path("users", "@me", "channels")] = http.StatusForbidden
	c := &PartnershipCommand{Store: noChannels{}, ContactID: "contact", Window: time.Hour}
	runCommand(t, c, s)

	cb := clickReply(t, c, s, api, "i2", "u1")
	if cb.Type != int(discordgo.InteractionResponseUpdateMessage) || cb.Data.Content != msgNotifyFail {
		t.Errorf("callback = %+v", cb)
	}
	if _, ok := api.Find(http.MethodPost, bottest.Path("channels", "dm", "messages")); ok {
		t.Error("message sent without a DM channel")
	}
}

func TestButtonDisabledOnExpiry(t *testing.T) {
	s, api := bottest.New(t)
	c := &PartnershipCommand{Store: noChannels{}, ContactID: "contact", Window: 10 * time.Millisecond}
	runCommand(t, c, s)

	var edit bottest.Message
	api.WaitFor(t, http.MethodPatch, bottest.Path("webhooks", "app", "tok", "messages", "@original")).Decode(t, &edit)
	if edit.Content != requirements || !strings.Contains(string(edit.Components), `"disabled":true`) {
		t.Errorf("edit = %+v (%s)", edit, edit.Components)
	}

	if cb := clickReply(t, c, s, api, "i2", "u1"); cb.Data.Content != msgExpired {
		t.Errorf("click after expiry = %+v", cb)
	}
}
