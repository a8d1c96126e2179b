package radio

import (
	"context"
	"net/http"
	"testing"

	"github.com/bwmarrin/discordgo"

	"ignis/internal/bot/bottest"
	"ignis/internal/command"
	"ignis/internal/configstore"
	rd "ignis/internal/radio"
)

var testRadios = configstore.Radios{
	"Brasil": {{Name: "A", URL: "http://a"}, {Name: "B", URL: "http://b"}},
	"Chile":  {{Name: "C", URL: "http://c"}},
}

var callbackPath = bottest.Path("interactions", "i1", "tok", "callback")

func componentEvent(userID, customID, messageID string, values ...string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "i1",
		AppID:     "app",
		Token:     "tok",
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
		Message:   &discordgo.Message{ID: messageID, ChannelID: "c1"},
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID, Values: values},
	}}
}

func click(t *testing.T, c *RadioCommand, s *discordgo.Session, e *discordgo.InteractionCreate) {
	t.Helper()
	if err := c.Component(&command.ComponentInteractionContext{Session: s, Event: e}); err != nil {
		t.Fatalf("Component(%s): %v", e.MessageComponentData().CustomID, err)
	}
}

func callback(t *testing.T, api *bottest.API) bottest.Callback {
	t.Helper()
	var cb bottest.Callback
	api.Must(t, http.MethodPost, callbackPath).Decode(t, &cb)
	return cb
}

func wasDeleted(api *bottest.API, messageID string) bool {
	_, ok := api.Find(http.MethodDelete, bottest.Path("channels", "c1", "messages", messageID))
	return ok
}

func TestPlaySwapsControlMessages(t *testing.T) {
	s, api := bottest.New(t)
	c := newTestCommand(&fakeConfig{radios: testRadios}, fakeVoice{"u1": "v1"})
	defer c.Sessions.StopAll()

	click(t, c, s, componentEvent("u1", rd.PlayID(1, "Brasil"), "picker"))

	if cb := callback(t, api); cb.Type != int(discordgo.InteractionResponseDeferredMessageUpdate) {
		t.Errorf("ack type = %d", cb.Type)
	}
	sess, ok := c.Sessions.Get("g1")
	if !ok || sess.Index != 1 || sess.Station.Name != "B" || sess.Control.MessageID != "m1" {
		t.Fatalf("session = %+v", sess)
	}
	if !wasDeleted(api, "picker") {
		t.Error("station list was not deleted after play")
	}

	// next from the last station wraps to the first
	api.Reset()
	click(t, c, s, componentEvent("u1", rd.IDNext, "m1"))
	sess, _ = c.Sessions.Get("g1")
	if sess.Index != 0 || sess.Control.MessageID != "m2" {
		t.Errorf("after next = %+v", sess)
	}
	if !wasDeleted(api, "m1") {
		t.Error("old control message was not deleted")
	}

	// prev from the first station wraps to the last
	api.Reset()
	click(t, c, s, componentEvent("u1", rd.IDPrev, "m2"))
	sess, _ = c.Sessions.Get("g1")
	if sess.Index != 1 || sess.Control.MessageID != "m3" {
		t.Errorf("after prev = %+v", sess)
	}
	if !wasDeleted(api, "m2") {
		t.Error("old control message was not deleted")
	}
}

func TestOwnerCountrySelectSwitchesToFirstStation(t *testing.T) {
	s, api := bottest.New(t)
	c := newTestCommand(&fakeConfig{radios: testRadios}, fakeVoice{"u1": "v1"})
	defer c.Sessions.StopAll()

	click(t, c, s, componentEvent("u1", rd.PlayID(1, "Brasil"), "picker"))
	api.Reset()

	click(t, c, s, componentEvent("u1", rd.IDCountrySelect, "m1", "Chile"))
	sess, _ := c.Sessions.Get("g1")
	if sess.Country != "Chile" || sess.Index != 0 || sess.Station.URL != "http://c" {
		t.Errorf("session = %+v", sess)
	}
	if !wasDeleted(api, "m1") {
		t.Error("previous control message was not deleted")
	}
}

func TestCountrySelectWithoutSessionShowsStations(t *testing.T) {
	s, api := bottest.New(t)
	c := newTestCommand(&fakeConfig{radios: testRadios}, fakeVoice{"u1": "v1"})

	click(t, c, s, componentEvent("u1", rd.IDCountrySelect, "picker", "Brasil"))

	cb := callback(t, api)
	if cb.Type != int(discordgo.InteractionResponseUpdateMessage) || cb.Data.Content != "📻 Selecione uma rádio de Brasil:" {
		t.Errorf("callback = %+v", cb)
	}
	if _, ok := c.Sessions.Get("g1"); ok {
		t.Error("selecting a country should not start a session")
	}
}

func TestStopRemovesControlsAndConfirms(t *testing.T) {
	s, api := bottest.New(t)
	c := newTestCommand(&fakeConfig{radios: testRadios}, fakeVoice{"u1": "v1"})

	click(t, c, s, componentEvent("u1", rd.PlayID(0, "Brasil"), "picker"))
	api.Reset()

	click(t, c, s, componentEvent("u1", rd.IDStop, "m1"))

	if _, ok := c.Sessions.Get("g1"); ok {
		t.Error("session still running after stop")
	}
	if !wasDeleted(api, "m1") {
		t.Error("control message was not deleted")
	}
	var msg bottest.Message
	api.Must(t, http.MethodPost, bottest.Path("webhooks", "app", "tok")).Decode(t, &msg)
	if msg.Content != msgStopped || msg.Flags != int(discordgo.MessageFlagsEphemeral) {
		t.Errorf("followup = %+v", msg)
	}
}

func TestStopWithoutSession(t *testing.T) {
	s, api := bottest.New(t)
	c := newTestCommand(&fakeConfig{radios: testRadios}, fakeVoice{"u1": "v1"})

	click(t, c, s, componentEvent("u1", rd.IDStop, "m1"))

	var msg bottest.Message
	api.Must(t, http.MethodPost, bottest.Path("webhooks", "app", "tok")).Decode(t, &msg)
	if msg.Content != msgNothingPlaying {
		t.Errorf("followup = %q", msg.Content)
	}
}

func TestOtherDJsMayBrowseButNotControl(t *testing.T) {
	s, api := bottest.New(t)
	c := newTestCommand(&fakeConfig{radios: testRadios}, fakeVoice{"u1": "v1", "u2": "v1"})
	defer c.Sessions.StopAll()

	if _, err := c.Sessions.Tune(context.Background(), rd.TuneRequest{
		GuildID: "g1", UserID: "u1", VoiceChannelID: "v1", Country: "Brasil",
		Station: rd.Station{Name: "A", URL: "http://a"},
	}); err != nil {
		t.Fatal(err)
	}

	click(t, c, s, componentEvent("u2", rd.PageID(0, "Brasil"), "picker"))
	if cb := callback(t, api); cb.Type != int(discordgo.InteractionResponseUpdateMessage) {
		t.Errorf("page callback = %+v", cb)
	}

	api.Reset()
	click(t, c, s, componentEvent("u2", rd.IDBack, "picker"))
	if cb := callback(t, api); cb.Type != int(discordgo.InteractionResponseUpdateMessage) || cb.Data.Content != promptCountry {
		t.Errorf("back callback = %+v", cb)
	}

	for _, id := range []string{rd.IDStop, rd.IDNext, rd.PlayID(1, "Brasil")} {
		api.Reset()
		click(t, c, s, componentEvent("u2", id, "m1"))
		cb := callback(t, api)
		if cb.Data.Content != "❌ Apenas <@u1> pode controlar a rádio nesta sessão." || cb.Data.Flags != int(discordgo.MessageFlagsEphemeral) {
			t.Errorf("%s by other DJ = %+v", id, cb)
		}
	}
	if sess, _ := c.Sessions.Get("g1"); sess.OwnerID != "u1" || sess.Index != 0 {
		t.Errorf("session changed by other DJ: %+v", sess)
	}
}
