package radio

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"ignis/internal/bot"
	"ignis/internal/command"
	rd "ignis/internal/radio"
)

func (c *RadioCommand) Component(ctx *command.ComponentInteractionContext) error {
	s, e := ctx.Session, ctx.Event
	data := e.MessageComponentData()
	user := bot.InteractionUser(e)

	action, err := rd.ParseCustomID(data.CustomID)
	if err != nil {
		log.Warn().Err(err).Str("guild", e.GuildID).Msg("Unknown radio component")
		return bot.RespondEphemeral(s, e, msgComponentError)
	}

	sctx, cancel := storeContext()
	defer cancel()

	if !rd.IsDJ(sctx, c.Store, memberRoles(e)) {
		return bot.RespondEphemeral(s, e, msgNotDJ)
	}
	// browsing the station list is open to every DJ
	if action.Kind != rd.ActionPage && action.Kind != rd.ActionBack {
		if msg := ownerMessage(c.Sessions.Authorize(e.GuildID, user.ID)); msg != "" {
			return bot.RespondEphemeral(s, e, msg)
		}
	}

	cat := c.catalog(sctx)
	if action.Country != "" {
		action.Country = cat.Resolve(action.Country)
	}

	switch action.Kind {
	case rd.ActionCountrySelect:
		if len(data.Values) == 0 {
			return nil
		}
		return c.selectCountry(s, e, cat, cat.Resolve(data.Values[0]), user.ID)

	case rd.ActionPage:
		view, err := stationPage(cat, action.Country, action.Number)
		if err != nil {
			return bot.RespondEphemeral(s, e, fmt.Sprintf(msgNoCountryRadios, action.Country))
		}
		return bot.UpdateMessage(s, e, view)

	case rd.ActionBack:
		if cat.Empty() {
			return bot.RespondEphemeral(s, e, msgNoRadios)
		}
		return bot.UpdateMessage(s, e, countryPrompt(cat))

	case rd.ActionPlay:
		if _, ok := c.Voice.UserVoiceChannel(e.GuildID, user.ID); !ok {
			return bot.RespondEphemeral(s, e, msgNotInVoice)
		}
		if err := bot.DeferUpdate(s, e); err != nil {
			return err
		}
		c.play(s, e, cat, action.Country, action.Number, true)
		return nil

	case rd.ActionPrev, rd.ActionNext:
		sess, ok := c.Sessions.Get(e.GuildID)
		if !ok {
			return bot.RespondEphemeral(s, e, msgNothingPlaying)
		}
		stations, err := cat.Stations(sess.Country)
		if err != nil {
			return bot.RespondEphemeral(s, e, fmt.Sprintf(msgCountryNotFound, sess.Country))
		}
		if err := bot.DeferUpdate(s, e); err != nil {
			return err
		}
		dir := rd.Next
		if action.Kind == rd.ActionPrev {
			dir = rd.Prev
		}
		c.play(s, e, cat, sess.Country, rd.Step(sess.Index, len(stations), dir), false)
		return nil

	case rd.ActionStop:
		if err := bot.DeferUpdate(s, e); err != nil {
			return err
		}
		c.stop(s, e)
		return nil
	}
	return nil
}

// selectCountry switches a running session the member owns straight to the
// first station of country, or shows the station list otherwise.
func (c *RadioCommand) selectCountry(s *discordgo.Session, e *discordgo.InteractionCreate, cat *rd.Catalog, country, userID string) error {
	if _, err := cat.Stations(country); err != nil {
		return bot.RespondEphemeral(s, e, fmt.Sprintf(msgNoCountryRadios, country))
	}

	if sess, ok := c.Sessions.Get(e.GuildID); ok && sess.OwnerID == userID {
		if err := bot.DeferUpdate(s, e); err != nil {
			return err
		}
		c.play(s, e, cat, country, 0, true)
		return nil
	}

	view, err := stationPage(cat, country, 0)
	if err != nil {
		return bot.RespondEphemeral(s, e, fmt.Sprintf(msgNoCountryRadios, country))
	}
	return bot.UpdateMessage(s, e, view)
}

// play tunes the session and replaces the control message. The interaction
// has already been acknowledged; failures become ephemeral followups.
func (c *RadioCommand) play(s *discordgo.Session, e *discordgo.InteractionCreate, cat *rd.Catalog, country string, index int, deleteSource bool) {
	user := bot.InteractionUser(e)
	logger := log.With().Str("guild", e.GuildID).Str("user", user.ID).Str("country", country).Int("index", index).Logger()

	station, err := cat.Station(country, index)
	if err != nil {
		c.followup(s, e, stationError(err, country, index, station))
		return
	}

	voiceChannel, ok := c.Voice.UserVoiceChannel(e.GuildID, user.ID)
	if !ok {
		c.followup(s, e, msgNotInVoice)
		return
	}

	ctx, cancel := storeContext()
	defer cancel()

	sess, err := c.Sessions.Tune(ctx, rd.TuneRequest{
		GuildID:        e.GuildID,
		UserID:         user.ID,
		VoiceChannelID: voiceChannel,
		Country:        country,
		Index:          index,
		Station:        station,
		OnError: func(err error) {
			c.followup(s, e, fmt.Sprintf(msgPlayError, err))
		},
	})
	if err != nil {
		if msg := ownerMessage(err); msg != "" {
			c.followup(s, e, msg)
			return
		}
		logger.Error().Err(err).Msg("Failed to play radio")
		c.followup(s, e, fmt.Sprintf(msgPlayError, err))
		return
	}

	stations, _ := cat.Stations(country)
	msg, err := bot.FollowupMessage(s, e, nowPlaying(cat, sess, len(stations), time.Now()))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to post radio controls")
		return
	}

	prev, err := c.Sessions.SwapControlMessage(e.GuildID, rd.ControlMessage{ChannelID: msg.ChannelID, MessageID: msg.ID})
	if err != nil {
		logger.Warn().Err(err).Msg("Session ended before controls were recorded")
		return
	}
	if !prev.IsZero() && prev.MessageID != msg.ID {
		deleteMessage(s, prev.ChannelID, prev.MessageID)
	}
	if deleteSource && e.Message != nil && e.Message.ID != prev.MessageID && e.Message.ID != msg.ID {
		deleteMessage(s, e.ChannelID, e.Message.ID)
	}
}

// stop ends the session and removes its control message.
func (c *RadioCommand) stop(s *discordgo.Session, e *discordgo.InteractionCreate) {
	sess, err := c.Sessions.Stop(e.GuildID)
	if errors.Is(err, rd.ErrNoSession) {
		c.followup(s, e, msgNothingPlaying)
		return
	}
	if !sess.Control.IsZero() {
		deleteMessage(s, sess.Control.ChannelID, sess.Control.MessageID)
	}
	if err != nil {
		log.Error().Err(err).Str("guild", e.GuildID).Msg("Failed to stop radio")
		c.followup(s, e, fmt.Sprintf(msgStopError, err))
		return
	}
	c.followup(s, e, msgStopped)
}

func (c *RadioCommand) followup(s *discordgo.Session, e *discordgo.InteractionCreate, content string) {
	if err := bot.FollowupEphemeral(s, e, content); err != nil {
		log.Warn().Err(err).Str("guild", e.GuildID).Msg("Failed to send radio followup")
	}
}

// stationError maps catalog errors to their refusal text.
func stationError(err error, country string, index int, st rd.Station) string {
	switch {
	case errors.Is(err, rd.ErrCountryNotFound):
		return fmt.Sprintf(msgCountryNotFound, country)
	case errors.Is(err, rd.ErrStationNotFound):
		return fmt.Sprintf(msgStationNotFound, index)
	case errors.Is(err, rd.ErrNoStationURL):
		return fmt.Sprintf(msgNoStationURL, st.Name)
	}
	return fmt.Sprintf(msgPlayError, err)
}

func deleteMessage(s *discordgo.Session, channelID, messageID string) {
	if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
		log.Debug().Err(err).Str("channel", channelID).Str("message", messageID).Msg("Failed to delete radio message")
	}
}
