package radio

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"ignis/internal/bot"
	rd "ignis/internal/radio"
)

// IdleNotifier returns the callback run after the idle watcher stopped a
// session: it removes the control message and posts a notice in the bot
// channel.
func IdleNotifier(s *discordgo.Session, store rd.ChannelSource) func(rd.Session) {
	return func(sess rd.Session) {
		if !sess.Control.IsZero() {
			deleteMessage(s, sess.Control.ChannelID, sess.Control.MessageID)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		channelID, err := rd.BotChannel(ctx, store)
		if err != nil {
			log.Warn().Err(err).Str("guild", sess.GuildID).Msg("No bot channel for idle notice")
			return
		}
		if err := bot.Message(s, channelID, msgIdleStopped); err != nil {
			log.Error().Err(err).Str("guild", sess.GuildID).Msg("Failed to notify idle disconnect")
		}
	}
}
