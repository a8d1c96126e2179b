package middleware

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"ignis/internal/bot"
	"ignis/internal/command"
	"ignis/internal/storage"
	"ignis/pkg/cmd"
)

// WithCommandLogger logs each execution and appends it to the guild's
// command history.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			var (
				s     *discordgo.Session
				e     *discordgo.InteractionCreate
				store *storage.Storage
				name  = c.Name()
			)
			switch v := inv.Data.(type) {
			case *command.SlashInteractionContext:
				s, e, store = v.Session, v.Event, v.Storage
			case *command.ComponentInteractionContext:
				s, e, store = v.Session, v.Event, v.Storage
				name = v.Event.MessageComponentData().CustomID
			default:
				return err
			}

			user := bot.InteractionUser(e)
			evt := log.Info()
			if err != nil {
				evt = log.Warn().Err(err)
			}
			evt.Str("command", name).
				Str("guild", e.GuildID).
				Str("channel", e.ChannelID).
				Str("user", user.ID).
				Dur("took", time.Since(start)).
				Msg("Command executed")

			if store != nil && e.GuildID != "" {
				entry := historyEntry(s, e, user, name)
				if lerr := store.AppendCommand(e.GuildID, entry); lerr != nil {
					log.Warn().Err(lerr).Str("command", name).Msg("Failed to record command")
				}
			}
			return err
		})
	}
}

// historyEntry resolves channel and guild names from state when available.
func historyEntry(s *discordgo.Session, e *discordgo.InteractionCreate, user *discordgo.User, name string) storage.CommandHistory {
	entry := storage.CommandHistory{
		ChannelID: e.ChannelID,
		UserID:    user.ID,
		Username:  user.Username,
		Command:   name,
		Datetime:  time.Now(),
	}
	if s == nil || s.State == nil {
		return entry
	}
	if ch, err := s.State.Channel(e.ChannelID); err == nil {
		entry.ChannelName = ch.Name
	}
	if g, err := s.State.Guild(e.GuildID); err == nil {
		entry.GuildName = g.Name
	}
	return entry
}
