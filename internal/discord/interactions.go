package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"ignis/internal/bot"
	"ignis/internal/command"
	"ignis/pkg/cmd"
)

const msgInternalError = "❌ Ocorreu um erro ao executar este comando."

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		c, ok := cmd.DefaultRegistry.Get(name)
		if !ok {
			log.Warn().Str("command", name).Msg("Unknown command")
			return
		}
		b.invoke(s, i, c, &command.SlashInteractionContext{Session: s, Event: i, Storage: b.storage})

	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		c, ok := cmd.DefaultRegistry.MatchPrefix(customID)
		if !ok {
			log.Warn().Str("custom_id", customID).Msg("No command owns component")
			return
		}
		b.invoke(s, i, c, &command.ComponentInteractionContext{Session: s, Event: i, Storage: b.storage})

	default:
		log.Debug().Int("type", int(i.Type)).Msg("Ignoring interaction")
	}
}

// invoke runs c. Errors that escape a command are logged and answered with
// a generic ephemeral notice; a failed answer usually means the command had
// already responded.
func (b *Bot) invoke(s *discordgo.Session, i *discordgo.InteractionCreate, c cmd.Command, data any) {
	err := c.Run(context.Background(), &cmd.Invocation{Data: data})
	if err == nil {
		return
	}
	log.Error().Err(err).Str("command", c.Name()).Str("guild", i.GuildID).Msg("Command failed")

	embed := &discordgo.MessageEmbed{Description: msgInternalError, Color: 0xED4245}
	if rerr := bot.RespondEmbedEphemeral(s, i, embed); rerr != nil {
		log.Debug().Err(rerr).Str("command", c.Name()).Msg("Could not report command failure")
	}
}
