package middleware

import (
	"context"

	"github.com/rs/zerolog/log"

	"ignis/internal/bot"
	"ignis/internal/command"
	"ignis/pkg/cmd"
)

const guildOnlyMessage = "❌ Este comando só pode ser usado em servidores."

// WithGuildOnly refuses interactions that do not come from a guild.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if command.GuildID(inv.Data) != "" {
				return c.Run(ctx, inv)
			}
			switch v := inv.Data.(type) {
			case *command.SlashInteractionContext:
				if v.Session != nil {
					if err := bot.RespondEphemeral(v.Session, v.Event, guildOnlyMessage); err != nil {
						log.Warn().Err(err).Str("command", c.Name()).Msg("Failed to refuse DM command")
					}
				}
			case *command.ComponentInteractionContext:
				if v.Session != nil {
					_ = bot.RespondEphemeral(v.Session, v.Event, guildOnlyMessage)
				}
			}
			return nil
		})
	}
}
