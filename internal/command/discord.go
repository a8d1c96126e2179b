package command

import (
	"context"

	"ignis/internal/storage"
	"ignis/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// Discord-specific contexts (what the runtime passes when executing).

type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

type ComponentInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Storage *storage.Storage
}

// GuildID returns the guild of the interaction carried by a context, "" in DMs.
func GuildID(data any) string {
	switch v := data.(type) {
	case *SlashInteractionContext:
		return v.Event.GuildID
	case *ComponentInteractionContext:
		return v.Event.GuildID
	}
	return ""
}

// Providers: how a command is registered with Discord.

type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

type ComponentInteractionHandler interface {
	Component(*ComponentInteractionContext) error
}

// DiscordCommand is what individual Discord commands implement. Run receives
// a *SlashInteractionContext.
type DiscordCommand interface {
	Name() string
	Description() string
	Group() string
	Run(ctx any) error
}

// DiscordAdapter adapts a DiscordCommand to cmd.Command so it can live in the
// universal registry. Components are routed through Run too, so middleware
// sees both kinds of interaction.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string        { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string { return a.Cmd.Description() }
func (a *DiscordAdapter) Group() string       { return a.Cmd.Group() }

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	if c, ok := inv.Data.(*ComponentInteractionContext); ok {
		if ch, ok := a.Cmd.(ComponentInteractionHandler); ok {
			return ch.Component(c)
		}
		return nil
	}
	return a.Cmd.Run(inv.Data)
}

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// Definition returns the slash definition of a registered (possibly wrapped)
// command, or nil when it has none.
func Definition(c cmd.Command) *discordgo.ApplicationCommand {
	sp, ok := cmd.Root(c).(SlashProvider)
	if !ok {
		return nil
	}
	def := sp.SlashDefinition()
	if def != nil && def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}

// RegisterCommand registers a Discord command with the default registry and
// applies middlewares.
func RegisterCommand(discordCmd DiscordCommand, mws ...cmd.Middleware) {
	Register(cmd.DefaultRegistry, discordCmd, mws...)
}

// Register is RegisterCommand for an explicit registry.
func Register(reg *cmd.Registry, discordCmd DiscordCommand, mws ...cmd.Middleware) {
	reg.Register(cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...))
}
