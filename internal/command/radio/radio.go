package radio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"ignis/internal/bot"
	"ignis/internal/command"
	"ignis/internal/configstore"
	rd "ignis/internal/radio"
)

// ConfigSource is the part of the document store the radio command reads.
type ConfigSource interface {
	rd.ChannelSource
	rd.ScopeSource
	Radios(ctx context.Context) (configstore.Radios, error)
}

// RadioCommand streams internet radio stations into the member's voice
// channel. One session per guild, controlled by the member who started it.
type RadioCommand struct {
	Store    ConfigSource
	Sessions *rd.Registry
	Voice    bot.Voice
}

func (c *RadioCommand) Name() string        { return "radio" }
func (c *RadioCommand) Description() string { return "Toca uma rádio no canal de voz dedicado" }
func (c *RadioCommand) Group() string       { return "music" }

func (c *RadioCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *RadioCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}
	s, e := slash.Session, slash.Event
	user := bot.InteractionUser(e)

	sctx, cancel := storeContext()
	defer cancel()

	if msg := c.checkAccess(sctx, e.GuildID, e.ChannelID, user.ID, memberRoles(e)); msg != "" {
		return bot.RespondEphemeral(s, e, msg)
	}

	cat := c.catalog(sctx)
	if cat.Empty() {
		return bot.RespondEphemeral(s, e, msgNoRadios)
	}
	return bot.RespondData(s, e, countryPrompt(cat))
}

// checkAccess runs the /radio entry checks in order and returns the refusal
// to show, or "" when the member may continue.
func (c *RadioCommand) checkAccess(ctx context.Context, guildID, channelID, userID string, roles []string) string {
	if !rd.IsDJ(ctx, c.Store, roles) {
		return msgNotDJ
	}

	var wrong *rd.WrongChannelError
	switch err := rd.CheckChannel(ctx, c.Store, channelID); {
	case err == nil:
	case errors.Is(err, rd.ErrNoBotChannel):
		return msgNoBotChannel
	case errors.As(err, &wrong):
		return fmt.Sprintf(msgWrongChannel, wrong.BotChannelID)
	default:
		if err != rd.ErrNoChannelConfig {
			log.Warn().Err(err).Str("guild", guildID).Msg("Failed to read channel configuration")
		}
		return msgNoChannelConfig
	}

	if _, ok := c.Voice.UserVoiceChannel(guildID, userID); !ok {
		return msgNotInVoice
	}
	return ownerMessage(c.Sessions.Authorize(guildID, userID))
}

// ownerMessage turns an ownership error into its refusal text.
func ownerMessage(err error) string {
	var owner *rd.NotOwnerError
	if errors.As(err, &owner) {
		return fmt.Sprintf(msgNotOwner, owner.OwnerID)
	}
	return ""
}

// catalog loads the radios document. A missing or unreadable document is an
// empty catalog.
func (c *RadioCommand) catalog(ctx context.Context) *rd.Catalog {
	radios, err := c.Store.Radios(ctx)
	if err != nil && !errors.Is(err, configstore.ErrNotFound) {
		log.Error().Err(err).Msg("Failed to load radios")
	}
	return rd.NewCatalog(radios)
}

func memberRoles(e *discordgo.InteractionCreate) []string {
	if e.Member == nil {
		return nil
	}
	return e.Member.Roles
}

const storeTimeout = 5 * time.Second

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
