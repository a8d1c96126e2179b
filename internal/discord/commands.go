package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"ignis/internal/command"
	"ignis/pkg/cmd"
	"ignis/pkg/util"
)

const (
	syncJob     = "command-sync"
	syncWorkers = 4
	syncTimeout = 2 * time.Minute
)

// syncGuilds registers commands in every guild, a few guilds at a time.
// Per-guild failures are logged; only cancellation aborts the run.
func (b *Bot) syncGuilds(ctx context.Context, guildIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	err := util.Parallel(ctx, guildIDs, syncWorkers, func(ctx context.Context, guildID string) error {
		if err := b.syncCommands(ctx, guildID); err != nil {
			log.Error().Err(err).Str("guild", guildID).Msg("Failed to register commands")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("command sync aborted: %w", err)
	}
	return nil
}

// syncCommands brings a guild's slash commands in line with the registry:
// obsolete ones are deleted and those whose definition hash changed since
// the last sync are created again.
func (b *Bot) syncCommands(ctx context.Context, guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}

	remote, err := b.dg.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("failed to list commands: %w", err)
	}
	cached, err := b.storage.CommandHashes(guildID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("Failed to read command hashes, registering everything")
		cached = map[string]string{}
	}

	local := definitions(cmd.DefaultRegistry)
	plan := planSync(local, remote, cached)

	for _, rc := range plan.Delete {
		err := b.limiter.Do(ctx, func() error {
			return b.dg.ApplicationCommandDelete(appID, guildID, rc.ID)
		})
		if err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("command", rc.Name).Msg("Failed to delete obsolete command")
			continue
		}
		log.Info().Str("guild", guildID).Str("command", rc.Name).Msg("Deleted obsolete command")
	}

	for _, def := range plan.Create {
		err := b.limiter.Do(ctx, func() error {
			_, err := b.dg.ApplicationCommandCreate(appID, guildID, def)
			return err
		})
		if err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("command", def.Name).Msg("Failed to register command")
			delete(plan.Hashes, def.Name)
			continue
		}
		log.Info().Str("guild", guildID).Str("command", def.Name).Msg("Registered command")
	}

	return b.storage.SetCommandHashes(guildID, plan.Hashes)
}

// syncPlan is what syncCommands has to do for one guild.
type syncPlan struct {
	Delete []*discordgo.ApplicationCommand
	Create []*discordgo.ApplicationCommand
	// Hashes is the hash table to persist once the plan has run.
	Hashes map[string]string
}

func planSync(local, remote []*discordgo.ApplicationCommand, cached map[string]string) syncPlan {
	plan := syncPlan{Hashes: make(map[string]string, len(local))}

	wanted := make(map[string]bool, len(local))
	for _, d := range local {
		wanted[d.Name] = true
	}
	registered := make(map[string]bool, len(remote))
	for _, rc := range remote {
		registered[rc.Name] = true
		if !wanted[rc.Name] {
			plan.Delete = append(plan.Delete, rc)
		}
	}

	for _, d := range local {
		h := hashCommand(d)
		plan.Hashes[d.Name] = h
		if cached[d.Name] != h || !registered[d.Name] {
			plan.Create = append(plan.Create, d)
		}
	}
	return plan
}

// definitions returns the slash definitions of every registered command.
func definitions(reg *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range reg.GetAll() {
		if def := command.Definition(c); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// appID returns the bot's application ID, fetching it when State has none.
func (b *Bot) appID() (string, error) {
	if b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}
