// Package discord owns the gateway session: intents, handlers, command sync
// and the voice lookups commands need.
package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"ignis/internal/command"
	"ignis/internal/command/partnership"
	radiocmd "ignis/internal/command/radio"
	"ignis/internal/config"
	"ignis/internal/configstore"
	"ignis/internal/memberlog"
	"ignis/internal/middleware"
	rd "ignis/internal/radio"
	"ignis/internal/storage"
	"ignis/pkg/jobmgr"
	"ignis/pkg/retrylimit"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildModeration |
	discordgo.IntentsGuildVoiceStates

// partnershipWindow is how long the notify button of /parceria stays usable.
const partnershipWindow = 60 * time.Second

// Bot is the running Discord client.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage
	store   configstore.Store
	limiter *retrylimit.Limiter
	jobs    *jobmgr.Manager
	radio   *rd.Registry
	members *memberlog.Logger

	// guilds announced by Ready; their commands are synced there.
	known sync.Map
}

// New builds the session and every component hanging off it. Nothing
// connects until Run.
func New(cfg *config.Config, stor *storage.Storage, store configstore.Store) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = intents
	dg.StateEnabled = true
	dg.State.TrackVoice = true
	dg.State.TrackMembers = true

	b := &Bot{
		dg:      dg,
		cfg:     cfg,
		storage: stor,
		store:   store,
		limiter: retrylimit.New(40, 5),
		jobs: jobmgr.NewManager(func(s string) {
			log.Debug().Str("job", s).Msg("Background job")
		}),
	}
	voice := &stateVoice{s: dg}
	b.radio = rd.NewRegistry(rd.Options{
		Connect:   b.connectVoice,
		Occupancy: voice.HumansInChannel,
		OnIdle:    radiocmd.IdleNotifier(dg, store),
		Interval:  cfg.RadioIdleInterval,
		Grace:     cfg.RadioIdleGrace,
		Jobs:      b.jobs,
	})
	b.members = memberlog.New(store, memberlog.SessionAudit{S: dg}, memberlog.SessionSender{S: dg, Limiter: b.limiter})

	b.registerCommands(voice)
	return b, nil
}

// Radio exposes the session registry for status reporting.
func (b *Bot) Radio() *rd.Registry {
	return b.radio
}

// Jobs exposes the background jobs (idle watchers, command sync).
func (b *Bot) Jobs() *jobmgr.Manager {
	return b.jobs
}

// Run opens the gateway and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onInteractionCreate)
	b.members.Register(b.dg)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received, cleaning up")

	log.Info().Msg(b.jobs.Status())
	b.radio.StopAll()
	b.jobs.StopAll()
	if err := b.dg.Close(); err != nil {
		return fmt.Errorf("failed to close Discord session: %w", err)
	}
	return nil
}

// registerCommands adds the bot's commands to the default registry.
func (b *Bot) registerCommands(voice *stateVoice) {
	command.RegisterCommand(
		&radiocmd.RadioCommand{Store: b.store, Sessions: b.radio, Voice: voice},
		middleware.WithGuildOnly(),
		middleware.WithCommandLogger(),
	)
	command.RegisterCommand(
		&partnership.PartnershipCommand{Store: b.store, ContactID: b.cfg.PartnershipContactID, Window: partnershipWindow},
		middleware.WithGuildOnly(),
		middleware.WithCommandLogger(),
	)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	var guilds []string
	for _, g := range r.Guilds {
		b.known.Store(g.ID, true)
		if b.leaveIfBlacklisted(s, g.ID) {
			continue
		}
		guilds = append(guilds, g.ID)
	}

	if b.cfg.InitSlashCommands {
		err := b.jobs.StartAsync(syncJob, func(ctx context.Context) error {
			return b.syncGuilds(ctx, guilds)
		})
		if err != nil {
			log.Warn().Err(err).Msg("Command sync already in progress")
		}
	} else {
		log.Info().Msg("Registering slash commands skipped")
	}

	log.Info().Str("user", r.User.Username).Int("guilds", len(guilds)).Msg("Discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if _, seen := b.known.LoadOrStore(g.ID, true); seen {
		return
	}
	log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("Bot added to guild")
	if b.leaveIfBlacklisted(s, g.ID) {
		return
	}
	if !b.cfg.InitSlashCommands {
		return
	}
	err := b.jobs.StartAsync(syncJob+":"+g.ID, func(ctx context.Context) error {
		return b.syncCommands(ctx, g.ID)
	})
	if err != nil {
		log.Warn().Err(err).Str("guild", g.ID).Msg("Command sync already in progress")
	}
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.cfg.IsGuildBlacklisted(guildID) {
		return false
	}
	log.Info().Str("guild", guildID).Msg("Leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("Failed to leave guild")
	}
	return true
}
