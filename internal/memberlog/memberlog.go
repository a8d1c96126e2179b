// Package memberlog mirrors membership, moderation and voice activity of a
// guild into the configured member log channel.
package memberlog

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"ignis/internal/configstore"
)

const (
	defaultMoveDelay    = 700 * time.Millisecond
	defaultRecentWindow = 5 * time.Second
	storeTimeout        = 5 * time.Second
)

// ConfigSource is the part of the config store the listeners read.
type ConfigSource interface {
	Channels(ctx context.Context) (*configstore.Channels, error)
	Status(ctx context.Context) (*configstore.Status, error)
}

// Sender posts embeds to a channel.
type Sender interface {
	Send(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
	CanSend(channelID string) bool
}

// Logger turns guild events into member log entries.
type Logger struct {
	config ConfigSource
	audit  AuditSource
	out    Sender

	now          func() time.Time
	moveDelay    time.Duration
	recentWindow time.Duration
}

func New(config ConfigSource, audit AuditSource, out Sender) *Logger {
	return &Logger{
		config:       config,
		audit:        audit,
		out:          out,
		now:          time.Now,
		moveDelay:    defaultMoveDelay,
		recentWindow: defaultRecentWindow,
	}
}

// Register adds every listener to s.
func (l *Logger) Register(s *discordgo.Session) {
	s.AddHandler(l.OnMemberAdd)
	s.AddHandler(l.OnMemberRemove)
	s.AddHandler(l.OnBanAdd)
	s.AddHandler(l.OnBanRemove)
	s.AddHandler(l.OnMemberUpdate)
	s.AddHandler(l.OnVoiceStateUpdate)
}

// target resolves the member log channel. It returns "" when the channel is
// not configured or the bot cannot post there.
func (l *Logger) target(ctx context.Context) string {
	channels, err := l.config.Channels(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("member log: failed to read channel config")
		return ""
	}
	id := channels.ChannelByName(configstore.ChannelMemberLog)
	if id == "" || !l.out.CanSend(id) {
		return ""
	}
	return id
}

func (l *Logger) status(ctx context.Context) *configstore.Status {
	st, err := l.config.Status(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("member log: failed to read status config, using defaults")
		return nil
	}
	return st
}

func (l *Logger) post(ctx context.Context, guildID, channelID string, embed *discordgo.MessageEmbed) {
	if embed == nil {
		return
	}
	if err := l.out.Send(ctx, channelID, embed); err != nil {
		log.Error().Err(err).Str("guild", guildID).Str("channel", channelID).Str("title", embed.Title).Msg("failed to send member log entry")
	}
}

func storeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}
