package memberlog

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"ignis/internal/bot"
	"ignis/pkg/retrylimit"
)

// SessionAudit reads audit logs through a discordgo session.
type SessionAudit struct {
	S *discordgo.Session
}

func (a SessionAudit) AuditLog(guildID string, action discordgo.AuditLogAction, limit int) (*discordgo.GuildAuditLog, error) {
	return a.S.GuildAuditLog(guildID, "", "", int(action), limit)
}

// SessionSender posts embeds through a discordgo session, paced and retried
// by Limiter when one is set.
type SessionSender struct {
	S       *discordgo.Session
	Limiter *retrylimit.Limiter
}

func (s SessionSender) Send(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	send := func() error {
		return bot.MessageEmbed(s.S, channelID, embed)
	}
	if s.Limiter == nil {
		return send()
	}
	return s.Limiter.Do(ctx, send)
}

func (s SessionSender) CanSend(channelID string) bool {
	return bot.CanSend(s.S, channelID)
}
