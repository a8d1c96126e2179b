package memberlog

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	auditLimit     = 5
	moveAuditLimit = 10
)

const (
	changeTimeout  = discordgo.AuditLogChangeKey("communication_disabled_until")
	changeNickname = discordgo.AuditLogChangeKey("nick")
)

// AuditSource fetches recent audit log entries of one action type.
type AuditSource interface {
	AuditLog(guildID string, action discordgo.AuditLogAction, limit int) (*discordgo.GuildAuditLog, error)
}

// auditHit is the executor tag and reason of a matched entry.
type auditHit struct {
	ExecutorID string
	Executor   string
	Reason     string
	CreatedAt  time.Time
}

type entryFilter func(*discordgo.AuditLogEntry) bool

func hasChange(key discordgo.AuditLogChangeKey) entryFilter {
	return func(e *discordgo.AuditLogEntry) bool {
		for _, c := range e.Changes {
			if c != nil && c.Key != nil && *c.Key == key {
				return true
			}
		}
		return false
	}
}

// timeoutCleared matches a timeout change whose new value is empty.
func timeoutCleared(e *discordgo.AuditLogEntry) bool {
	for _, c := range e.Changes {
		if c != nil && c.Key != nil && *c.Key == changeTimeout && c.OldValue != nil && c.NewValue == nil {
			return true
		}
	}
	return false
}

// find returns the first entry of action targeting targetID that passes
// every filter. Lookup failures yield ok=false.
func (l *Logger) find(guildID string, action discordgo.AuditLogAction, targetID string, filters ...entryFilter) (auditHit, bool) {
	if l.audit == nil {
		return auditHit{}, false
	}
	logs, err := l.audit.AuditLog(guildID, action, auditLimit)
	if err != nil || logs == nil {
		log.Debug().Err(err).Str("guild", guildID).Int("action", int(action)).Msg("audit log lookup failed")
		return auditHit{}, false
	}
	for _, e := range logs.AuditLogEntries {
		if e == nil || e.TargetID != targetID || !passes(e, filters) {
			continue
		}
		return hitFor(e, logs.Users), true
	}
	return auditHit{}, false
}

func passes(e *discordgo.AuditLogEntry, filters []entryFilter) bool {
	for _, f := range filters {
		if !f(e) {
			return false
		}
	}
	return true
}

func hitFor(e *discordgo.AuditLogEntry, users []*discordgo.User) auditHit {
	hit := auditHit{ExecutorID: e.UserID, Reason: e.Reason}
	if ts, err := discordgo.SnowflakeTimestamp(e.ID); err == nil {
		hit.CreatedAt = ts
	}
	for _, u := range users {
		if u != nil && u.ID == e.UserID {
			hit.Executor = u.String()
			break
		}
	}
	return hit
}

// recentKick reports the kick that removed userID, if the newest kick entry
// targets the member and is younger than the kick window.
func (l *Logger) recentKick(guildID, userID string) *kick {
	if l.audit == nil {
		return nil
	}
	logs, err := l.audit.AuditLog(guildID, discordgo.AuditLogActionMemberKick, 1)
	if err != nil || logs == nil || len(logs.AuditLogEntries) == 0 {
		return nil
	}
	e := logs.AuditLogEntries[0]
	if e == nil || e.TargetID != userID {
		return nil
	}
	hit := hitFor(e, logs.Users)
	if hit.CreatedAt.IsZero() || l.now().Sub(hit.CreatedAt) >= l.recentWindow {
		return nil
	}
	return &kick{Executor: hit.Executor, Reason: hit.Reason}
}

// mover returns the ID of whoever moved userID into channelID, or "" when the
// member moved themselves or no recent entry exists. Move entries carry the
// destination channel in their options rather than a target.
func (l *Logger) mover(guildID, userID, channelID string) string {
	if l.audit == nil {
		return ""
	}
	logs, err := l.audit.AuditLog(guildID, discordgo.AuditLogActionMemberMove, moveAuditLimit)
	if err != nil || logs == nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("failed to fetch member move audit log")
		return ""
	}
	var (
		best   auditHit
		bestAt time.Time
	)
	now := l.now()
	for _, e := range logs.AuditLogEntries {
		if e == nil || e.UserID == "" {
			continue
		}
		if e.TargetID != userID && !(e.TargetID == "" && e.Options != nil && e.Options.ChannelID == channelID) {
			continue
		}
		hit := hitFor(e, logs.Users)
		if hit.CreatedAt.IsZero() || now.Sub(hit.CreatedAt) >= l.recentWindow {
			continue
		}
		if hit.CreatedAt.After(bestAt) {
			best, bestAt = hit, hit.CreatedAt
		}
	}
	if best.ExecutorID == userID {
		return ""
	}
	return best.ExecutorID
}
