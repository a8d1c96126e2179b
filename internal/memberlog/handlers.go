package memberlog

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

func (l *Logger) OnMemberAdd(_ *discordgo.Session, e *discordgo.GuildMemberAdd) {
	if e.Member == nil || e.User == nil {
		return
	}
	ctx, cancel := storeContext()
	defer cancel()
	if ch := l.target(ctx); ch != "" {
		l.post(ctx, e.GuildID, ch, joinEmbed(e.User, l.now()))
	}
}

func (l *Logger) OnMemberRemove(_ *discordgo.Session, e *discordgo.GuildMemberRemove) {
	if e.Member == nil || e.User == nil {
		return
	}
	ctx, cancel := storeContext()
	defer cancel()
	ch := l.target(ctx)
	if ch == "" {
		return
	}
	l.post(ctx, e.GuildID, ch, leaveEmbed(e.User, l.recentKick(e.GuildID, e.User.ID), l.now()))
}

func (l *Logger) OnBanAdd(_ *discordgo.Session, e *discordgo.GuildBanAdd) {
	if e.User == nil {
		return
	}
	ctx, cancel := storeContext()
	defer cancel()
	ch := l.target(ctx)
	if ch == "" {
		return
	}
	hit, _ := l.find(e.GuildID, discordgo.AuditLogActionMemberBanAdd, e.User.ID)
	l.post(ctx, e.GuildID, ch, banEmbed(e.User, hit.Executor, hit.Reason, l.now()))
}

func (l *Logger) OnBanRemove(_ *discordgo.Session, e *discordgo.GuildBanRemove) {
	if e.User == nil {
		return
	}
	ctx, cancel := storeContext()
	defer cancel()
	ch := l.target(ctx)
	if ch == "" {
		return
	}
	hit, _ := l.find(e.GuildID, discordgo.AuditLogActionMemberBanRemove, e.User.ID)
	l.post(ctx, e.GuildID, ch, unbanEmbed(e.User, hit.Executor, l.now()))
}

// OnMemberUpdate needs the cached previous member; without it nothing can be
// compared and the event is dropped.
func (l *Logger) OnMemberUpdate(_ *discordgo.Session, e *discordgo.GuildMemberUpdate) {
	if e.Member == nil || e.User == nil || e.User.Bot || e.BeforeUpdate == nil {
		return
	}
	ctx, cancel := storeContext()
	defer cancel()
	ch := l.target(ctx)
	if ch == "" {
		return
	}

	before, after := e.BeforeUpdate, e.Member
	u := after.User
	now := l.now()

	added, removed := diffRoles(before.Roles, after.Roles)
	if len(added) > 0 || len(removed) > 0 {
		hit, _ := l.find(e.GuildID, discordgo.AuditLogActionMemberRoleUpdate, u.ID)
		l.post(ctx, e.GuildID, ch, rolesEmbed(u, added, removed, hit.Executor, now))
	}

	wasOut, isOut := timedOut(before.CommunicationDisabledUntil, now), timedOut(after.CommunicationDisabledUntil, now)
	switch {
	case !wasOut && isOut:
		hit, _ := l.find(e.GuildID, discordgo.AuditLogActionMemberUpdate, u.ID, hasChange(changeTimeout))
		l.post(ctx, e.GuildID, ch, timeoutEmbed(u, *after.CommunicationDisabledUntil, hit.Executor, hit.Reason, now))
	case wasOut && !isOut:
		hit, _ := l.find(e.GuildID, discordgo.AuditLogActionMemberUpdate, u.ID, timeoutCleared)
		l.post(ctx, e.GuildID, ch, timeoutRemovedEmbed(u, hit.Executor, now))
	}

	if before.Nick != after.Nick {
		hit, _ := l.find(e.GuildID, discordgo.AuditLogActionMemberUpdate, u.ID, hasChange(changeNickname))
		l.post(ctx, e.GuildID, ch, nicknameEmbed(u, before.Nick, after.Nick, hit.Executor, now))
	}

	if before.User != nil {
		l.post(ctx, e.GuildID, ch, profileEmbed(before.User, u, now))
	}
}

func (l *Logger) OnVoiceStateUpdate(_ *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	if e.VoiceState == nil {
		return
	}
	if e.Member != nil && e.Member.User != nil && e.Member.User.Bot {
		return
	}
	var from string
	if e.BeforeUpdate != nil {
		from = e.BeforeUpdate.ChannelID
	}
	to := e.ChannelID
	if from == to {
		return
	}

	ctx, cancel := storeContext()
	defer cancel()
	ch := l.target(ctx)
	if ch == "" {
		return
	}
	st := l.status(ctx)
	now := l.now()

	switch {
	case from == "":
		l.post(ctx, e.GuildID, ch, voiceJoinEmbed(st, e.UserID, to, now))
	case to == "":
		l.post(ctx, e.GuildID, ch, voiceLeaveEmbed(st, e.UserID, from, now))
	default:
		if l.moveDelay > 0 {
			time.Sleep(l.moveDelay)
		}
		mover := l.mover(e.GuildID, e.UserID, to)
		l.post(ctx, e.GuildID, ch, voiceMoveEmbed(st, e.UserID, from, to, mover, l.now()))
	}
}

func timedOut(until *time.Time, now time.Time) bool {
	return until != nil && until.After(now)
}

// diffRoles returns the roles present only in after and only in before,
// keeping each slice's order.
func diffRoles(before, after []string) (added, removed []string) {
	had := make(map[string]bool, len(before))
	for _, r := range before {
		had[r] = true
	}
	has := make(map[string]bool, len(after))
	for _, r := range after {
		has[r] = true
		if !had[r] {
			added = append(added, r)
		}
	}
	for _, r := range before {
		if !has[r] {
			removed = append(removed, r)
		}
	}
	return added, removed
}
