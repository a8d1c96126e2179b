package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"ignis/internal/audio"
	rd "ignis/internal/radio"
)

// stateVoice answers voice questions from the gateway state cache.
type stateVoice struct {
	s *discordgo.Session
}

func (v *stateVoice) UserVoiceChannel(guildID, userID string) (string, bool) {
	g, err := v.s.State.Guild(guildID)
	if err != nil {
		return "", false
	}
	for _, vs := range g.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, true
		}
	}
	return "", false
}

// HumansInChannel counts members in channelID that are not bots. Members
// missing from the cache count as humans.
func (v *stateVoice) HumansInChannel(guildID, channelID string) (int, error) {
	g, err := v.s.State.Guild(guildID)
	if err != nil {
		return 0, fmt.Errorf("guild %s not in state: %w", guildID, err)
	}
	self := ""
	if v.s.State.User != nil {
		self = v.s.State.User.ID
	}

	n := 0
	for _, vs := range g.VoiceStates {
		if vs.ChannelID != channelID || vs.UserID == self {
			continue
		}
		if v.isBot(guildID, vs) {
			continue
		}
		n++
	}
	return n, nil
}

func (v *stateVoice) isBot(guildID string, vs *discordgo.VoiceState) bool {
	if vs.Member != nil && vs.Member.User != nil {
		return vs.Member.User.Bot
	}
	m, err := v.s.State.Member(guildID, vs.UserID)
	if err != nil || m.User == nil {
		return false
	}
	return m.User.Bot
}

// connectVoice joins channelID deafened and wraps the connection in an audio
// link at the configured volume.
func (b *Bot) connectVoice(_ context.Context, guildID, channelID string) (rd.Link, error) {
	vc, err := b.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		if vc != nil {
			_ = vc.Disconnect()
		}
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	return audio.NewLink(vc, audio.Options{Volume: b.cfg.RadioVolume}), nil
}
