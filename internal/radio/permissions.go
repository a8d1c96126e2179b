package radio

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"ignis/internal/configstore"
)

var (
	ErrNoChannelConfig = errors.New("channel configuration not found")
	ErrNoBotChannel    = errors.New("bot channel not configured")
	ErrNotInVoice      = errors.New("member is not in a voice channel")
)

// WrongChannelError means the command was used outside the bot channel.
type WrongChannelError struct {
	BotChannelID string
}

func (e *WrongChannelError) Error() string {
	return fmt.Sprintf("radio commands are restricted to channel %s", e.BotChannelID)
}

type ChannelSource interface {
	Channels(ctx context.Context) (*configstore.Channels, error)
}

type ScopeSource interface {
	Scopes(ctx context.Context) (*configstore.Scopes, error)
}

// IsDJ reports whether a member holding roles may use the radio. A missing
// DJ role, or a store that cannot be read, lets everyone through.
func IsDJ(ctx context.Context, src ScopeSource, roles []string) bool {
	scopes, err := src.Scopes(ctx)
	if err != nil {
		if !errors.Is(err, configstore.ErrNotFound) {
			log.Warn().Err(err).Msg("Failed to read scopes, allowing radio access")
		}
		return true
	}
	dj := scopes.DJRoleID()
	if dj == "" {
		return true
	}
	return slices.Contains(roles, dj)
}

// BotChannel returns the ID of the channel named "bot".
func BotChannel(ctx context.Context, src ChannelSource) (string, error) {
	channels, err := src.Channels(ctx)
	if err != nil {
		if errors.Is(err, configstore.ErrNotFound) {
			return "", ErrNoChannelConfig
		}
		return "", fmt.Errorf("%w: %v", ErrNoChannelConfig, err)
	}
	id := channels.ChannelByName(configstore.ChannelBot)
	if id == "" {
		return "", ErrNoBotChannel
	}
	return id, nil
}

// CheckChannel fails unless channelID is the configured bot channel.
func CheckChannel(ctx context.Context, src ChannelSource, channelID string) error {
	bot, err := BotChannel(ctx, src)
	if err != nil {
		return err
	}
	if channelID != bot {
		return &WrongChannelError{BotChannelID: bot}
	}
	return nil
}
