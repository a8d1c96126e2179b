package radio

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// watch returns the idle watcher job for a session. Every interval it counts
// listeners; when the channel is empty it waits grace, counts again and stops
// the session if still nobody is there.
func (r *Registry) watch(guildID, channelID string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(r.opts.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

			if !r.empty(guildID, channelID) {
				continue
			}
			log.Debug().Str("guild", guildID).Str("channel", channelID).Dur("grace", r.opts.Grace).
				Msg("Radio channel empty, waiting before disconnect")

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.opts.Grace):
			}

			if !r.empty(guildID, channelID) {
				continue
			}
			r.stopIdle(ctx, guildID)
			return nil
		}
	}
}

func (r *Registry) empty(guildID, channelID string) bool {
	if r.opts.Occupancy == nil {
		return false
	}
	n, err := r.opts.Occupancy(guildID, channelID)
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("Failed to count voice members")
		return false
	}
	return n == 0
}

func (r *Registry) stopIdle(ctx context.Context, guildID string) {
	l := r.guildLock(guildID)
	l.Lock()
	// a cancelled watcher was replaced or stopped while waiting for the lock
	if ctx.Err() != nil {
		l.Unlock()
		return
	}
	snap, err := r.stopLocked(guildID)
	l.Unlock()

	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("Idle disconnect failed")
	}
	if snap.GuildID == "" {
		return
	}
	log.Info().Str("guild", guildID).Msg("Radio disconnected for inactivity")
	if r.opts.OnIdle != nil {
		r.opts.OnIdle(snap)
	}
}
