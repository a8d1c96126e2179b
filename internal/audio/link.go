package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type voiceConn interface {
	Speaking(b bool) error
	Disconnect() error
}

// Options configures a Link. Zero values select ffmpeg, libopus and unit gain.
type Options struct {
	Volume     float64
	Source     Source
	NewEncoder func() (Encoder, error)
	OnError    func(error)
}

// Link plays one stream at a time into a guild voice connection.
type Link struct {
	conn voiceConn
	out  chan<- []byte
	opts Options

	mu      sync.Mutex
	onError func(error)
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewLink wraps a joined voice connection.
func NewLink(vc *discordgo.VoiceConnection, opts Options) *Link {
	return newLink(vc, vc.OpusSend, opts)
}

func newLink(conn voiceConn, out chan<- []byte, opts Options) *Link {
	if opts.Source == nil {
		opts.Source = FFmpegSource
	}
	if opts.NewEncoder == nil {
		opts.NewEncoder = NewOpusEncoder
	}
	if opts.Volume <= 0 {
		opts.Volume = 1
	}
	return &Link{conn: conn, out: out, opts: opts, onError: opts.OnError}
}

// SetErrorHandler replaces the callback that receives playback failures.
func (l *Link) SetErrorHandler(fn func(error)) {
	l.mu.Lock()
	l.onError = fn
	l.mu.Unlock()
}

// Play stops whatever is playing and starts url. Errors opening the stream
// are returned; later failures go to the error handler.
func (l *Link) Play(url string) error {
	l.Stop()

	enc, err := l.opts.NewEncoder()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := l.opts.Source(ctx, url)
	if err != nil {
		cancel()
		return fmt.Errorf("open stream: %w", err)
	}

	done := make(chan struct{})
	l.mu.Lock()
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()

	go func() {
		defer close(done)
		defer stream.Close()

		if err := l.conn.Speaking(true); err != nil {
			log.Debug().Err(err).Msg("Failed to set speaking state")
		}
		err := Pump(ctx, stream, enc, l.opts.Volume, l.out)
		_ = l.conn.Speaking(false)

		if err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Str("url", url).Msg("Radio playback stopped")
			l.report(err)
		}
	}()
	return nil
}

func (l *Link) report(err error) {
	l.mu.Lock()
	fn := l.onError
	l.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Stop ends the current stream and waits for its goroutine to exit.
func (l *Link) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Playing reports whether a stream goroutine is active.
func (l *Link) Playing() bool {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// Disconnect stops playback and leaves the voice channel.
func (l *Link) Disconnect() error {
	l.Stop()
	if err := l.conn.Disconnect(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
