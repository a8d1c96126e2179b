// Package retrylimit paces Discord REST calls through a token bucket and
// retries the ones Discord rejects with 429 or 5xx.
//
//	lim := retrylimit.New(5, 3)
//	err := lim.Do(ctx, func() error {
//	    _, err := s.ChannelMessageSendEmbed(channelID, embed)
//	    return err
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Config tunes the retry loop.
type Config struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	RateLimitDelay time.Duration
	Multiplier     float64
	Jitter         bool
	Classifier     Classifier
}

// Classifier reports whether err is worth another attempt.
type Classifier func(error) bool

// DefaultConfig allows three attempts with exponential backoff from 500ms.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		RateLimitDelay: time.Second,
		Multiplier:     2.0,
		Jitter:         true,
		Classifier:     Retryable,
	}
}

// Limiter shares one token bucket between all callers.
type Limiter struct {
	limiter *rate.Limiter
	cfg     Config
}

// New returns a Limiter allowing rps requests per second with the given burst.
func New(rps float64, burst int) *Limiter {
	return NewWithConfig(rps, burst, DefaultConfig())
}

// NewWithConfig is New with an explicit retry configuration.
func NewWithConfig(rps float64, burst int, cfg Config) *Limiter {
	if burst < 1 {
		burst = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}
	if cfg.Classifier == nil {
		cfg.Classifier = Retryable
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		cfg:     cfg,
	}
}

// Do waits for a token and runs fn, retrying retryable failures until the
// attempts are exhausted or ctx ends. The last error is returned wrapped.
func (l *Limiter) Do(ctx context.Context, fn func() error) error {
	delay := l.cfg.InitialDelay
	var err error

	for attempt := 1; attempt <= l.cfg.MaxAttempts; attempt++ {
		if werr := l.limiter.Wait(ctx); werr != nil {
			return werr
		}

		err = fn()
		if err == nil {
			return nil
		}
		if !l.cfg.Classifier(err) || attempt == l.cfg.MaxAttempts {
			break
		}

		sleep := delay
		if StatusCode(err) == http.StatusTooManyRequests {
			sleep = l.cfg.RateLimitDelay
		} else if l.cfg.Jitter {
			sleep = addJitter(delay)
		}
		log.Debug().Err(err).Int("attempt", attempt).Dur("sleep", sleep).Msg("Retrying Discord request")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay = time.Duration(float64(delay) * l.cfg.Multiplier)
		if delay > l.cfg.MaxDelay {
			delay = l.cfg.MaxDelay
		}
	}

	return fmt.Errorf("discord request failed: %w", err)
}

// StatusCode extracts the HTTP status from a discordgo REST error, or 0.
func StatusCode(err error) int {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		return rest.Response.StatusCode
	}
	return 0
}

// Retryable is true for 429 and 5xx responses.
func Retryable(err error) bool {
	code := StatusCode(err)
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

// addJitter adds up to 25% of delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(int64(delay/4)))
}
