package radio

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"ignis/pkg/jobmgr"
)

var (
	ErrNoSession = errors.New("no radio session")
	ErrNotOwner  = errors.New("radio session belongs to another member")
)

// NotOwnerError carries the owner of the session the caller tried to control.
type NotOwnerError struct {
	OwnerID string
}

func (e *NotOwnerError) Error() string {
	return fmt.Sprintf("radio session is owned by %s", e.OwnerID)
}

func (e *NotOwnerError) Is(target error) bool { return target == ErrNotOwner }

// Link is an audio connection to one voice channel.
type Link interface {
	Play(url string) error
	Stop()
	Disconnect() error
}

// errorReporter is implemented by links that report playback failures after
// Play has returned.
type errorReporter interface {
	SetErrorHandler(func(error))
}

// Connector joins channelID in guildID and returns its audio link.
type Connector func(ctx context.Context, guildID, channelID string) (Link, error)

// Occupancy counts the non-bot members in a voice channel.
type Occupancy func(guildID, channelID string) (int, error)

// ControlMessage locates the now-playing message of a session.
type ControlMessage struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
}

func (m ControlMessage) IsZero() bool { return m.MessageID == "" }

// Session is a snapshot of one guild's radio.
type Session struct {
	GuildID        string         `json:"guild_id"`
	OwnerID        string         `json:"owner_id"`
	VoiceChannelID string         `json:"voice_channel_id"`
	Country        string         `json:"country"`
	Index          int            `json:"index"`
	Station        Station        `json:"station"`
	Control        ControlMessage `json:"control"`
	StartedAt      time.Time      `json:"started_at"`
}

type entry struct {
	Session
	link Link
}

// Options configures a Registry. OnIdle runs after the idle watcher has
// stopped a session. A zero Grace stops an empty session on the first
// empty count; a zero Interval selects 15s.
type Options struct {
	Connect   Connector
	Occupancy Occupancy
	OnIdle    func(Session)
	Interval  time.Duration
	Grace     time.Duration
	Jobs      *jobmgr.Manager
}

// Registry owns every radio session, at most one per guild.
type Registry struct {
	opts Options
	jobs *jobmgr.Manager

	mu       sync.Mutex
	sessions map[string]*entry
	locks    map[string]*sync.Mutex
}

func NewRegistry(opts Options) *Registry {
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Second
	}
	if opts.Grace < 0 {
		opts.Grace = 0
	}
	jobs := opts.Jobs
	if jobs == nil {
		jobs = jobmgr.NewManager(nil)
	}
	return &Registry{
		opts:     opts,
		jobs:     jobs,
		sessions: make(map[string]*entry),
		locks:    make(map[string]*sync.Mutex),
	}
}

// guildLock serialises operations on one guild without blocking the others
// while a voice connection is being made.
func (r *Registry) guildLock(guildID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[guildID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[guildID] = l
	}
	return l
}

func (r *Registry) lookup(guildID string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[guildID]
}

// TuneRequest asks for station Index of Country to play in a guild.
type TuneRequest struct {
	GuildID        string
	UserID         string
	VoiceChannelID string
	Country        string
	Index          int
	Station        Station
	// OnError receives playback failures that happen after Tune returns.
	OnError func(error)
}

// Tune plays a station, creating the session on first use. Only the owner may
// retune an existing session. A session created here is torn down again when
// the first play fails.
func (r *Registry) Tune(ctx context.Context, req TuneRequest) (Session, error) {
	if req.Station.URL == "" {
		return Session{}, fmt.Errorf("%w: %s", ErrNoStationURL, req.Station.Name)
	}

	l := r.guildLock(req.GuildID)
	l.Lock()
	defer l.Unlock()

	e := r.lookup(req.GuildID)
	created := false
	if e != nil && e.OwnerID != req.UserID {
		return Session{}, &NotOwnerError{OwnerID: e.OwnerID}
	}
	if e == nil {
		if req.VoiceChannelID == "" {
			return Session{}, ErrNotInVoice
		}
		link, err := r.opts.Connect(ctx, req.GuildID, req.VoiceChannelID)
		if err != nil {
			return Session{}, fmt.Errorf("join voice channel: %w", err)
		}
		e = &entry{
			Session: Session{
				GuildID:        req.GuildID,
				OwnerID:        req.UserID,
				VoiceChannelID: req.VoiceChannelID,
				StartedAt:      time.Now(),
			},
			link: link,
		}
		created = true
	}

	if rep, ok := e.link.(errorReporter); ok && req.OnError != nil {
		rep.SetErrorHandler(req.OnError)
	}
	if err := e.link.Play(req.Station.URL); err != nil {
		if created {
			e.link.Stop()
			if derr := e.link.Disconnect(); derr != nil {
				log.Warn().Err(derr).Str("guild", req.GuildID).Msg("Failed to disconnect after play error")
			}
		}
		return Session{}, fmt.Errorf("play %s: %w", req.Station.Name, err)
	}

	e.Country = req.Country
	e.Index = req.Index
	e.Station = req.Station

	r.mu.Lock()
	r.sessions[req.GuildID] = e
	snap := e.Session
	r.mu.Unlock()

	r.jobs.Replace(jobName(req.GuildID), r.watch(req.GuildID, e.VoiceChannelID))

	log.Info().
		Str("guild", req.GuildID).
		Str("user", req.UserID).
		Str("country", req.Country).
		Str("station", req.Station.Name).
		Msg("Radio tuned")
	return snap, nil
}

// Get returns the session of guildID.
func (r *Registry) Get(guildID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[guildID]
	if !ok {
		return Session{}, false
	}
	return e.Session, true
}

// Authorize fails with a NotOwnerError when guildID has a session owned by
// someone other than userID.
func (r *Registry) Authorize(guildID, userID string) error {
	s, ok := r.Get(guildID)
	if ok && s.OwnerID != userID {
		return &NotOwnerError{OwnerID: s.OwnerID}
	}
	return nil
}

// SwapControlMessage records msg as the session's control message and
// returns the one it replaces, if any.
func (r *Registry) SwapControlMessage(guildID string, msg ControlMessage) (ControlMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[guildID]
	if !ok {
		return ControlMessage{}, ErrNoSession
	}
	prev := e.Control
	e.Control = msg
	return prev, nil
}

// Stop ends the session of guildID and returns its last snapshot.
func (r *Registry) Stop(guildID string) (Session, error) {
	l := r.guildLock(guildID)
	l.Lock()
	defer l.Unlock()
	return r.stopLocked(guildID)
}

func (r *Registry) stopLocked(guildID string) (Session, error) {
	r.mu.Lock()
	e, ok := r.sessions[guildID]
	delete(r.sessions, guildID)
	r.mu.Unlock()
	if !ok {
		return Session{}, ErrNoSession
	}

	r.jobs.Stop(jobName(guildID))
	e.link.Stop()
	if err := e.link.Disconnect(); err != nil {
		return e.Session, fmt.Errorf("disconnect voice: %w", err)
	}
	log.Info().Str("guild", guildID).Msg("Radio stopped")
	return e.Session, nil
}

// Sessions returns snapshots of all sessions ordered by guild ID.
func (r *Registry) Sessions() []Session {
	r.mu.Lock()
	out := make([]Session, 0, len(r.sessions))
	for _, e := range r.sessions {
		out = append(out, e.Session)
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out
}

// StopAll ends every session. Used on shutdown.
func (r *Registry) StopAll() {
	for _, s := range r.Sessions() {
		if _, err := r.Stop(s.GuildID); err != nil && !errors.Is(err, ErrNoSession) {
			log.Warn().Err(err).Str("guild", s.GuildID).Msg("Failed to stop radio")
		}
	}
}

func jobName(guildID string) string {
	return "radio-idle:" + guildID
}
