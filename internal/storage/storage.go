// /internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit int = 20

// Storage keeps bot-local per-guild state in the datastore file.
type Storage struct {
	ds     *datastore.DataStore
	cancel context.CancelFunc

	// mu serialises read-modify-write cycles on guild records.
	mu sync.Mutex
}

type CommandHistory struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Datetime    time.Time `json:"datetime"`
}

type Record struct {
	CommandsHistory []CommandHistory  `json:"commands_history"`
	CommandHashes   map[string]string `json:"command_hashes"` // command name -> definition hash
}

// New opens the datastore file. The autosave loop lives until Close.
func New(filePath string) (*Storage, error) {
	ctx, cancel := context.WithCancel(context.Background())
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Storage{ds: ds, cancel: cancel}, nil
}

// DataStore exposes the underlying file so other components can share it.
func (s *Storage) DataStore() *datastore.DataStore {
	return s.ds
}

// Close stops autosave and flushes the file.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

func guildKey(guildID string) string {
	return "guild:" + guildID
}

// guildRecord returns the guild record, or an empty one when none is stored yet.
// Callers hold s.mu.
func (s *Storage) guildRecord(guildID string) (*Record, error) {
	var record Record
	if _, err := s.ds.Get(guildKey(guildID), &record); err != nil {
		return nil, fmt.Errorf("error reading guild %s: %w", guildID, err)
	}
	if record.CommandsHistory == nil {
		record.CommandsHistory = []CommandHistory{}
	}
	if record.CommandHashes == nil {
		record.CommandHashes = map[string]string{}
	}
	return &record, nil
}

func (s *Storage) update(guildID string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.guildRecord(guildID)
	if err != nil {
		return err
	}
	fn(record)
	if err := s.ds.Set(guildKey(guildID), record); err != nil {
		return fmt.Errorf("error saving guild %s: %w", guildID, err)
	}
	return nil
}

// AppendCommand records a command invocation, keeping the most recent entries only
func (s *Storage) AppendCommand(guildID string, entry CommandHistory) error {
	if entry.Datetime.IsZero() {
		entry.Datetime = time.Now()
	}
	return s.update(guildID, func(r *Record) {
		r.CommandsHistory = append(r.CommandsHistory, entry)
		if len(r.CommandsHistory) > commandHistoryLimit {
			r.CommandsHistory = r.CommandsHistory[len(r.CommandsHistory)-commandHistoryLimit:]
		}
	})
}

func (s *Storage) CommandHistory(guildID string) ([]CommandHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}

func (s *Storage) CommandHashes(guildID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandHashes, nil
}

func (s *Storage) SetCommandHashes(guildID string, hashes map[string]string) error {
	return s.update(guildID, func(r *Record) {
		r.CommandHashes = hashes
	})
}
