package cmd

import (
	"sort"
	"strings"
	"sync"
)

// DefaultRegistry is the registry the Discord adapter dispatches from.
var DefaultRegistry = NewRegistry()

// Registry stores commands by name.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds c, replacing any command with the same name.
func (r *Registry) Register(c Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[c.Name()] = c
}

// Get returns the command called name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[name]
	return c, ok
}

// GetAll returns all commands sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// MatchPrefix finds the command owning a component custom ID: the one whose
// name is the longest prefix of id followed by end, '_' or ':'.
func (r *Registry) MatchPrefix(id string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best Command
	for name, c := range r.commands {
		if !strings.HasPrefix(id, name) {
			continue
		}
		if rest := id[len(name):]; rest != "" && rest[0] != '_' && rest[0] != ':' {
			continue
		}
		if best == nil || len(name) > len(best.Name()) {
			best = c
		}
	}
	return best, best != nil
}
