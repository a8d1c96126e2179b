// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the process configuration, read from the environment (and .env when present).
type Config struct {
	DiscordToken          string   `env:"DISCORD_TOKEN"`
	DiscordGuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	InitSlashCommands     bool     `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	MongoURI        string `env:"MONGO_URI"`
	MongoDatabase   string `env:"MONGO_DATABASE" envDefault:"ignis"`
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"configuracoes"`
	StoragePath     string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	PartnershipContactID string `env:"PARTNERSHIP_CONTACT_ID" envDefault:"1199908820135194677"`

	RadioIdleInterval time.Duration `env:"RADIO_IDLE_INTERVAL" envDefault:"15s"`
	RadioIdleGrace    time.Duration `env:"RADIO_IDLE_GRACE" envDefault:"15s"`
	RadioVolume       float64       `env:"RADIO_VOLUME" envDefault:"0.5"`

	HTTPAddr string `env:"HTTP_ADDR"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

var ErrMissingToken = errors.New("DISCORD_TOKEN is not set")

// Load reads .env (if any) and parses the environment without requiring a token.
// Offline tooling (seed, radios) uses it directly.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.RadioVolume <= 0 || cfg.RadioVolume > 2 {
		return nil, fmt.Errorf("RADIO_VOLUME must be within (0, 2], got %v", cfg.RadioVolume)
	}
	if cfg.RadioIdleInterval <= 0 || cfg.RadioIdleGrace < 0 {
		return nil, fmt.Errorf("invalid radio idle timings: interval=%v grace=%v", cfg.RadioIdleInterval, cfg.RadioIdleGrace)
	}
	return cfg, nil
}

// New is Load plus the checks the bot itself needs.
func New() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.DiscordToken == "" {
		return nil, ErrMissingToken
	}
	return cfg, nil
}

// UsesMongo reports whether configuration documents come from MongoDB.
func (c *Config) UsesMongo() bool {
	return c.MongoURI != ""
}

// IsGuildBlacklisted reports whether the bot should refuse to stay in a guild.
func (c *Config) IsGuildBlacklisted(guildID string) bool {
	return slices.Contains(c.DiscordGuildBlacklist, guildID)
}
