package config

import (
	"errors"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.MongoDatabase != "ignis" || cfg.MongoCollection != "configuracoes" {
		t.Errorf("mongo defaults = %q/%q", cfg.MongoDatabase, cfg.MongoCollection)
	}
	if cfg.StoragePath != "datastore.json" {
		t.Errorf("StoragePath = %q", cfg.StoragePath)
	}
	if cfg.RadioIdleInterval != 15*time.Second || cfg.RadioIdleGrace != 15*time.Second {
		t.Errorf("idle timings = %v/%v", cfg.RadioIdleInterval, cfg.RadioIdleGrace)
	}
	if cfg.RadioVolume != 0.5 {
		t.Errorf("RadioVolume = %v", cfg.RadioVolume)
	}
	if !cfg.InitSlashCommands {
		t.Error("InitSlashCommands should default to true")
	}
	if cfg.UsesMongo() {
		t.Error("UsesMongo without MONGO_URI")
	}
}

func TestNewRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	if _, err := New(); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}
	if _, err := Load(); err != nil {
		t.Fatalf("Load should not require a token: %v", err)
	}
}

func TestBlacklistAndOverrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_BLACKLIST", "1,2")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("RADIO_IDLE_INTERVAL", "2s")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !cfg.IsGuildBlacklisted("2") || cfg.IsGuildBlacklisted("3") {
		t.Errorf("blacklist = %v", cfg.DiscordGuildBlacklist)
	}
	if !cfg.UsesMongo() {
		t.Error("UsesMongo should be true")
	}
	if cfg.RadioIdleInterval != 2*time.Second {
		t.Errorf("RadioIdleInterval = %v", cfg.RadioIdleInterval)
	}
}

func TestVolumeOutOfRange(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("RADIO_VOLUME", "3")

	if _, err := New(); err == nil {
		t.Fatal("expected error for RADIO_VOLUME=3")
	}
}

func TestZeroVolumeRejected(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("RADIO_VOLUME", "0")

	if _, err := New(); err == nil {
		t.Fatal("expected error for RADIO_VOLUME=0")
	}
}

func TestZeroGraceAccepted(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("RADIO_IDLE_GRACE", "0s")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.RadioIdleGrace != 0 {
		t.Errorf("RadioIdleGrace = %v", cfg.RadioIdleGrace)
	}
}
