// Command ignis runs the ignis Discord bot and its offline tooling.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ignis/internal/config"
	"ignis/internal/configstore"
	"ignis/internal/discord"
	"ignis/internal/httpapi"
	"ignis/internal/logging"
	"ignis/internal/storage"
)

const appName = "ignis"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           appName,
	Short:         "Discord bot for radio streaming, partnerships and member logs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.LogLevel = lvl
		}
		if err := logging.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
			log.Warn().Err(err).Str("level", cfg.LogLevel).Msg("Unknown log level, using info")
		}
		return nil
	},
	RunE: runBot,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve until interrupted",
	RunE:  runBot,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL (debug, info, warn, error)")
	rootCmd.AddCommand(runCmd, radiosCmd, seedCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Exiting")
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, _ []string) error {
	if cfg.DiscordToken == "" {
		return config.ErrMissingToken
	}
	log.Info().Str("app", appName).Msg("Starting bot")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stor, store, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer closeStores(stor, store)

	bot, err := discord.New(cfg, stor, store)
	if err != nil {
		return err
	}

	components := []func(context.Context) error{bot.Run}
	if cfg.HTTPAddr != "" {
		router := httpapi.NewRouter(bot.Radio(), bot.Jobs())
		components = append(components, func(ctx context.Context) error {
			return httpapi.Serve(ctx, cfg.HTTPAddr, router)
		})
	}

	if err := runAll(ctx, components...); err != nil {
		return fmt.Errorf("bot stopped: %w", err)
	}
	log.Info().Msg("Shutdown complete")
	return nil
}

// runAll runs every component until ctx ends or one of them fails, and only
// returns once all of them have returned.
func runAll(ctx context.Context, components ...func(context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, run := range components {
		g.Go(func() error { return run(gctx) })
	}
	return g.Wait()
}

// openStores opens the local datastore and the configuration document store.
func openStores(ctx context.Context) (*storage.Storage, configstore.Store, error) {
	stor, err := storage.New(cfg.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage %s: %w", cfg.StoragePath, err)
	}
	store, err := configstore.Open(ctx, configstore.Options{
		URI:        cfg.MongoURI,
		Database:   cfg.MongoDatabase,
		Collection: cfg.MongoCollection,
		Local:      stor.DataStore(),
	})
	if err != nil {
		_ = stor.Close()
		return nil, nil, fmt.Errorf("failed to open config store: %w", err)
	}
	backend := "datastore"
	if cfg.UsesMongo() {
		backend = "mongo"
	}
	log.Info().Str("backend", backend).Msg("Config store ready")
	return stor, store, nil
}

func closeStores(stor *storage.Storage, store configstore.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Msg("Failed to close config store")
	}
	if err := stor.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close storage")
	}
}
