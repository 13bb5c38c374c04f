// Package main is the entry point for the kvsearch CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/andreyvit/kvsearch"
	"github.com/andreyvit/kvsearch/internal/config"
	"github.com/andreyvit/kvsearch/internal/log"
	"github.com/spf13/cobra"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalFlags struct {
	envFile  string
	storeURL string
	prefix   string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   "kvsearch",
		Short: "Search index encoded in key-value store keys",
		Long: `kvsearch maintains a secondary index inside a key-value store by encoding
field values into key names, and searches it with KEYS patterns.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  KVSEARCH_STORE_URL    redis://host:6379/0, bolt:///path, sqlite:///path, mem:// (default: mem://)
  KVSEARCH_PREFIX       Key namespace (default: search_cache)
  KVSEARCH_ID_FIELD     Record identifier field for refresh (default: id)
  KVSEARCH_LOG_LEVEL    DEBUG, INFO, WARN, ERROR (default: INFO)
  KVSEARCH_LOG_FORMAT   pretty, json (default: pretty)`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	pf.StringVar(&g.storeURL, "store", "", "Store URL (overrides KVSEARCH_STORE_URL)")
	pf.StringVar(&g.prefix, "prefix", "", "Key namespace (overrides KVSEARCH_PREFIX)")

	cmd.AddCommand(refreshCmd(&g))
	cmd.AddCommand(searchCmd(&g))
	cmd.AddCommand(countCmd(&g))
	cmd.AddCommand(upsertCmd(&g))
	cmd.AddCommand(updateFieldCmd(&g))
	cmd.AddCommand(deleteCmd(&g))
	cmd.AddCommand(deleteFieldCmd(&g))
	cmd.AddCommand(keysCmd(&g))
	cmd.AddCommand(auxCmd(&g))
	cmd.AddCommand(filterCmd())
	cmd.AddCommand(exportCmd(&g))
	cmd.AddCommand(importCmd(&g))
	cmd.AddCommand(clearAllCmd(&g))
	cmd.AddCommand(statsCmd(&g))
	cmd.AddCommand(dumpCmd(&g))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads configuration from .env file and environment variables,
// then applies flag overrides.
func loadConfig(g *globalFlags) (config.AppConfig, error) {
	cfg, err := config.LoadConfig(g.envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	cfg = config.NewAppConfigWithOptions(
		config.WithStoreURL(cfg.StoreURL()),
		config.WithStoreURL(g.storeURL),
		config.WithPrefix(cfg.Prefix()),
		config.WithPrefix(g.prefix),
		config.WithIDField(cfg.IDField()),
		config.WithLogLevel(cfg.LogLevel()),
		config.WithLogFormat(cfg.LogFormat()),
	)
	if err := cfg.Validate(); err != nil {
		return config.AppConfig{}, err
	}
	return cfg, nil
}

// withIndex opens the configured store, runs f and closes the store.
func withIndex(ctx context.Context, g *globalFlags, f func(idx *kvsearch.Index) error) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := log.FromConfig(os.Stderr, cfg)

	store, err := kvsearch.OpenStore(ctx, cfg.StoreURL())
	if err != nil {
		return err
	}
	defer func() {
		if err := kvsearch.CloseStore(store); err != nil {
			logger.Warn("closing store", slog.Any("err", err))
		}
	}()

	idx := kvsearch.New(store, kvsearch.Options{
		Prefix:  cfg.Prefix(),
		IDField: cfg.IDField(),
		Logger:  logger,
	})
	return f(idx)
}
