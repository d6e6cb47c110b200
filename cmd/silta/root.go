package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yairfalse/silta/config"
	"github.com/yairfalse/silta/telemetry"
)

var (
	version    = "0.1.0"
	configPath string

	rootCmd = &cobra.Command{
		Use:   "silta",
		Short: "Backstage to Glean sync connector",
		Long: `Silta - Backstage to Glean sync connector

Silta reads software catalog entities from a Backstage instance and
pushes them into a Glean custom datasource: searchable documents for
components, APIs, systems, domains and resources, plus user and group
identities with their memberships.

Run one-off syncs, preview them with --dry-run, or keep the index
fresh with the built-in daemon mode.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the root command
func init() {
	rootCmd.SetVersionTemplate(`Silta {{.Version}} - Backstage to Glean sync connector
`)
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "silta.yaml", "Path to configuration file")
}

// loadConfig reads and validates the config file, returning a logger
// configured from it
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	logger := telemetry.NewLogger("silta", cfg.Log.Level)
	return cfg, logger, nil
}
