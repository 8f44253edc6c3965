// Package main is the entry point for the fcdn binary.
//
// Usage:
//
//	fcdn run -c config.yaml           # Watch the journal and post notifications
//	fcdn test-webhook -c config.yaml  # Post a test embed to the configured webhook
//	fcdn settings list -c config.yaml # Inspect the settings store
//	fcdn version                      # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fcdn/internal/config"
	"fcdn/internal/core"
	"fcdn/internal/settings"
	logx "fcdn/pkg/logx"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "fcdn",
	Short: "Fleet Carrier Discord Notifier",
	Long: `FCDN watches the Elite Dangerous journal for fleet-carrier jump events
and posts rich notifications to a Discord webhook.

Quick start:
  1. Create a config file pointing at your journal directory
  2. Set your webhook and fleet name:
       fcdn settings set fcms_discord_webhook https://discord.com/api/webhooks/...
       fcdn settings set fcms_carrier_name "Voyager I"
  3. Run: fcdn run -c config.yaml`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "./config.yaml", "path to config file")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fcdn %s\n", core.Version)
	},
}

// loadConfig parses and validates the config file without starting the app.
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewConfigManager(cfgPath).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the settings store for one-shot CLI commands.
func openStore(cfg *config.Config) (settings.Store, error) {
	busyTimeout, err := config.ParseDurationField("settings.busy_timeout", cfg.Settings.BusyTimeout)
	if err != nil {
		return nil, err
	}
	store, err := settings.Open(settings.Config{
		Driver:      cfg.Settings.Driver,
		Path:        cfg.Settings.Path,
		BusyTimeout: busyTimeout,
	}, logx.Nop())
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("settings store is disabled (settings.driver is empty or \"none\")")
	}
	return store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
