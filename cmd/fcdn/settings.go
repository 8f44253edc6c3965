package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fcdn/internal/settings"
	"fcdn/plugins/carrierjump"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and edit the settings store",
	Long: `Read and write the key-value settings store that holds the webhook URL,
fleet name and display toggles. Known keys:

  fcms_discord_webhook       Discord webhook URL (required)
  fcms_carrier_name          fleet carrier display name (required)
  fcms_carrier_image         embed image URL (optional)
  fcms_fuel_mode             EDSM distance/fuel lookups (true/false)
  fcms_show_distance         show jump distance field (true/false)
  fcms_show_usage            show fuel usage field (true/false)
  fcms_show_remaining        show remaining tritium field (true/false)
  fcms_show_tritium_cancel   show tritium level on cancellations (true/false)

Boolean toggles default to true when unset.`,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one settings value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx storeCtx) error {
			v, ok, err := ctx.store.GetString(ctx.ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("key %q is not set", args[0])
			}
			fmt.Println(v)
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one settings value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx storeCtx) error {
			if err := ctx.store.SetString(ctx.ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", args[0], args[1])
			return nil
		})
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx storeCtx) error {
			keys, err := ctx.store.Keys(ctx.ctx)
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("(no settings stored; known keys:)")
				for _, k := range carrierjump.Keys() {
					fmt.Println("  " + k)
				}
				return nil
			}
			for _, k := range keys {
				v, _, err := ctx.store.GetString(ctx.ctx, k)
				if err != nil {
					return err
				}
				fmt.Printf("%s = %s\n", k, v)
			}
			return nil
		})
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsListCmd)
	rootCmd.AddCommand(settingsCmd)
}

type storeCtx struct {
	ctx   context.Context
	store settings.Store
}

func withStore(cmd *cobra.Command, fn func(storeCtx) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	return fn(storeCtx{ctx: ctx, store: store})
}
