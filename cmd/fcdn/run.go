package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fcdn/internal/core"
	"fcdn/plugins/carrierjump"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the journal and post jump notifications",
	Long: `Start the notifier. It tails the newest journal file in the configured
directory and posts a Discord embed for every fleet-carrier jump request or
cancellation. Runs until interrupted (Ctrl+C) or SIGTERM.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := core.NewApp(cfgPath)
	if err != nil {
		return err
	}

	app.Plugins().Register(
		carrierjump.New(),
	)

	if err := app.Start(ctx); err != nil {
		return err
	}

	// Wait for a signal or a fatal supervisor error, whichever comes first.
	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	stopErr := app.Stop(context.Background(), core.StopShutdown)
	if err := app.Err(); err != nil && ctx.Err() == nil {
		return err
	}
	return stopErr
}
