package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fcdn/internal/discord"
	"fcdn/internal/settings"
	"fcdn/plugins/carrierjump"
	logx "fcdn/pkg/logx"
)

var testWebhookCmd = &cobra.Command{
	Use:   "test-webhook",
	Short: "Post a test embed to the configured webhook",
	Long: `Build the "Webhook Test" embed and post it to the webhook stored under
fcms_discord_webhook. If fcms_carrier_image is set and valid, the embed
includes the image so the full notification pipeline can be verified.`,
	RunE: runTestWebhook,
}

func init() {
	rootCmd.AddCommand(testWebhookCmd)
}

func runTestWebhook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	webhookURL := settings.GetStringDefault(ctx, store, carrierjump.KeyWebhookURL, "")
	if !discord.IsWebhookURL(webhookURL) {
		return fmt.Errorf("no valid Discord webhook configured; set %s first", carrierjump.KeyWebhookURL)
	}

	imageURL := settings.GetStringDefault(ctx, store, carrierjump.KeyCarrierImage, "")
	if imageURL != "" && !discord.IsValidImageURL(imageURL) {
		fmt.Printf("note: image URL %q is not http(s), sending without it\n", imageURL)
	}

	client := discord.NewClient(logx.NewConsole(cfg.Logging.Level))
	if err := client.Send(ctx, webhookURL, carrierjump.WebhookTestEmbed(imageURL)); err != nil {
		return fmt.Errorf("test webhook: %w", err)
	}
	fmt.Println("test webhook sent")
	return nil
}
