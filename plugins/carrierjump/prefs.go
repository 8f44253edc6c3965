package carrierjump

import (
	"context"

	"fcdn/internal/settings"
)

// Settings keys. The fcms_ prefix is kept for compatibility with existing
// user settings from earlier releases.
const (
	KeyWebhookURL        = "fcms_discord_webhook"
	KeyCarrierName       = "fcms_carrier_name"
	KeyCarrierImage      = "fcms_carrier_image"
	KeyFuelMode          = "fcms_fuel_mode"
	KeyShowDistance      = "fcms_show_distance"
	KeyShowUsage         = "fcms_show_usage"
	KeyShowRemaining     = "fcms_show_remaining"
	KeyShowTritiumCancel = "fcms_show_tritium_cancel"
)

// Keys lists every settings key the plugin reads, for the settings CLI.
func Keys() []string {
	return []string{
		KeyWebhookURL, KeyCarrierName, KeyCarrierImage, KeyFuelMode,
		KeyShowDistance, KeyShowUsage, KeyShowRemaining, KeyShowTritiumCancel,
	}
}

// displayPrefs holds the per-event display toggles. They are read from the
// settings store at decision time, never cached, so a settings change takes
// effect on the next event.
type displayPrefs struct {
	Integration       bool // EDSM lookups + fuel math
	ShowDistance      bool
	ShowUsage         bool
	ShowRemaining     bool
	ShowTritiumCancel bool
}

func loadPrefs(ctx context.Context, s settings.Store) displayPrefs {
	return displayPrefs{
		Integration:       settings.GetBoolDefault(ctx, s, KeyFuelMode, true),
		ShowDistance:      settings.GetBoolDefault(ctx, s, KeyShowDistance, true),
		ShowUsage:         settings.GetBoolDefault(ctx, s, KeyShowUsage, true),
		ShowRemaining:     settings.GetBoolDefault(ctx, s, KeyShowRemaining, true),
		ShowTritiumCancel: settings.GetBoolDefault(ctx, s, KeyShowTritiumCancel, true),
	}
}
