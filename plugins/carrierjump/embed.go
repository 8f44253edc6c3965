package carrierjump

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fcdn/internal/discord"
	"fcdn/internal/journal"
	logx "fcdn/pkg/logx"
)

const (
	colorJump   = 0x3498db
	colorCancel = 0xe74c3c
	colorTest   = 0x00ff00
)

// Carriers lock down boarding this long before the scheduled departure.
const lockdownLead = 3*time.Minute + 20*time.Second

// buildInput bundles everything the embed builder needs for one event.
type buildInput struct {
	Cmdr    string
	System  string
	Event   journal.Event
	Carrier carrierSnapshot
	// CarrierName is the display name, "<fleet name> (<callsign>)".
	CarrierName  string
	ImageURL     string
	OnOwnCarrier bool
	Prefs        displayPrefs
}

// calculateTimes renders Discord relative-time tokens for lockdown and
// departure. An unparsable departure stamp yields epoch-zero tokens rather
// than an error; a wrong countdown is better than a dropped notification.
func calculateTimes(log logx.Logger, departure string) (lockdown, jump string) {
	t, err := time.Parse(time.RFC3339, departure)
	if err != nil {
		log.Warn("unparsable departure time", logx.String("departure", departure), logx.Err(err))
		return "<t:0:R>", "<t:0:R>"
	}
	return fmt.Sprintf("<t:%d:R>", t.Add(-lockdownLead).Unix()),
		fmt.Sprintf("<t:%d:R>", t.Unix())
}

// code wraps a field value in a code fence, matching the embed style.
func code(s string) string { return "```" + s + "```" }

// buildEmbed renders the notification for a jump request or cancellation.
// The resolver is only consulted on the jump-request path when the
// commander is on their own carrier and integration is enabled.
func buildEmbed(ctx context.Context, log logx.Logger, r Resolver, in buildInput) discord.Embed {
	emb := discord.Embed{
		Timestamp: in.Event.Timestamp,
		Footer:    &discord.Footer{Text: "FCDN • CMDR " + in.Cmdr},
	}

	if discord.IsValidImageURL(in.ImageURL) {
		emb.Image = &discord.Image{URL: strings.TrimSpace(in.ImageURL)}
	} else if strings.TrimSpace(in.ImageURL) != "" {
		log.Warn("invalid image URL, must start with http:// or https://",
			logx.String("url", in.ImageURL))
	}

	switch in.Event.Kind {
	case journal.KindCarrierJumpRequest:
		req := in.Event.JumpRequest
		lockdown, jump := calculateTimes(log, req.DepartureTime)

		dest := req.SystemName
		if dest == "" {
			dest = req.Body
		}
		if dest == "" {
			dest = "Unknown"
		}

		var fields []discord.Field
		if in.OnOwnCarrier {
			est := estimateJump(ctx, r, log,
				in.System, req.SystemName, in.Carrier.Fuel, in.Carrier.Used, in.Prefs.Integration)

			fields = []discord.Field{
				{Name: "Departing from", Value: code(in.System)},
				{Name: "Headed to", Value: code(dest)},
			}
			if in.Prefs.ShowDistance && est.Distance != nil {
				fields = append(fields, discord.Field{
					Name:  "Jump Distance",
					Value: code(fmt.Sprintf("%.2f ly", *est.Distance)),
				})
			}
			if in.Prefs.ShowUsage && est.FuelCost != nil && *est.FuelCost != 0 {
				fields = append(fields, discord.Field{
					Name:  "Estimated Fuel Usage",
					Value: code(fmt.Sprintf("%d t", *est.FuelCost)),
				})
			}
			if in.Prefs.ShowRemaining && in.Carrier.Fuel != 0 && est.Remaining != nil {
				fields = append(fields, discord.Field{
					Name:  "Tritium After Jump",
					Value: code(fmt.Sprintf("%d t", *est.Remaining)),
				})
			}
		} else {
			// Scheduled from outside the carrier: location and telemetry
			// belong to wherever the commander actually is, so say so.
			log.Info("remote jump scheduling detected, destination only")
			fields = []discord.Field{
				{Name: "Headed to", Value: code(dest)},
				{Name: "Note", Value: "Jump scheduled remotely - location and fuel data unavailable"},
			}
		}

		fields = append(fields,
			discord.Field{Name: "Estimated lockdown time", Value: lockdown, Inline: true},
			discord.Field{Name: "Estimated jump time", Value: jump, Inline: true},
		)

		emb.Title = "Frame Shift Drive Charging"
		emb.Description = fmt.Sprintf("**%s** is jumping.", in.CarrierName)
		emb.Color = colorJump
		emb.Fields = fields

	case journal.KindCarrierJumpCancelled:
		fields := []discord.Field{
			{Name: "Current Location", Value: code(in.System)},
		}
		if in.Prefs.ShowTritiumCancel && in.Carrier.Fuel != 0 {
			fields = append(fields, discord.Field{
				Name:  "Tritium Level",
				Value: code(fmt.Sprintf("%dt", in.Carrier.Fuel)),
			})
		}

		emb.Title = "Jump Sequence Cancelled"
		emb.Description = fmt.Sprintf("**%s** jump has been cancelled.", in.CarrierName)
		emb.Color = colorCancel
		emb.Fields = fields
	}

	return emb
}

// WebhookTestEmbed builds the embed posted by the test-webhook command. The
// description notes whether an image is expected so the user can verify
// their image URL end to end.
func WebhookTestEmbed(imageURL string) discord.Embed {
	emb := discord.Embed{
		Title:       "Webhook Test",
		Description: "Your Fleet Carrier Discord Notifier is working correctly!",
		Color:       colorTest,
		Footer:      &discord.Footer{Text: "FCDN Test"},
	}
	if discord.IsValidImageURL(imageURL) {
		emb.Image = &discord.Image{URL: strings.TrimSpace(imageURL)}
		emb.Description += "\nIf you've entered a valid fleet carrier image URL, your image should be visible below."
	} else {
		emb.Description += "\nNote: No valid image URL provided or URL format is incorrect."
	}
	return emb
}
