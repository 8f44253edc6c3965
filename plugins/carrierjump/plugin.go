// Package carrierjump posts Discord notifications for fleet-carrier jump
// events: a "Frame Shift Drive Charging" embed on CarrierJumpRequest and a
// cancellation embed on CarrierJumpCancelled, enriched with distance and
// tritium figures when the commander is on their own carrier.
package carrierjump

import (
	"context"
	"errors"

	"fcdn/internal/core"
	"fcdn/internal/discord"
	"fcdn/internal/journal"
	"fcdn/internal/settings"
	logx "fcdn/pkg/logx"
)

// User-visible status strings, logged by the host against the event that
// produced them.
const (
	statusNoWebhook   = "FCDN: Configure Discord webhook URL in settings."
	statusNoName      = "FCDN: Configure Fleet Name in settings."
	statusHTTPError   = "FCDN: Discord webhook error."
	statusSendFailure = "FCDN: Error sending to Discord."
)

type Plugin struct {
	log   logx.Logger
	deps  core.PluginDeps
	state carrierState
}

func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string { return "carrierjump" }

func (p *Plugin) Init(ctx context.Context, deps core.PluginDeps) error {
	p.deps = deps
	p.log = deps.Logger.With(logx.String("plugin", p.Name()))
	return nil
}

func (p *Plugin) Start(ctx context.Context) error { return nil }
func (p *Plugin) Stop(ctx context.Context) error  { return nil }

// OnJournalEvent is the per-event pipeline. CarrierStats events refresh the
// telemetry cache; jump events go through configuration checks, the
// ownership guard, the embed builder and a single webhook send. Everything
// else is ignored, as is anything from a beta build of the game.
func (p *Plugin) OnJournalEvent(ctx context.Context, ev journal.Event, snap journal.Snapshot) string {
	prefs := loadPrefs(ctx, p.deps.Settings)

	// Telemetry is only worth caching if some consumer of it is enabled.
	if ev.Kind == journal.KindCarrierStats && ev.CarrierStats != nil &&
		(prefs.Integration || prefs.ShowTritiumCancel) {
		p.state.update(ev.CarrierStats)
		p.log.Debug("carrier state updated",
			logx.Int("fuel", ev.CarrierStats.FuelLevel),
			logx.String("callsign", ev.CarrierStats.Callsign))
		return ""
	}

	if ev.Kind != journal.KindCarrierJumpRequest && ev.Kind != journal.KindCarrierJumpCancelled {
		return ""
	}
	if snap.Beta {
		return ""
	}

	webhookURL := settings.GetStringDefault(ctx, p.deps.Settings, KeyWebhookURL, "")
	if !discord.IsWebhookURL(webhookURL) {
		p.log.Warn("webhook URL not configured or invalid")
		return statusNoWebhook
	}

	fleetName := settings.GetStringDefault(ctx, p.deps.Settings, KeyCarrierName, "")
	if fleetName == "" {
		p.log.Warn("fleet name not configured")
		return statusNoName
	}

	st := p.state.snapshot()
	own := onOwnCarrier(p.log, snap.Station, st.ID)
	p.log.Info("processing jump event",
		logx.String("event", string(ev.Kind)), logx.Bool("on_own_carrier", own))

	emb := buildEmbed(ctx, p.log, p.deps.Resolver, buildInput{
		Cmdr:         snap.Cmdr,
		System:       snap.System,
		Event:        ev,
		Carrier:      st,
		CarrierName:  fleetName + " (" + st.ID + ")",
		ImageURL:     settings.GetStringDefault(ctx, p.deps.Settings, KeyCarrierImage, ""),
		OnOwnCarrier: own,
		Prefs:        prefs,
	})

	if err := p.deps.Webhook.Send(ctx, webhookURL, emb); err != nil {
		var se *discord.StatusError
		switch {
		case errors.Is(err, discord.ErrBadWebhookURL):
			return statusNoWebhook
		case errors.As(err, &se):
			return statusHTTPError
		default:
			p.log.Error("webhook send failed", logx.Err(err))
			return statusSendFailure
		}
	}
	return ""
}
