package carrierjump

import (
	"context"
	"path/filepath"
	"testing"

	"fcdn/internal/core"
	"fcdn/internal/discord"
	"fcdn/internal/journal"
	"fcdn/internal/settings"
	logx "fcdn/pkg/logx"
)

func newTestPlugin(t *testing.T) (*Plugin, settings.Store) {
	t.Helper()
	store, err := settings.Open(settings.Config{
		Driver: "file",
		Path:   filepath.Join(t.TempDir(), "settings.json"),
	}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	p := New()
	err = p.Init(context.Background(), core.PluginDeps{
		Logger:   logx.Nop(),
		Settings: store,
		Webhook:  discord.NewClient(logx.Nop()),
	})
	if err != nil {
		t.Fatal(err)
	}
	return p, store
}

func jumpCancelledEvent() journal.Event {
	return journal.Event{Kind: journal.KindCarrierJumpCancelled, Timestamp: "2026-01-02T15:04:05Z"}
}

func TestOnJournalEventIgnoresOtherKinds(t *testing.T) {
	p, _ := newTestPlugin(t)
	ev := journal.Event{Kind: journal.KindFSDJump, FSDJump: &journal.FSDJump{StarSystem: "Sol"}}
	if got := p.OnJournalEvent(context.Background(), ev, journal.Snapshot{}); got != "" {
		t.Fatalf("status = %q, want none", got)
	}
}

func TestOnJournalEventBetaSuppressed(t *testing.T) {
	p, store := newTestPlugin(t)
	ctx := context.Background()
	if err := store.SetString(ctx, KeyWebhookURL, "https://discord.com/api/webhooks/1/x"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetString(ctx, KeyCarrierName, "Voyager I"); err != nil {
		t.Fatal(err)
	}
	if got := p.OnJournalEvent(ctx, jumpCancelledEvent(), journal.Snapshot{Beta: true}); got != "" {
		t.Fatalf("status = %q, want silence on beta builds", got)
	}
}

func TestOnJournalEventConfigErrors(t *testing.T) {
	p, store := newTestPlugin(t)
	ctx := context.Background()

	// No webhook configured at all.
	if got := p.OnJournalEvent(ctx, jumpCancelledEvent(), journal.Snapshot{}); got != statusNoWebhook {
		t.Fatalf("status = %q, want %q", got, statusNoWebhook)
	}

	// Non-Discord URL is rejected before any network activity.
	if err := store.SetString(ctx, KeyWebhookURL, "https://example.com/hook"); err != nil {
		t.Fatal(err)
	}
	if got := p.OnJournalEvent(ctx, jumpCancelledEvent(), journal.Snapshot{}); got != statusNoWebhook {
		t.Fatalf("status = %q, want %q", got, statusNoWebhook)
	}

	// Valid webhook but no fleet name.
	if err := store.SetString(ctx, KeyWebhookURL, "https://discord.com/api/webhooks/1/x"); err != nil {
		t.Fatal(err)
	}
	if got := p.OnJournalEvent(ctx, jumpCancelledEvent(), journal.Snapshot{}); got != statusNoName {
		t.Fatalf("status = %q, want %q", got, statusNoName)
	}
}

func TestOnJournalEventCachesCarrierStats(t *testing.T) {
	p, _ := newTestPlugin(t)
	ev := journal.Event{
		Kind: journal.KindCarrierStats,
		CarrierStats: &journal.CarrierStats{
			Callsign:   "K3B-43M",
			FuelLevel:  430,
			SpaceUsage: journal.SpaceUsage{UsedSpace: intp(12000)},
		},
	}
	if got := p.OnJournalEvent(context.Background(), ev, journal.Snapshot{}); got != "" {
		t.Fatalf("status = %q, want none", got)
	}
	snap := p.state.snapshot()
	if snap.Fuel != 430 || snap.Used != 12000 || snap.ID != "K3B-43M" {
		t.Fatalf("cached state = %+v", snap)
	}
}
