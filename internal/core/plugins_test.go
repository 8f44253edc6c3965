package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"fcdn/internal/config"
	"fcdn/internal/journal"
	logx "fcdn/pkg/logx"
)

type fakePlugin struct {
	mu      sync.Mutex
	name    string
	started bool
	stopped bool
	events  int
	status  string
}

func (f *fakePlugin) Name() string { return f.name }

func (f *fakePlugin) Init(ctx context.Context, deps PluginDeps) error { return nil }

func (f *fakePlugin) Start(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	return nil
}

func (f *fakePlugin) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakePlugin) OnJournalEvent(ctx context.Context, ev journal.Event, snap journal.Snapshot) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events++
	return f.status
}

func (f *fakePlugin) snapshot() (started, stopped bool, events int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started, f.stopped, f.events
}

func newTestManager(t *testing.T, plugins map[string]config.PluginConfigRaw) (*PluginManager, *config.ConfigManager) {
	t.Helper()
	cfgm := config.NewConfigManager("unused")
	cfgm.Commit(&config.Config{Plugins: plugins})
	pm := NewPluginManager(logx.Nop(), cfgm, PluginDeps{Logger: logx.Nop()})
	return pm, cfgm
}

func TestPluginLifecycle(t *testing.T) {
	fp := &fakePlugin{name: "fake"}
	pm, _ := newTestManager(t, map[string]config.PluginConfigRaw{
		"fake": {Enabled: true},
	})
	pm.Register(fp)

	ctx := context.Background()
	if err := pm.StartAll(ctx); err != nil {
		t.Fatal(err)
	}
	if started, _, _ := fp.snapshot(); !started {
		t.Fatal("enabled plugin not started")
	}

	pm.DispatchJournal(ctx, journal.Event{Kind: journal.KindFSDJump}, journal.Snapshot{})
	if _, _, events := fp.snapshot(); events != 1 {
		t.Fatalf("events = %d, want 1", events)
	}

	// Disabling via config update stops the plugin and removes it from
	// dispatch.
	pm.OnConfigUpdate(ctx, &config.Config{Plugins: map[string]config.PluginConfigRaw{
		"fake": {Enabled: false},
	}})
	if _, stopped, _ := fp.snapshot(); !stopped {
		t.Fatal("disabled plugin not stopped")
	}
	pm.DispatchJournal(ctx, journal.Event{Kind: journal.KindFSDJump}, journal.Snapshot{})
	if _, _, events := fp.snapshot(); events != 1 {
		t.Fatalf("events = %d after disable, want 1", events)
	}
}

func TestDisabledPluginNeverStarts(t *testing.T) {
	fp := &fakePlugin{name: "fake"}
	pm, _ := newTestManager(t, map[string]config.PluginConfigRaw{})
	pm.Register(fp)

	if err := pm.StartAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if started, _, _ := fp.snapshot(); started {
		t.Fatal("plugin started without a config entry")
	}
}

func TestDispatchOrderAndPanicsContained(t *testing.T) {
	a := &fakePlugin{name: "a"}
	b := &fakePlugin{name: "b"}
	pm, _ := newTestManager(t, map[string]config.PluginConfigRaw{
		"a": {Enabled: true},
		"b": {Enabled: true},
	})
	pm.Register(a, b)

	ctx := context.Background()
	if err := pm.StartAll(ctx); err != nil {
		t.Fatal(err)
	}

	// A panicking handler must not take down dispatch for the others.
	panicky := &panicPlugin{}
	pm.Register(panicky)
	pm.OnConfigUpdate(ctx, &config.Config{Plugins: map[string]config.PluginConfigRaw{
		"a": {Enabled: true}, "b": {Enabled: true}, "panicky": {Enabled: true},
	}})

	pm.DispatchJournal(ctx, journal.Event{Kind: journal.KindFSDJump}, journal.Snapshot{})
	if _, _, events := a.snapshot(); events != 1 {
		t.Fatalf("a events = %d", events)
	}
	if _, _, events := b.snapshot(); events != 1 {
		t.Fatalf("b events = %d", events)
	}

	pm.StopAll(context.Background(), StopShutdown)
	if _, stopped, _ := a.snapshot(); !stopped {
		t.Fatal("StopAll did not stop plugin")
	}
}

type panicPlugin struct{}

func (p *panicPlugin) Name() string                                       { return "panicky" }
func (p *panicPlugin) Init(ctx context.Context, deps PluginDeps) error    { return nil }
func (p *panicPlugin) Start(ctx context.Context) error                    { return nil }
func (p *panicPlugin) Stop(ctx context.Context) error                     { return nil }
func (p *panicPlugin) OnJournalEvent(ctx context.Context, ev journal.Event, snap journal.Snapshot) string {
	panic("boom")
}

func TestSupervisorCancelOnError(t *testing.T) {
	sup := NewSupervisor(context.Background(), WithLogger(logx.Nop()), WithCancelOnError(true))
	sup.Go("failing", func(ctx context.Context) error {
		return context.DeadlineExceeded
	})

	select {
	case <-sup.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("error did not cancel supervisor context")
	}
	if sup.Err() == nil {
		t.Fatal("first error not recorded")
	}
	if err := sup.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}

func TestSupervisorRecoversPanic(t *testing.T) {
	sup := NewSupervisor(context.Background(), WithLogger(logx.Nop()), WithCancelOnError(true))
	sup.Go("panicky", func(ctx context.Context) error {
		panic("boom")
	})

	select {
	case <-sup.Context().Done():
	case <-time.After(2 * time.Second):
		t.Fatal("panic did not cancel supervisor context")
	}
	if err := sup.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
}
