package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const sampleYAML = `
logging:
  level: debug
  console: true
journal:
  dir: /home/cmdr/.steam/journals
  poll_interval: 1s
settings:
  driver: file
  path: ./settings.json
edsm:
  rate_per_sec: 2
plugins:
  carrierjump:
    enabled: true
`

func TestParseYAML(t *testing.T) {
	m := NewConfigManager(writeConfig(t, "config.yaml", sampleYAML))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Console {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
	if cfg.Journal.Dir != "/home/cmdr/.steam/journals" || cfg.Journal.PollInterval != "1s" {
		t.Fatalf("journal = %+v", cfg.Journal)
	}
	if cfg.Settings.Driver != "file" {
		t.Fatalf("settings = %+v", cfg.Settings)
	}
	raw, ok := cfg.Plugins["carrierjump"]
	if !ok || !raw.Enabled {
		t.Fatalf("plugins = %+v", cfg.Plugins)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	m := NewConfigManager(writeConfig(t, "config.yaml", sampleYAML+"\nsurprise: 1\n"))
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for unknown top-level key")
	}

	m = NewConfigManager(writeConfig(t, "config.yaml", `
journal: {dir: /tmp}
settings: {driver: file, path: x}
plugins:
  carrierjump: {enabled: true, legacy_option: 1}
`))
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for unknown plugin key")
	}
}

func TestParseJSONPassthrough(t *testing.T) {
	m := NewConfigManager(writeConfig(t, "config.json",
		`{"journal":{"dir":"/tmp"},"settings":{"driver":"none","path":""},"plugins":{}}`))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Journal.Dir != "/tmp" {
		t.Fatalf("journal = %+v", cfg.Journal)
	}
}

func TestLoadCommitsAndGet(t *testing.T) {
	m := NewConfigManager(writeConfig(t, "config.yaml", sampleYAML))
	cfg, err := m.Load()
	if err != nil {
		t.Fatal(err)
	}
	if m.Get() != cfg {
		t.Fatal("Get should return the committed config")
	}
}

func TestSubscribePublish(t *testing.T) {
	m := NewConfigManager(writeConfig(t, "config.yaml", sampleYAML))
	if _, err := m.Load(); err != nil {
		t.Fatal(err)
	}

	sub := m.Subscribe(1)
	defer m.Unsubscribe(sub)

	next := &Config{}
	m.Commit(next)
	m.publish(next)

	select {
	case got := <-sub:
		if got != next {
			t.Fatal("subscriber received wrong config")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never notified")
	}
}

func TestParseDurationField(t *testing.T) {
	if d, err := ParseDurationField("x", " 250ms "); err != nil || d != 250*time.Millisecond {
		t.Fatalf("got (%v, %v)", d, err)
	}
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty: got (%v, %v)", d, err)
	}
	if _, err := ParseDurationField("x", "-1s"); err == nil || !strings.Contains(err.Error(), ">= 0") {
		t.Fatalf("negative: err = %v", err)
	}
	if _, err := ParseDurationField("x", "soon"); err == nil {
		t.Fatal("expected error for junk duration")
	}
	if d, err := ParseDurationOrDefault("x", "", 2*time.Second); err != nil || d != 2*time.Second {
		t.Fatalf("default: got (%v, %v)", d, err)
	}
}
