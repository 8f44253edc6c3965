package config

import (
	"bytes"
	"encoding/json"
)

type Config struct {
	Logging  LoggingConfig  `json:"logging"`
	Journal  JournalConfig  `json:"journal"`
	Settings SettingsConfig `json:"settings"`
	EDSM     EDSMConfig     `json:"edsm"`
	Update   UpdateConfig   `json:"update,omitempty"`

	Plugins map[string]PluginConfigRaw `json:"plugins"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// JournalConfig points the host at the game's journal directory.
type JournalConfig struct {
	// Dir is the directory containing Journal.*.log files.
	Dir string `json:"dir"`
	// PollInterval is a Go duration string used as a fallback re-scan interval
	// when fsnotify misses events (default "2s").
	PollInterval string `json:"poll_interval,omitempty"`
	// FromStart replays the newest journal file from the beginning instead of
	// tailing from its current end. Mostly useful for debugging.
	FromStart bool `json:"from_start,omitempty"`
}

// SettingsConfig controls the settings-persistence store.
//
// Driver values:
//   - "file": dependency-free JSON snapshot store
//   - "sqlite": SQLite database file (build with -tags sqlite)
//
// Example:
//
//	"settings": { "driver": "sqlite", "path": "./fcdn.db" }
type SettingsConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

// EDSMConfig controls the system-coordinate lookup client.
type EDSMConfig struct {
	// BaseURL overrides the system-lookup API endpoint. Empty means the
	// public EDSM v1 system endpoint.
	BaseURL string `json:"base_url,omitempty"`
	// RatePerSec caps outbound lookups (default 2).
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

// UpdateConfig controls the optional update check against a remote VERSION file.
type UpdateConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url,omitempty"`
	// Schedule is a standard 5-field cron spec for periodic re-checks
	// (e.g. "0 */6 * * *"). Empty means check once at startup only.
	Schedule string `json:"schedule,omitempty"`
}

type PluginConfigRaw struct {
	Enabled bool            `json:"enabled"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// UnmarshalJSON disallows unknown fields to ensure removed legacy keys
// are caught early during config reload.
func (p *PluginConfigRaw) UnmarshalJSON(b []byte) error {
	type tmp struct {
		Enabled bool            `json:"enabled"`
		Config  json.RawMessage `json:"config,omitempty"`
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var t tmp
	if err := dec.Decode(&t); err != nil {
		return err
	}
	*p = PluginConfigRaw{Enabled: t.Enabled, Config: t.Config}
	return nil
}
