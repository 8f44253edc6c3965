package settings

// Package settings provides the settings-persistence store used by plugins.
//
// It is a small string/bool key-value store, the headless analog of the host
// application's preferences panel. Plugins read their keys at decision time;
// the CLI (`fcdn settings get|set`) writes them.
