package settings

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("settings store disabled")

// Config configures the settings store.
//
// Driver values:
//   - "file": dependency-free JSON snapshot backend
//   - "sqlite": SQLite database file (optional build tag)
//
// If Driver is empty or "none", the store is disabled and all reads
// report "unset".
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}
