package settings

import (
	"context"
	"errors"
	"strings"

	logx "fcdn/pkg/logx"
)

// Store is the key-value API plugins and the CLI use.
//
// GetString/GetBool return ok=false when the key has never been set, so
// callers can distinguish "unset" (apply a default) from an explicit value.
type Store interface {
	GetString(ctx context.Context, key string) (value string, ok bool, err error)
	SetString(ctx context.Context, key, value string) error
	GetBool(ctx context.Context, key string) (value bool, ok bool, err error)
	SetBool(ctx context.Context, key string, value bool) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if the store is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown settings driver: " + driver)
	}
}

// GetBoolDefault reads a bool key, falling back to def when the store is nil,
// the key is unset, or the read fails. Mirrors how preferences are consumed:
// a missing toggle means "use the shipped default", never an error.
func GetBoolDefault(ctx context.Context, s Store, key string, def bool) bool {
	if s == nil {
		return def
	}
	v, ok, err := s.GetBool(ctx, key)
	if err != nil || !ok {
		return def
	}
	return v
}

// GetStringDefault reads a string key with the same fallback contract.
func GetStringDefault(ctx context.Context, s Store, key, def string) string {
	if s == nil {
		return def
	}
	v, ok, err := s.GetString(ctx, key)
	if err != nil || !ok {
		return def
	}
	return v
}
