package settings

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	logx "fcdn/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// The whole store is a single JSON object on disk, rewritten atomically
// (write temp file + rename) on every mutation. Settings are tiny and
// mutations are rare (a human editing preferences), so snapshot-per-write
// is simpler and safer than journaling.
type fileStore struct {
	log  logx.Logger
	path string

	mu sync.Mutex
	kv map[string]string
}

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("settings.path is required for file driver")
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	st := &fileStore{log: log, path: path, kv: map[string]string{}}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// fresh store
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(b, &st.kv); err != nil {
			// A corrupt snapshot should not brick the host; start fresh but
			// keep the broken file aside for inspection.
			log.Warn("settings snapshot unreadable; starting fresh", logx.Err(err), logx.String("path", path))
			_ = os.Rename(path, path+".corrupt")
			st.kv = map[string]string{}
		}
	}

	return st, nil
}

func (s *fileStore) GetString(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.kv[key]
	return v, ok, nil
}

func (s *fileStore) SetString(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("empty settings key")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return s.flushLocked()
}

func (s *fileStore) GetBool(ctx context.Context, key string) (bool, bool, error) {
	s.mu.Lock()
	raw, ok := s.kv[key]
	s.mu.Unlock()
	if !ok {
		return false, false, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, false, nil
	}
	return v, true, nil
}

func (s *fileStore) SetBool(ctx context.Context, key string, value bool) error {
	return s.SetString(ctx, key, strconv.FormatBool(value))
}

func (s *fileStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	keys := make([]string, 0, len(s.kv))
	for k := range s.kv {
		keys = append(keys, k)
	}
	s.mu.Unlock()
	sort.Strings(keys)
	return keys, nil
}

func (s *fileStore) Close() error { return nil }

func (s *fileStore) flushLocked() error {
	b, err := json.MarshalIndent(s.kv, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
