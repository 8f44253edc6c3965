package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	logx "fcdn/pkg/logx"
)

// Handler receives one decoded event plus the player context at the moment
// the event was read. Handlers run synchronously on the watcher goroutine;
// the next event is not delivered until the handler returns.
type Handler func(ctx context.Context, ev Event, snap Snapshot)

type WatcherConfig struct {
	Dir          string
	PollInterval time.Duration // fallback re-scan when fsnotify is quiet
	FromStart    bool          // replay the active journal from offset 0
}

// Watcher tails the newest journal file in a directory, decoding appended
// lines and dispatching them in order. The game rotates to a new journal file
// per session; the watcher follows rotations automatically.
type Watcher struct {
	cfg     WatcherConfig
	log     logx.Logger
	handler Handler
	tracker *Tracker

	file    *os.File
	path    string
	offset  int64
	partial []byte
}

func NewWatcher(cfg WatcherConfig, log logx.Logger, handler Handler) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return &Watcher{
		cfg:     cfg,
		log:     log,
		handler: handler,
		tracker: NewTracker(),
	}
}

// Snapshot exposes the current player context (cmdr/system/station/beta).
func (w *Watcher) Snapshot() Snapshot { return w.tracker.Snapshot() }

func (w *Watcher) Run(ctx context.Context) error {
	if strings.TrimSpace(w.cfg.Dir) == "" {
		return errors.New("journal.dir is not configured")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("journal watch init: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("journal watch %s: %w", w.cfg.Dir, err)
	}

	// Pick up the journal that is already active, then drain whatever the
	// session has written so far (or seek to the end unless FromStart).
	if err := w.openLatest(!w.cfg.FromStart); err != nil {
		w.log.Warn("no active journal yet; waiting", logx.Err(err), logx.String("dir", w.cfg.Dir))
	}
	w.drain(ctx)

	tick := time.NewTicker(w.cfg.PollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			w.closeFile()
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return errors.New("journal watcher closed")
			}
			if !isJournalFile(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// new session file; switch to it from the beginning
				if err := w.switchTo(ev.Name, false); err != nil {
					w.log.Warn("journal switch failed", logx.Err(err), logx.String("path", ev.Name))
				} else {
					w.log.Info("following new journal", logx.String("path", ev.Name))
				}
			}
			w.drain(ctx)
		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("journal watcher closed")
			}
			if err != nil {
				w.log.Warn("journal watch error", logx.Err(err))
			}
		case <-tick.C:
			// fallback: catch missed creates and writes
			if latest, err := latestJournal(w.cfg.Dir); err == nil && latest != "" && latest != w.path {
				if err := w.switchTo(latest, false); err == nil {
					w.log.Info("following new journal", logx.String("path", latest))
				}
			}
			w.drain(ctx)
		}
	}
}

func (w *Watcher) openLatest(seekEnd bool) error {
	latest, err := latestJournal(w.cfg.Dir)
	if err != nil {
		return err
	}
	if latest == "" {
		return errors.New("no journal files found")
	}
	return w.switchTo(latest, seekEnd)
}

func (w *Watcher) switchTo(path string, seekEnd bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	w.closeFile()
	w.file = f
	w.path = path
	w.offset = 0
	w.partial = nil
	if seekEnd {
		if n, err := f.Seek(0, io.SeekEnd); err == nil {
			w.offset = n
		}
	}
	return nil
}

func (w *Watcher) closeFile() {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}
}

// drain reads everything appended since the last offset and dispatches
// complete lines. A trailing partial line (the game writes records in one
// append, but be safe) is buffered until its newline arrives.
func (w *Watcher) drain(ctx context.Context) {
	if w.file == nil {
		if err := w.openLatest(!w.cfg.FromStart); err != nil {
			return
		}
	}

	if _, err := w.file.Seek(w.offset, io.SeekStart); err != nil {
		w.log.Warn("journal seek failed", logx.Err(err), logx.String("path", w.path))
		return
	}
	b, err := io.ReadAll(w.file)
	if err != nil {
		w.log.Warn("journal read failed", logx.Err(err), logx.String("path", w.path))
		return
	}
	w.offset += int64(len(b))
	if len(w.partial) > 0 {
		b = append(w.partial, b...)
		w.partial = nil
	}

	for len(b) > 0 {
		i := bytes.IndexByte(b, '\n')
		if i < 0 {
			w.partial = append([]byte(nil), b...)
			return
		}
		line := bytes.TrimSpace(b[:i])
		b = b[i+1:]
		if len(line) == 0 {
			continue
		}
		w.dispatch(ctx, line)
		if ctx.Err() != nil {
			return
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, line []byte) {
	ev, err := Parse(line)
	if err != nil {
		w.log.Debug("journal line skipped", logx.Err(err))
		return
	}
	if ev.Kind == KindUnknown {
		return
	}
	w.tracker.Apply(ev)
	if w.handler != nil {
		w.handler(ctx, ev, w.tracker.Snapshot())
	}
}

func isJournalFile(name string) bool {
	return strings.HasPrefix(name, "Journal") && strings.HasSuffix(name, ".log")
}

// latestJournal returns the most recently modified Journal*.log in dir,
// or "" when none exist yet.
func latestJournal(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var (
		best     string
		bestTime time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !isJournalFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best = filepath.Join(dir, e.Name())
			bestTime = info.ModTime()
		}
	}
	return best, nil
}
