// Package update checks a remote VERSION file for newer plugin releases.
package update

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	logx "fcdn/pkg/logx"
)

const (
	// DefaultVersionURL is the published VERSION file for this project.
	DefaultVersionURL = "https://raw.githubusercontent.com/aweeri/FCDN/refs/heads/main/VERSION"

	checkTimeout = 5 * time.Second
)

type Checker struct {
	url     string
	current string
	http    *http.Client
	log     logx.Logger

	mu     sync.Mutex
	latest string
}

func New(url, currentVersion string, log logx.Logger) *Checker {
	if strings.TrimSpace(url) == "" {
		url = DefaultVersionURL
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Checker{
		url:     url,
		current: currentVersion,
		http:    &http.Client{Timeout: checkTimeout},
		log:     log,
	}
}

// Latest returns the most recently fetched remote version, or "" before the
// first successful check.
func (c *Checker) Latest() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

// Check fetches the remote VERSION file once. Failures are logged and
// returned but never fatal; an update check must not affect the host.
func (c *Checker) Check(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("update: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("version check failed", logx.Err(err))
		return "", fmt.Errorf("update: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("version check failed", logx.Int("status", resp.StatusCode))
		return "", fmt.Errorf("update: unexpected status %d", resp.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("update: read body: %w", err)
	}
	latest := strings.TrimSpace(string(b))

	c.mu.Lock()
	c.latest = latest
	c.mu.Unlock()

	if latest != "" && latest != c.current {
		c.log.Info("update available",
			logx.String("installed", c.current),
			logx.String("latest", latest),
		)
	} else {
		c.log.Debug("version up to date", logx.String("installed", c.current))
	}
	return latest, nil
}

// Run checks once immediately, then re-checks on the given standard 5-field
// cron schedule. An empty schedule means the startup check only.
func (c *Checker) Run(ctx context.Context, schedule string) error {
	_, _ = c.Check(ctx)

	schedule = strings.TrimSpace(schedule)
	if schedule == "" {
		return nil
	}
	spec, err := cron.ParseStandard(schedule)
	if err != nil {
		return fmt.Errorf("update.schedule: %w", err)
	}

	for {
		next := spec.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			_, _ = c.Check(ctx)
		}
	}
}
