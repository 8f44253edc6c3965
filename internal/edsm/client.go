// Package edsm resolves star-system coordinates via the EDSM system API.
//
// Lookups are memoized per exact system name (bounded LRU) and rate limited;
// every failure mode maps to an error so callers can treat "unresolved" as a
// single condition and degrade instead of aborting.
package edsm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	logx "fcdn/pkg/logx"
)

const (
	// DefaultBaseURL is the public EDSM v1 single-system endpoint.
	DefaultBaseURL = "https://www.edsm.net/api-v1/system"

	requestTimeout = 10 * time.Second
	cacheSize      = 4096

	defaultRatePerSec = 2
)

// ErrNotFound means the API answered but had no coordinates for the system
// (unknown name, or a system without recorded coordinates).
var ErrNotFound = errors.New("edsm: no coordinates for system")

type Coords struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Config struct {
	BaseURL    string
	RatePerSec int
}

type Client struct {
	base    string
	http    *http.Client
	limiter *rate.Limiter
	log     logx.Logger
	cache   *lruCache
}

func New(cfg Config, log logx.Logger) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = defaultRatePerSec
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		base:    base,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
		cache:   newLRUCache(cacheSize),
	}
}

// Resolve returns the 3D coordinates for a system name. Hits are served from
// the cache; misses cost one outbound GET. Failed lookups are not cached so a
// transient API error doesn't poison the name for the process lifetime.
func (c *Client) Resolve(ctx context.Context, systemName string) (Coords, error) {
	if strings.TrimSpace(systemName) == "" {
		return Coords{}, fmt.Errorf("edsm: empty system name")
	}
	if v, ok := c.cache.get(systemName); ok {
		return v, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return Coords{}, fmt.Errorf("edsm: rate wait: %w", err)
	}

	coords, err := c.fetch(ctx, systemName)
	if err != nil {
		return Coords{}, err
	}
	c.cache.put(systemName, coords)
	return coords, nil
}

// CacheLen reports how many systems are currently memoized.
func (c *Client) CacheLen() int { return c.cache.len() }

func (c *Client) fetch(ctx context.Context, systemName string) (Coords, error) {
	q := url.Values{}
	q.Set("systemName", systemName)
	q.Set("showCoordinates", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"?"+q.Encode(), nil)
	if err != nil {
		return Coords{}, fmt.Errorf("edsm: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Coords{}, fmt.Errorf("edsm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coords{}, fmt.Errorf("edsm: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Coords{}, fmt.Errorf("edsm: read body: %w", err)
	}

	// An unknown system comes back as "[]" rather than an object, so decode
	// loosely and require the coords object to be present.
	var parsed struct {
		Coords *Coords `json:"coords"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Coords == nil {
		c.log.Debug("coordinates not found", logx.String("system", systemName))
		return Coords{}, ErrNotFound
	}
	return *parsed.Coords, nil
}
