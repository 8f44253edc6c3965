package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	logx "fcdn/pkg/logx"
)

const sendTimeout = 30 * time.Second

// ErrBadWebhookURL means the configured URL is not a known Discord webhook
// endpoint. No network call is attempted in that case.
var ErrBadWebhookURL = errors.New("discord: webhook URL missing or not a Discord webhook")

// StatusError reports a non-success HTTP status from the webhook endpoint.
// Callers use it to tell a rejected delivery apart from a transport failure.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string { return fmt.Sprintf("discord: webhook status %d", e.Code) }

type payload struct {
	Embeds []Embed `json:"embeds"`
}

// Client posts embed payloads to a webhook. One attempt per send, fixed
// timeout, no retry; a failed send is the caller's signal to surface a
// user-visible warning and move on.
type Client struct {
	http *http.Client
	log  logx.Logger
}

func NewClient(log logx.Logger) *Client {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Client{
		http: &http.Client{Timeout: sendTimeout},
		log:  log,
	}
}

func (c *Client) Send(ctx context.Context, webhookURL string, embeds ...Embed) error {
	if !IsWebhookURL(webhookURL) {
		return ErrBadWebhookURL
	}
	if len(embeds) == 0 {
		return nil
	}

	body, err := json.Marshal(payload{Embeds: embeds})
	if err != nil {
		return fmt.Errorf("discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("discord: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Delivery ID ties the request/response log lines together.
	delivery := uuid.NewString()
	c.log.Debug("webhook send", logx.String("delivery", delivery), logx.Int("embeds", len(embeds)))

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("webhook send failed", logx.String("delivery", delivery), logx.Err(err))
		return fmt.Errorf("discord: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		c.log.Warn("webhook rejected", logx.String("delivery", delivery), logx.Int("status", resp.StatusCode))
		return &StatusError{Code: resp.StatusCode}
	}
	c.log.Debug("webhook delivered", logx.String("delivery", delivery), logx.Int("status", resp.StatusCode))
	return nil
}
