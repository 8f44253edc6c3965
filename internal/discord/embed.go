// Package discord holds the webhook wire types and the send path.
package discord

import "strings"

// Embed is the structured chat-message payload Discord renders richly.
// Field order is preserved on the wire.
type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
	Image       *Image  `json:"image,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

type Footer struct {
	Text string `json:"text"`
}

type Image struct {
	URL string `json:"url"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// webhookPrefixes are the only accepted webhook hosts. Anything else is a
// configuration error and must not be POSTed to.
var webhookPrefixes = []string{
	"https://discord.com/api/webhooks/",
	"https://discordapp.com/api/webhooks/",
}

// IsWebhookURL reports whether url points at a known Discord webhook host.
func IsWebhookURL(url string) bool {
	for _, p := range webhookPrefixes {
		if strings.HasPrefix(url, p) {
			return true
		}
	}
	return false
}

// IsValidImageURL does basic validation for embed image URLs:
// non-empty after trimming and an http(s) scheme.
func IsValidImageURL(url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}
