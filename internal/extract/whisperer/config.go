package whisperer

import (
	"net/http"
	"time"
)

type Config struct {
	APIKey       string
	BaseURL      string
	Modes        []string // tried in order
	OutputMode   string
	PollInterval time.Duration
	MaxPolls     int
	ModeTimeout  time.Duration // bounds upload+poll+retrieve for one mode
	HTTPClient   *http.Client
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://llmwhisperer-api.us-central.unstract.com/api/v2"
	}
	if len(c.Modes) == 0 {
		c.Modes = []string{"high_quality", "low_cost", "form", "native_text"}
	}
	if c.OutputMode == "" {
		c.OutputMode = "layout_preserving"
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.MaxPolls <= 0 {
		c.MaxPolls = 60
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
}
