package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ScraperConfig controls how the event listings page is fetched.
type ScraperConfig struct {
	URL        string            `yaml:"url"`
	Timeout    time.Duration     `yaml:"timeout"`
	Headers    map[string]string `yaml:"headers"`
	MaxRetries int               `yaml:"max_retries"`
	Backoff    time.Duration     `yaml:"backoff"`
	MaxBackoff time.Duration     `yaml:"max_backoff"`
	MaxVenues  int               `yaml:"max_venues"` // cap on the per-sync venue index
}

const DefaultListingsURL = "https://ra.co/events/us/newyorkcity"

// DefaultBrowserHeaders mimic a desktop Chrome navigation so the listings
// page is served instead of a bot challenge.
func DefaultBrowserHeaders() map[string]string {
	return map[string]string{
		"accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		"accept-language":           "en-US,en;q=0.9",
		"cache-control":             "max-age=0",
		"dnt":                       "1",
		"priority":                  "u=0, i",
		"sec-ch-device-memory":      "8",
		"sec-ch-ua":                 `"Chromium";v="127", "Not)A;Brand";v="99"`,
		"sec-ch-ua-arch":            `"arm"`,
		"sec-ch-ua-mobile":          "?0",
		"sec-ch-ua-model":           `""`,
		"sec-ch-ua-platform":        `"macOS"`,
		"sec-fetch-dest":            "document",
		"sec-fetch-mode":            "navigate",
		"sec-fetch-site":            "same-origin",
		"sec-fetch-user":            "?1",
		"upgrade-insecure-requests": "1",
		"user-agent":                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36",
	}
}

// DefaultScraperConfig returns the settings used when no file is given.
func DefaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		URL:        DefaultListingsURL,
		Timeout:    15 * time.Second,
		Headers:    DefaultBrowserHeaders(),
		MaxRetries: 3,
		Backoff:    500 * time.Millisecond,
		MaxBackoff: 5 * time.Second,
		MaxVenues:  5000,
	}
}

// LoadScraperConfig reads the YAML file at path over the defaults. An empty
// path returns the defaults. Headers in the file are merged over the default
// headers; a header set to "" in the file removes it.
func LoadScraperConfig(path string) (ScraperConfig, error) {
	cfg := DefaultScraperConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scraper config: %w", err)
	}
	var file ScraperConfig
	if err := yaml.Unmarshal(b, &file); err != nil {
		return cfg, fmt.Errorf("parse scraper config: %w", err)
	}
	if file.URL != "" {
		cfg.URL = file.URL
	}
	if file.Timeout > 0 {
		cfg.Timeout = file.Timeout
	}
	if file.MaxRetries > 0 {
		cfg.MaxRetries = file.MaxRetries
	}
	if file.Backoff > 0 {
		cfg.Backoff = file.Backoff
	}
	if file.MaxBackoff > 0 {
		cfg.MaxBackoff = file.MaxBackoff
	}
	if file.MaxVenues > 0 {
		cfg.MaxVenues = file.MaxVenues
	}
	for k, v := range file.Headers {
		if v == "" {
			delete(cfg.Headers, k)
			continue
		}
		cfg.Headers[k] = v
	}
	return cfg, nil
}
