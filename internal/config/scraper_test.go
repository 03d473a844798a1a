package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScraperConfigDefaults(t *testing.T) {
	cfg, err := LoadScraperConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultListingsURL, cfg.URL)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Contains(t, cfg.Headers, "user-agent")
	assert.NotContains(t, cfg.Headers, "cookie")
}

func TestLoadScraperConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scraper.yml")
	body := `
url: http://localhost:9999/events
timeout: 2s
max_retries: 5
headers:
  user-agent: vibecheck-test
  dnt: ""
  x-extra: "1"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadScraperConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999/events", cfg.URL)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Backoff)
	assert.Equal(t, "vibecheck-test", cfg.Headers["user-agent"])
	assert.Equal(t, "1", cfg.Headers["x-extra"])
	assert.NotContains(t, cfg.Headers, "dnt")
}

func TestLoadScraperConfigMissingFile(t *testing.T) {
	_, err := LoadScraperConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("VC_TEST_BOOL", "yes")
	t.Setenv("VC_TEST_INT", "x")
	t.Setenv("VC_TEST_DUR", "90m")
	assert.True(t, envBool("VC_TEST_BOOL", false))
	assert.Equal(t, 7, envInt("VC_TEST_INT", 7))
	assert.Equal(t, 90*time.Minute, envDur("VC_TEST_DUR", time.Hour))
	assert.Equal(t, []string{"GET", "HEAD"}, parseList(" GET, ,HEAD"))
}

func TestLoadRateLimitConfigClampsTTL(t *testing.T) {
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg := LoadRateLimitConfig()
	assert.Equal(t, 5*time.Minute, cfg.TTL)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
}
