package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator_scout/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.Queue.Backend)
	assert.Equal(t, 3, cfg.Queue.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Tiers.Interval(domain.TierHot))
	assert.Equal(t, 24*time.Hour, cfg.Tiers.Interval(domain.TierCold))
	assert.Equal(t, "twitch", cfg.Connectors.Twitch.Provider)
	assert.Equal(t, int64(1), cfg.Connectors.Kick.CostPerCall)
	assert.Equal(t, 5*time.Minute, cfg.Schedules["tier-sync-hot"])
	assert.Equal(t, 5, cfg.Queue.For(domain.JobSpecific).Concurrency)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("SCOUT_TWITCH_SECRET", "s3cret")

	cfg, err := Load(writeConfig(t, `
connectors:
  twitch:
    enabled: true
    client_id: abc
    client_secret: ${SCOUT_TWITCH_SECRET}
credits:
  providers:
    scrapeapi:
      daily_cap: 1000
    twitch:
      daily_cap: 0
discovery:
  page_delay: 2s
  platforms:
    twitch:
      categories:
        - id: "509658"
          name: Just Chatting
      keywords: [slots, irl]
`))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Connectors.Twitch.ClientSecret)
	assert.Equal(t, map[string]int64{"scrapeapi": 1000}, cfg.Credits.Caps())
	assert.Equal(t, 2*time.Second, cfg.Discovery.PageDelay)
	require.Len(t, cfg.Discovery.Platforms["twitch"].Categories, 1)
	assert.Equal(t, "Just Chatting", cfg.Discovery.Platforms["twitch"].Categories[0].Name)
}

func TestLoad_RejectsUnorderedTierIntervals(t *testing.T) {
	_, err := Load(writeConfig(t, `
tiers:
  hot_interval: 1h
  active_interval: 30m
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HOT interval must be shorter than ACTIVE")
}

func TestLoad_RejectsUnknownBackend(t *testing.T) {
	_, err := Load(writeConfig(t, "queue:\n  backend: kafka\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestQueueConfig_ForFallsBack(t *testing.T) {
	q := QueueConfig{}
	got := q.For(domain.JobFull)
	assert.Equal(t, 1, got.Concurrency)
	assert.Equal(t, 10*time.Minute, got.Timeout)
}

func TestCategoryConfig_Label(t *testing.T) {
	assert.Equal(t, "Just Chatting", CategoryConfig{ID: "509658", Name: "Just Chatting"}.Label())
	assert.Equal(t, "slots", CategoryConfig{ID: "slots"}.Label())
}
