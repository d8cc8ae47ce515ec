package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "media-queue-service", cfg.App.Name)
	assert.Equal(t, 60, cfg.Cache.MaxItems)
	assert.Equal(t, 30, cfg.Cache.TrimTarget)
	assert.Equal(t, time.Hour, cfg.Cache.DefaultTTL)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.Extractor.Timeout)

	overrides, err := cfg.Cache.ServiceOverrides()
	require.NoError(t, err)
	assert.Equal(t, map[int]time.Duration{1: 5 * time.Minute}, overrides)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
extractor:
  base_url: http://extractor:9000
cache:
  max_items: 100
  trim_target: 40
  service_ttl:
    "1": 2m
    "0": 30m
session:
  fetch_wait: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("APP_APP_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://extractor:9000", cfg.Extractor.BaseURL)
	assert.Equal(t, 100, cfg.Cache.MaxItems)
	assert.Equal(t, 40, cfg.Cache.TrimTarget)
	assert.Equal(t, 3*time.Second, cfg.Session.FetchWait)
	assert.Equal(t, 9090, cfg.App.Port)

	overrides, err := cfg.Cache.ServiceOverrides()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, overrides[1])
	assert.Equal(t, 30*time.Minute, overrides[0])
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Extractor: ExtractorConfig{BaseURL: "http://localhost:8081"},
			Cache: CacheConfig{
				MaxItems:   60,
				TrimTarget: 30,
				DefaultTTL: time.Hour,
				ServiceTTL: map[string]time.Duration{"1": 5 * time.Minute},
			},
			Session: SessionConfig{IdleTimeout: time.Minute, ReapInterval: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"trim target equals max", func(c *Config) { c.Cache.TrimTarget = 60 }, "cache.trim_target"},
		{"zero max items", func(c *Config) { c.Cache.MaxItems = 0 }, "cache.max_items"},
		{"missing base url", func(c *Config) { c.Extractor.BaseURL = "" }, "extractor.base_url"},
		{"bad service id", func(c *Config) { c.Cache.ServiceTTL["soundcloud"] = time.Minute }, "invalid service id"},
		{"non-positive service ttl", func(c *Config) { c.Cache.ServiceTTL["1"] = 0 }, "must be positive"},
		{"zero idle timeout", func(c *Config) { c.Session.IdleTimeout = 0 }, "session.idle_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
