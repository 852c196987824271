package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 12*time.Second, cfg.FetchTimeout())
	require.Equal(t, 60*time.Second, cfg.CacheTTL())
	require.Equal(t, 60*time.Second, cfg.PollInterval())
	require.Equal(t, 5, cfg.Crowd.FeedCount)
	require.Equal(t, 4, cfg.Crowd.Concurrency)
	require.NotEmpty(t, cfg.Crowd.Mirrors)
	require.True(t, cfg.Logging.Development)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: 9090
  api_key: sekrit
http:
  timeout_seconds: 5
poll:
  interval_seconds: 120
crowd:
  mirrors:
    - https://mirror.example.com
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "sekrit", cfg.Server.APIKey)
	require.Equal(t, 5*time.Second, cfg.FetchTimeout())
	require.Equal(t, 120*time.Second, cfg.PollInterval())
	require.Equal(t, []string{"https://mirror.example.com"}, cfg.Crowd.Mirrors)
	// Untouched sections keep defaults.
	require.Equal(t, 60*time.Second, cfg.CacheTTL())
}

func TestLoad_MissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := writeFile(t, "config.yaml", `
poll:
  interval_seconds: 0
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "poll.interval_seconds")
}

func TestValidate_EachConstraint(t *testing.T) {
	t.Parallel()

	valid := Config{
		Server: ServerConfig{Port: 8080},
		HTTP:   HTTPConfig{TimeoutSeconds: 12},
		Cache:  CacheConfig{TTLSeconds: 60},
		Poll:   PollConfig{IntervalSeconds: 60},
		Crowd:  CrowdConfig{Mirrors: []string{"https://m"}, FeedCount: 5},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"timeout", func(c *Config) { c.HTTP.TimeoutSeconds = -1 }},
		{"ttl", func(c *Config) { c.Cache.TTLSeconds = 0 }},
		{"interval", func(c *Config) { c.Poll.IntervalSeconds = 0 }},
		{"mirrors", func(c *Config) { c.Crowd.Mirrors = nil }},
		{"feed count", func(c *Config) { c.Crowd.FeedCount = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
