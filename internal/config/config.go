// Package config loads and validates service configuration via Viper, plus
// the static provider/crowd source tables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Poll    PollConfig    `mapstructure:"poll"`
	Crowd   CrowdConfig   `mapstructure:"crowd"`
	Logging LoggingConfig `mapstructure:"logging"`
	Sources SourcesConfig `mapstructure:"sources"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// HTTPConfig configures the outbound fetch client.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// CacheConfig sets the fetch cache freshness window.
type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// PollConfig governs the background poll loop.
type PollConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

// CrowdConfig configures the crowd-report feature.
type CrowdConfig struct {
	// Mirrors lists the report-feed mirror base URLs in preference order.
	Mirrors     []string `mapstructure:"mirrors"`
	FeedCount   int      `mapstructure:"feed_count"`
	Concurrency int      `mapstructure:"concurrency"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// SourcesConfig points at the YAML source tables; empty means built-ins.
type SourcesConfig struct {
	Path string `mapstructure:"path"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("OUTAGEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("http.timeout_seconds", 12)
	v.SetDefault("http.user_agent", "outagewatch/1.0 (+https://github.com/outagewatch/outagewatch)")
	v.SetDefault("cache.ttl_seconds", 60)
	v.SetDefault("poll.interval_seconds", 60)
	v.SetDefault("crowd.mirrors", defaultMirrors())
	v.SetDefault("crowd.feed_count", 5)
	v.SetDefault("crowd.concurrency", 4)
	v.SetDefault("logging.development", true)
}

// defaultMirrors lists public RSSHub instances serving the outage-report
// route, most reliable first.
func defaultMirrors() []string {
	return []string{
		"https://rsshub.app",
		"https://rsshub.rssforever.com",
		"https://hub.slarker.me",
	}
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be > 0")
	}
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll.interval_seconds must be > 0")
	}
	if len(c.Crowd.Mirrors) == 0 {
		return fmt.Errorf("crowd.mirrors must list at least one endpoint")
	}
	if c.Crowd.FeedCount <= 0 {
		return fmt.Errorf("crowd.feed_count must be > 0")
	}
	return nil
}

// FetchTimeout returns the outbound timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CacheTTL returns the fetch cache freshness window as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// PollInterval returns the background poll period as a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSeconds) * time.Second
}
