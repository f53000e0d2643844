// Package config defines the tracker run configuration: YAML file with
// environment variable expansion, defaults, and validation.
package config

import (
	"fmt"
	"time"
)

// Config is the top-level run configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Data    DataConfig    `yaml:"data"`
	Roster  RosterConfig  `yaml:"roster"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// APIConfig selects the upstream GraphQL endpoint.
type APIConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// FetchConfig tunes the fetch engine.
type FetchConfig struct {
	// PageSize is the records-per-page request size, capped at the provider
	// maximum of 20.
	PageSize int `yaml:"page_size"`

	// GroupSize is how many players share one batched request. Kept low so
	// a full batch stays under the complexity budget in the common case.
	GroupSize int `yaml:"group_size"`

	// ThrottleInterval is the minimum delay between consecutive API calls.
	ThrottleInterval time.Duration `yaml:"throttle_interval"`
}

// DataConfig locates the durable artifacts (histories, CSVs, run marker).
type DataConfig struct {
	Dir string `yaml:"dir"`
}

// RosterConfig locates the players file.
type RosterConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig enables the optional Redis response cache. An empty address
// disables caching entirely.
type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	TTL       time.Duration `yaml:"ttl"`
}

// MetricsConfig enables the optional Prometheus listener. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig tunes structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("api.url is required")
	}
	if c.Fetch.PageSize < 1 || c.Fetch.PageSize > MaxPageSize {
		return fmt.Errorf("fetch.page_size must be between 1 and %d (got %d)", MaxPageSize, c.Fetch.PageSize)
	}
	if c.Fetch.GroupSize < 1 {
		return fmt.Errorf("fetch.group_size must be at least 1 (got %d)", c.Fetch.GroupSize)
	}
	if c.Fetch.ThrottleInterval <= 0 {
		return fmt.Errorf("fetch.throttle_interval must be positive")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Roster.Path == "" {
		return fmt.Errorf("roster.path is required")
	}
	return nil
}
