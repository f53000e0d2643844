package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultAPIURL           = "https://api.sorare.com/graphql"
	DefaultAPITimeout       = 30 * time.Second
	MaxPageSize             = 20
	DefaultPageSize         = 20
	DefaultGroupSize        = 3
	DefaultThrottleInterval = 3 * time.Second
	DefaultDataDir          = "data"
	DefaultRosterPath       = "players.yaml"
	DefaultCacheTTL         = 10 * time.Minute
	DefaultLogLevel         = "info"
)

func (c *Config) applyDefaults() {
	if c.API.URL == "" {
		c.API.URL = DefaultAPIURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.Fetch.PageSize == 0 {
		c.Fetch.PageSize = DefaultPageSize
	}
	if c.Fetch.GroupSize == 0 {
		c.Fetch.GroupSize = DefaultGroupSize
	}
	if c.Fetch.ThrottleInterval == 0 {
		c.Fetch.ThrottleInterval = DefaultThrottleInterval
	}
	if c.Data.Dir == "" {
		c.Data.Dir = DefaultDataDir
	}
	if c.Roster.Path == "" {
		c.Roster.Path = DefaultRosterPath
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Default returns a configuration with every default applied, used when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}
