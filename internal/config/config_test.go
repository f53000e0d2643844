package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
api:
  url: https://example.test/graphql
  timeout: 10s
fetch:
  page_size: 10
  group_size: 2
  throttle_interval: 1s
data:
  dir: /tmp/tracker-data
roster:
  path: /tmp/players.yaml
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.URL != "https://example.test/graphql" {
		t.Errorf("API.URL = %q, want %q", cfg.API.URL, "https://example.test/graphql")
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.Fetch.PageSize != 10 {
		t.Errorf("Fetch.PageSize = %d, want 10", cfg.Fetch.PageSize)
	}
	if cfg.Fetch.GroupSize != 2 {
		t.Errorf("Fetch.GroupSize = %d, want 2", cfg.Fetch.GroupSize)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis.internal:6379")

	yaml := `
cache:
  redis_addr: ${TEST_REDIS_ADDR}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Cache.RedisAddr != "redis.internal:6379" {
		t.Errorf("Cache.RedisAddr = %q, want %q", cfg.Cache.RedisAddr, "redis.internal:6379")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "log:\n  pretty: true\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.API.URL != DefaultAPIURL {
		t.Errorf("API.URL = %q, want default %q", cfg.API.URL, DefaultAPIURL)
	}
	if cfg.Fetch.PageSize != DefaultPageSize {
		t.Errorf("Fetch.PageSize = %d, want default %d", cfg.Fetch.PageSize, DefaultPageSize)
	}
	if cfg.Fetch.GroupSize != DefaultGroupSize {
		t.Errorf("Fetch.GroupSize = %d, want default %d", cfg.Fetch.GroupSize, DefaultGroupSize)
	}
	if cfg.Fetch.ThrottleInterval != DefaultThrottleInterval {
		t.Errorf("Fetch.ThrottleInterval = %v, want default %v", cfg.Fetch.ThrottleInterval, DefaultThrottleInterval)
	}
	if cfg.Cache.TTL != DefaultCacheTTL {
		t.Errorf("Cache.TTL = %v, want default %v", cfg.Cache.TTL, DefaultCacheTTL)
	}
	if !cfg.Log.Pretty {
		t.Error("Log.Pretty not preserved from file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return *Default()
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "missing api url",
			mutate:  func(c *Config) { c.API.URL = "" },
			wantErr: "api.url is required",
		},
		{
			name:    "page size above provider maximum",
			mutate:  func(c *Config) { c.Fetch.PageSize = 21 },
			wantErr: "fetch.page_size must be between 1 and 20 (got 21)",
		},
		{
			name:    "zero group size",
			mutate:  func(c *Config) { c.Fetch.GroupSize = -1 },
			wantErr: "fetch.group_size must be at least 1 (got -1)",
		},
		{
			name:    "non-positive throttle interval",
			mutate:  func(c *Config) { c.Fetch.ThrottleInterval = 0 },
			wantErr: "fetch.throttle_interval must be positive",
		},
		{
			name:    "missing data dir",
			mutate:  func(c *Config) { c.Data.Dir = "" },
			wantErr: "data.dir is required",
		},
		{
			name:    "missing roster path",
			mutate:  func(c *Config) { c.Roster.Path = "" },
			wantErr: "roster.path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error %q, got nil", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}
