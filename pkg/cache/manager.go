// Package cache provides an optional Redis-backed cache for upstream
// GraphQL response bodies. The merge into the durable history is idempotent,
// so serving a recently cached page instead of refetching it is always safe.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss indicates the requested key was not found in the cache.
var ErrMiss = errors.New("cache miss")

// DefaultTTL bounds how stale a served response body may be.
const DefaultTTL = 10 * time.Minute

// Key derives a deterministic cache key from a request payload.
func Key(payload []byte) string {
	sum := sha256.Sum256(payload)
	return "sorare:query:" + hex.EncodeToString(sum[:])
}

// Manager caches raw response bodies in Redis with a fixed TTL.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager creates a cache manager. A non-positive ttl falls back to
// DefaultTTL.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{redis: redisClient, ttl: ttl}
}

// Get retrieves a cached response body. Returns ErrMiss if the key does not
// exist or has expired.
func (m *Manager) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := m.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			cacheMisses.Inc()
			return nil, ErrMiss
		}
		cacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	cacheHits.Inc()
	return data, nil
}

// Set stores a response body under key for the configured TTL.
func (m *Manager) Set(ctx context.Context, key string, body []byte) error {
	if err := m.redis.Set(ctx, key, body, m.ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
