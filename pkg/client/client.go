// Package client implements the HTTP transport to the Sorare GraphQL API
// with error classification, request metrics, and optional response caching.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/soraredata/auction-tracker/pkg/cache"
	"github.com/soraredata/auction-tracker/pkg/graphql"
)

// DefaultEndpoint is the public Sorare GraphQL endpoint.
const DefaultEndpoint = "https://api.sorare.com/graphql"

// Client posts GraphQL requests and decodes the {data, errors} envelope.
// Transport failures are fatal to the caller; API-reported errors are
// classified on the decoded response instead.
type Client struct {
	endpoint   string
	httpClient *http.Client
	cache      *cache.Manager
	logger     zerolog.Logger

	// requests counts network round-trips (cache hits excluded). Fetching is
	// sequential, so a plain counter is enough.
	requests int
}

// Config holds the client configuration.
type Config struct {
	// Endpoint is the GraphQL URL. Empty selects DefaultEndpoint.
	Endpoint string

	// Timeout bounds each HTTP exchange.
	Timeout time.Duration

	// Cache is the optional response cache. Nil disables caching.
	Cache *cache.Manager
}

// New creates a new GraphQL client.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		endpoint: cfg.Endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cache:  cfg.Cache,
		logger: log.With().Str("component", "sorare-client").Logger(),
	}
}

// Execute posts one GraphQL request and returns the decoded response. kind
// labels the request in logs and metrics ("single" or "batch"). Non-budget
// API errors are logged as warnings here; the response remains usable and
// callers treat the affected page as empty.
func (c *Client) Execute(ctx context.Context, kind string, req graphql.Request) (*graphql.Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	}()

	cacheKey := cache.Key(payload)
	if c.cache != nil {
		if body, err := c.cache.Get(ctx, cacheKey); err == nil {
			c.logger.Debug().Str("kind", kind).Msg("Serving response from cache")
			requestsTotal.WithLabelValues(kind, "cache").Inc()
			return c.decode(kind, body)
		} else if err != cache.ErrMiss {
			c.logger.Warn().Err(err).Str("kind", kind).Msg("Cache get error")
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		requestsTotal.WithLabelValues(kind, "network_error").Inc()
		return nil, fmt.Errorf("post graphql query: %w", err)
	}
	defer resp.Body.Close()

	c.requests++
	requestsTotal.WithLabelValues(kind, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error().
			Str("kind", kind).
			Int("status", resp.StatusCode).
			Msg("GraphQL endpoint returned non-2xx status")
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	out, err := c.decode(kind, body)
	if err != nil {
		return nil, err
	}

	// Budget-rejected responses are never cached: the fallback path must
	// reach the network on the next attempt.
	if c.cache != nil && !out.BudgetRejected() {
		if err := c.cache.Set(ctx, cacheKey, body); err != nil {
			c.logger.Warn().Err(err).Str("kind", kind).Msg("Failed to cache response")
		}
	}

	return out, nil
}

// Requests returns the number of network round-trips performed so far.
func (c *Client) Requests() int {
	return c.requests
}

func (c *Client) decode(kind string, body []byte) (*graphql.Response, error) {
	var out graphql.Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}

	if out.BudgetRejected() {
		budgetRejectionsTotal.WithLabelValues(kind).Inc()
		c.logger.Debug().Str("kind", kind).Msg("Query rejected by complexity budget")
	}
	for _, msg := range out.OtherErrors() {
		c.logger.Warn().Str("kind", kind).Str("message", msg).Msg("API reported error")
	}

	return &out, nil
}
